// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package http

// 业务码: 200 成功, 4xxx 请求问题, 5xxx 服务端问题, 53xx 外部存储
var (
	Success = code(200, "Request Success")

	ValidationError = code(4001, "Validation failed")
	NotFound        = code(4004, "Not found")
	PayloadTooLarge = code(4013, "Payload too large")

	Failed                        = code(500, "Request failed")
	InternalError                 = code(5000, "Internal error, please contact the administrator")
	RequestParameterParsingFailed = code(5001, "Request parameter parsing failed")

	StorageDisabled = code(5302, "Object storage is not configured")
)

func code(c int, msg string) *Response {
	return &Response{Code: c, Msg: msg}
}
