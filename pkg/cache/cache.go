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

package cache

import "context"

// KV 定义字节级键值存储接口
type KV interface {
	// Get 返回 key 对应的值，不存在时 ok 为 false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set 写入 key，覆盖旧值
	Set(ctx context.Context, key string, value []byte) error
	// Del 删除若干 key，不存在的 key 忽略
	Del(ctx context.Context, keys ...string) error
	// Close 释放底层资源
	Close() error
}
