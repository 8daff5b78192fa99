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

package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDo(t *testing.T) {
	assert.False(t, Do("panics", func() { panic("test panic") }))
	assert.True(t, Do("fine", func() {}))
}

func TestGoWith(t *testing.T) {
	done := make(chan bool)
	GoWith("test", func() {
		defer func() {
			done <- true
		}()
		panic("test panic in goroutine")
	})
	<-done
}
