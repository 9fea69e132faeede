// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package handler

import (
	"github.com/walteh/batchfx/pkg/file"
)

// Indeterminate is reported as the percent when the total is unknown.
const Indeterminate = -1.0

// 📣 Progress receives the events of one running handler. Calls arrive from
// the goroutine executing the handler, in processing order.
type Progress interface {
	OnProgress(percent float64, message string)
	OnFileComplete(input, output file.File, success bool, message string)
	OnComplete(success bool, message string)
}

// Discard drops every event.
var Discard Progress = discard{}

type discard struct{}

func (discard) OnProgress(float64, string)                        {}
func (discard) OnFileComplete(file.File, file.File, bool, string) {}
func (discard) OnComplete(bool, string)                           {}

// Percent converts a done/total pair into a percentage, or Indeterminate
// when total is not positive.
func Percent(done, total int) float64 {
	if total <= 0 {
		return Indeterminate
	}
	if done >= total {
		return 100
	}
	return float64(done) * 100 / float64(total)
}

// completion remembers the OnComplete a member reported so a composite can
// fold it into its own verdict.
type completion struct {
	Progress
	called  bool
	success bool
	message string
}

func (c *completion) OnComplete(success bool, message string) {
	c.called = true
	c.success = success
	c.message = message
}

// quiet forwards nothing but still records OnComplete.
func quiet() *completion { return &completion{Progress: Discard} }
