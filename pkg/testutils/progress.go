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

// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"sync"

	"github.com/walteh/batchfx/pkg/file"
)

// FileEvent is one recorded OnFileComplete call.
type FileEvent struct {
	Input   file.File
	Output  file.File
	Success bool
	Message string
}

// 📼 Recorder is a Progress sink that keeps every event for assertions.
type Recorder struct {
	mu        sync.Mutex
	Percents  []float64
	Messages  []string
	Files     []FileEvent
	Completes int
	Success   bool
	Final     string
}

func (r *Recorder) OnProgress(percent float64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Percents = append(r.Percents, percent)
	r.Messages = append(r.Messages, message)
}

func (r *Recorder) OnFileComplete(input, output file.File, success bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, FileEvent{Input: input, Output: output, Success: success, Message: message})
}

func (r *Recorder) OnComplete(success bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completes++
	r.Success = success
	r.Final = message
}

// Failed returns the inputs of unsuccessful file events.
func (r *Recorder) Failed() []file.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []file.File
	for _, e := range r.Files {
		if !e.Success {
			out = append(out, e.Input)
		}
	}
	return out
}

// Outputs returns the output paths of successful file events in order.
func (r *Recorder) Outputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Files {
		if e.Success {
			out = append(out, e.Output.Path())
		}
	}
	return out
}
