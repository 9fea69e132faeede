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

package task

import (
	"github.com/walteh/batchfx/pkg/file"
)

// 📨 Event is one message on the scheduler stream. Which fields are set
// depends on Kind:
//
//   - EventStateChanged: State
//   - EventProgress: Percent, Message
//   - EventFileCompleted: Input, Output, Success, Message
//   - EventTaskCompleted: State, Success, Message
type Event struct {
	TaskID  int64
	Kind    EventKind
	State   State
	Percent float64
	Message string
	Input   file.File
	Output  file.File
	Success bool
}

// EventKind tags an Event.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventProgress
	EventFileCompleted
	EventTaskCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventProgress:
		return "progress"
	case EventFileCompleted:
		return "file-completed"
	case EventTaskCompleted:
		return "task-completed"
	default:
		return "unknown"
	}
}
