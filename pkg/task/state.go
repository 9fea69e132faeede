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

// State is the lifecycle position of a Task. Transitions only move forward:
// Queued -> Running -> Succeeded | Failed.
type State int32

const (
	Queued State = iota
	// Held is reserved for tasks parked outside the pool; nothing enters it yet.
	Held
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Held:
		return "held"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool { return s == Succeeded || s == Failed }
