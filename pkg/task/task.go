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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
)

// 📋 Task is one execution of a handler over a fixed set of files. It is
// the handler's Progress sink and turns every callback into an Event.
//
// The handler is an exclusive clone and the file list a snapshot taken at
// submission, so nothing a Task touches while running is shared with
// another Task. Its mutable fields are guarded by mu because callers read
// them from other goroutines.
type Task struct {
	id          int64
	handler     handler.Handler
	files       []file.File
	showInPanel bool
	publish     func(Event)
	done        chan struct{}

	mu        sync.Mutex
	state     State
	stateText string
	percent   float64
	cancelled bool
	completed bool
	success   bool
	message   string
	failed    []file.File
	result    []file.File
	started   time.Time
	finished  time.Time
}

var _ handler.Progress = (*Task)(nil)

func newTask(id int64, files []file.File, h handler.Handler, showInPanel bool, publish func(Event)) *Task {
	if publish == nil {
		publish = func(Event) {}
	}
	return &Task{
		id:          id,
		handler:     h,
		files:       append([]file.File(nil), files...),
		showInPanel: showInPanel,
		publish:     publish,
		done:        make(chan struct{}),
		state:       Queued,
		stateText:   Queued.String(),
		percent:     handler.Indeterminate,
	}
}

func (t *Task) ID() int64                { return t.id }
func (t *Task) Handler() handler.Handler { return t.handler }
func (t *Task) ShowInPanel() bool        { return t.showInPanel }

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Files returns the submitted snapshot.
func (t *Task) Files() []file.File { return append([]file.File(nil), t.files...) }

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StateText is a one-line description of where the task is, e.g.
// "running: a.txt" or "failed: 1 renamed, 0 unchanged, 1 failed".
func (t *Task) StateText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateText
}

// Percent is the last reported progress, or handler.Indeterminate.
func (t *Task) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Cancelled reports whether Cancel reached the task while it was running.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Outcome returns the verdict and message of the finished run.
func (t *Task) Outcome() (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.success, t.message
}

// FailedFiles lists inputs that were reported as unsuccessful.
func (t *Task) FailedFiles() []file.File {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]file.File(nil), t.failed...)
}

// Result is the handler's output, set once the task is terminal.
func (t *Task) Result() []file.File {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]file.File(nil), t.result...)
}

// Elapsed is the running time so far, or the total once finished.
func (t *Task) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.started.IsZero():
		return 0
	case t.finished.IsZero():
		return time.Since(t.started)
	default:
		return t.finished.Sub(t.started)
	}
}

// Cancel forwards to the handler while the task is running and is a no-op
// otherwise. It reports whether the request was forwarded.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != Running || t.cancelled {
		t.mu.Unlock()
		return false
	}
	t.cancelled = true
	t.mu.Unlock()

	t.handler.Cancel()
	return true
}

func (t *Task) OnProgress(percent float64, message string) {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return
	}
	t.percent = percent
	if message != "" {
		t.stateText = Running.String() + ": " + message
	}
	t.mu.Unlock()

	t.publish(Event{TaskID: t.id, Kind: EventProgress, Percent: percent, Message: message})
}

// OnFileComplete records failures and forwards the event. Nothing is
// forwarded once the task has been cancelled.
func (t *Task) OnFileComplete(input, output file.File, success bool, message string) {
	t.mu.Lock()
	if t.state != Running || t.cancelled {
		t.mu.Unlock()
		return
	}
	if !success {
		t.failed = append(t.failed, input)
	}
	t.mu.Unlock()

	t.publish(Event{TaskID: t.id, Kind: EventFileCompleted, Input: input, Output: output, Success: success, Message: message})
}

// OnComplete records the verdict; the task completes when Execute returns.
func (t *Task) OnComplete(success bool, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed = true
	t.success = success
	t.message = message
}

// transition moves the state forward and returns false when the task is
// not in from.
func (t *Task) transition(from, to State, text string) bool {
	t.mu.Lock()
	if t.state != from {
		t.mu.Unlock()
		return false
	}
	t.state = to
	t.stateText = text
	now := time.Now()
	switch {
	case to == Running:
		t.started = now
	case to.Terminal():
		if t.started.IsZero() {
			t.started = now
		}
		t.finished = now
	}
	t.mu.Unlock()

	t.publish(Event{TaskID: t.id, Kind: EventStateChanged, State: to})
	return true
}

// run executes the handler on the calling goroutine.
func (t *Task) run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Int64("task", t.id).Str("handler", t.handler.Name()).Logger()

	if !t.transition(Queued, Running, Running.String()) {
		return
	}
	logger.Debug().Int("files", len(t.files)).Msg("task started")

	result := t.execute(ctx, &logger)

	t.mu.Lock()
	if !t.completed {
		t.completed = true
		t.success = len(t.failed) == 0
	}
	t.result = result
	success, message := t.success, t.message
	t.mu.Unlock()

	t.finish(success, message)
	logger.Debug().Bool("success", success).Str("message", message).Dur("elapsed", t.Elapsed()).Msg("task finished")
}

func (t *Task) execute(ctx context.Context, logger *zerolog.Logger) (result []file.File) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("handler panicked")
			t.OnComplete(false, fmt.Sprintf("handler panicked: %v", r))
			result = nil
		}
	}()
	return t.handler.Execute(ctx, t.handler.Filter(t.files), t)
}

// abort fails a task that never started.
func (t *Task) abort(message string) {
	t.mu.Lock()
	t.completed = true
	t.success = false
	t.message = message
	t.mu.Unlock()
	t.finish(false, message)
}

func (t *Task) finish(success bool, message string) {
	to := Succeeded
	if !success {
		to = Failed
	}
	text := to.String()
	if message != "" {
		text += ": " + message
	}

	t.mu.Lock()
	from := t.state
	t.mu.Unlock()
	if from.Terminal() || !t.transition(from, to, text) {
		return
	}
	if to == Succeeded {
		t.mu.Lock()
		t.percent = 100
		t.mu.Unlock()
	}

	t.publish(Event{TaskID: t.id, Kind: EventTaskCompleted, State: to, Success: success, Message: message})
	close(t.done)
}
