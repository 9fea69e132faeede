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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/task"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // width of the input column
	outputWidth = 35 // width of the output column
	statusWidth = 15 // width of the status column
)

// 🎯 Totals counts what a Reporter has seen.
type Totals struct {
	Tasks     int
	Succeeded int
	Failed    int
	Files     int
	FileFails int
}

type taskView struct {
	label   string
	started time.Time
	files   int
	failed  int
	bar     *pterm.ProgressbarPrinter
}

// 🎯 Reporter renders scheduler events on a console and mirrors them to
// zerolog.
type Reporter struct {
	zlog     zerolog.Logger
	console  io.Writer
	mu       sync.Mutex
	quiet    bool
	progress bool
	tasks    map[int64]*taskView
	totals   Totals
}

// 🏭 New creates a reporter writing to console.
func New(console io.Writer, level zerolog.Level) *Reporter {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Reporter{
		zlog:    zlog,
		console: console,
		tasks:   map[int64]*taskView{},
	}
}

// WithLogger replaces the structured logger events are mirrored to.
func (r *Reporter) WithLogger(l zerolog.Logger) *Reporter {
	r.zlog = l
	return r
}

// WithQuiet hides successful per-file lines.
func (r *Reporter) WithQuiet(quiet bool) *Reporter {
	r.quiet = quiet
	return r
}

// WithProgress draws a progress bar for every running task.
func (r *Reporter) WithProgress(progress bool) *Reporter {
	r.progress = progress
	return r
}

// Track names a task before its events arrive. Untracked tasks show as
// "task <id>".
func (r *Reporter) Track(id int64, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view(id).label = label
}

func (r *Reporter) view(id int64) *taskView {
	v, ok := r.tasks[id]
	if !ok {
		v = &taskView{label: fmt.Sprintf("task %d", id)}
		r.tasks[id] = v
	}
	return v
}

// Totals returns what has been reported so far.
func (r *Reporter) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals
}

// 📡 Watch reports events until the stream closes or ctx ends.
func (r *Reporter) Watch(ctx context.Context, events <-chan task.Event) Totals {
	for {
		select {
		case <-ctx.Done():
			return r.Totals()
		case ev, ok := <-events:
			if !ok {
				return r.Totals()
			}
			r.Handle(ev)
		}
	}
}

// 📝 Handle reports a single event.
func (r *Reporter) Handle(ev task.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.view(ev.TaskID)
	switch ev.Kind {
	case task.EventStateChanged:
		r.zlog.Debug().Int64("task", ev.TaskID).Str("state", ev.State.String()).Msg("task state changed")
		if ev.State == task.Running {
			v.started = time.Now()
			r.startTask(ev.TaskID, v)
		}
	case task.EventProgress:
		if v.bar != nil && ev.Percent >= 0 {
			if step := int(ev.Percent) - v.bar.Current; step > 0 {
				v.bar.UpdateTitle(v.label)
				v.bar.Add(step)
			}
		}
	case task.EventFileCompleted:
		v.files++
		r.totals.Files++
		if !ev.Success {
			v.failed++
			r.totals.FileFails++
		}
		r.logFile(ev)
	case task.EventTaskCompleted:
		r.finishTask(ev, v)
	}
}

func (r *Reporter) startTask(id int64, v *taskView) {
	fmt.Fprintf(r.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(v.label),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("#%d", id))
	r.zlog.Info().Int64("task", id).Str("handler", v.label).Msg("task started")

	if r.progress {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(100).
			WithTitle(v.label).
			WithWriter(r.console).
			WithRemoveWhenDone(true).
			Start()
		if err == nil {
			v.bar = bar
		}
	}
}

func (r *Reporter) finishTask(ev task.Event, v *taskView) {
	if v.bar != nil {
		_, _ = v.bar.Stop()
		v.bar = nil
	}
	r.totals.Tasks++

	elapsed := ""
	if !v.started.IsZero() {
		elapsed = fmt.Sprintf(" (%s)", time.Since(v.started).Round(time.Millisecond))
	}
	msg := fmt.Sprintf("%s %s%s", v.label, ev.State, elapsed)
	if ev.Message != "" {
		msg = fmt.Sprintf("%s %s: %s%s", v.label, ev.State, ev.Message, elapsed)
	}

	if ev.Success {
		r.totals.Succeeded++
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(r.console).Println(msg)
		r.zlog.Info().Int64("task", ev.TaskID).Int("files", v.files).Str("message", ev.Message).Msg("task succeeded")
	} else {
		r.totals.Failed++
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(r.console).Println(msg)
		r.zlog.Error().Int64("task", ev.TaskID).Int("files", v.files).Int("failed", v.failed).Str("message", ev.Message).Msg("task failed")
	}
	delete(r.tasks, ev.TaskID)
}

func (r *Reporter) logFile(ev task.Event) {
	r.zlog.Debug().
		Int64("task", ev.TaskID).
		Str("input", ev.Input.Path()).
		Str("output", ev.Output.Path()).
		Bool("success", ev.Success).
		Str("message", ev.Message).
		Msg("file completed")

	if r.quiet && ev.Success {
		return
	}
	fmt.Fprintln(r.console, FormatFile(ev.Input, ev.Output, ev.Success, ev.Message))
}

// 📝 FormatFile renders one per-file line: a symbol, the input, the output
// when it differs from the input, and the status.
func FormatFile(input, output file.File, success bool, message string) string {
	var symbol rune
	var symbolColor color.Attribute
	target := ""
	switch {
	case !success:
		symbol = '✗'
		symbolColor = color.FgRed
	case output.IsValid() && !output.Equal(input):
		symbol = '⟳'
		symbolColor = color.FgBlue
		target = output.Path()
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	status := message
	if status == "" {
		status = "ok"
		if !success {
			status = "failed"
		}
	}
	statusColor := color.FgGreen
	if !success {
		statusColor = color.FgRed
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, input.Path()),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", outputWidth, target)),
		color.New(statusColor).Sprint(fmt.Sprintf("%-*s", statusWidth, status)))
}

// 📊 Table prints rows under a header row.
func (r *Reporter) Table(header []string, rows [][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := append([][]string{header}, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(r.console).Render()
}

// 📋 List prints one line per entry, sorted.
func (r *Reporter) List(entries []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), entries...)
	sort.Strings(sorted)
	for _, e := range sorted {
		fmt.Fprintln(r.console, e)
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the reporter from context
func FromContext(ctx context.Context) *Reporter {
	r, ok := ctx.Value(contextKey{}).(*Reporter)
	if !ok {
		panic("reporter not found in context")
	}
	return r
}

// 🎯 NewContext adds the reporter to context
func NewContext(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// 📝 Header logs a header
func (r *Reporter) Header(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("batchfx")
	fmt.Fprintf(r.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	r.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (r *Reporter) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (r *Reporter) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	r.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (r *Reporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	r.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (r *Reporter) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

func (r *Reporter) Infof(format string, args ...any) {
	r.Info(fmt.Sprintf(format, args...))
}

func (r *Reporter) Warningf(format string, args ...any) {
	r.Warning(fmt.Sprintf(format, args...))
}

func (r *Reporter) Errorf(format string, args ...any) {
	r.Error(fmt.Sprintf(format, args...))
}

func (r *Reporter) Successf(format string, args ...any) {
	r.Success(fmt.Sprintf(format, args...))
}
