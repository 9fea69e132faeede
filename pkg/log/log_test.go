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
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/task"
)

func plain(t *testing.T) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

func TestFormatFile(t *testing.T) {
	plain(t)

	tests := []struct {
		name    string
		input   file.File
		output  file.File
		success bool
		message string
		want    string
	}{
		{
			name:    "unchanged",
			input:   file.NewFile("a.txt"),
			output:  file.NewFile("a.txt"),
			success: true,
			want:    "    ✓ a.txt                                                                   ok             ",
		},
		{
			name:    "renamed",
			input:   file.NewFile("a.txt"),
			output:  file.NewFile("b.txt"),
			success: true,
			want:    "    ⟳ a.txt                               b.txt                               ok             ",
		},
		{
			name:    "failed_with_message",
			input:   file.NewFile("c.txt"),
			output:  file.NewFile("x.txt"),
			message: "exists",
			want:    "    ✗ c.txt                                                                   exists         ",
		},
		{
			name:  "failed_without_message",
			input: file.NewFile("d.txt"),
			want:  "    ✗ d.txt                                                                   failed         ",
		},
		{
			name:    "no_output",
			input:   file.NewDir("dir"),
			success: true,
			message: "moved to trash",
			want:    "    ✓ dir                                                                     moved to trash ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFile(tt.input, tt.output, tt.success, tt.message))
		})
	}
}

func TestReporterHandle(t *testing.T) {
	plain(t)

	buf := &bytes.Buffer{}
	r := New(buf, zerolog.Disabled).WithLogger(zerolog.Nop())
	r.Track(1, "FileCopyHandler")

	events := []task.Event{
		{TaskID: 1, Kind: task.EventStateChanged, State: task.Running},
		{TaskID: 1, Kind: task.EventProgress, Percent: 50, Message: "a.txt"},
		{TaskID: 1, Kind: task.EventFileCompleted, Input: file.NewFile("a.txt"), Output: file.NewFile("dst/a.txt"), Success: true},
		{TaskID: 1, Kind: task.EventFileCompleted, Input: file.NewFile("b.txt"), Message: "exists"},
		{TaskID: 1, Kind: task.EventTaskCompleted, State: task.Failed, Message: "1 copied, 0 skipped, 1 failed"},
		{TaskID: 2, Kind: task.EventStateChanged, State: task.Running},
		{TaskID: 2, Kind: task.EventTaskCompleted, State: task.Succeeded, Success: true, Message: "0 matches"},
	}
	for _, ev := range events {
		r.Handle(ev)
	}

	got := lines(buf)
	require.Len(t, got, 6, "output: %q", buf.String())
	assert.Equal(t, "◆ FileCopyHandler • #1", got[0])
	assert.True(t, strings.HasPrefix(got[1], "⟳ a.txt"), got[1])
	assert.Contains(t, got[1], "dst/a.txt")
	assert.True(t, strings.HasPrefix(got[2], "✗ b.txt"), got[2])
	assert.True(t, strings.HasPrefix(got[3], "❌: FileCopyHandler failed: 1 copied, 0 skipped, 1 failed"), got[3])
	assert.Equal(t, "◆ task 2 • #2", got[4])
	assert.True(t, strings.HasPrefix(got[5], "✅: task 2 succeeded: 0 matches"), got[5])

	assert.Equal(t, Totals{Tasks: 2, Succeeded: 1, Failed: 1, Files: 2, FileFails: 1}, r.Totals())
}

func TestReporterQuiet(t *testing.T) {
	plain(t)

	buf := &bytes.Buffer{}
	r := New(buf, zerolog.Disabled).WithLogger(zerolog.Nop()).WithQuiet(true)
	r.Handle(task.Event{TaskID: 1, Kind: task.EventFileCompleted, Input: file.NewFile("a.txt"), Success: true})
	r.Handle(task.Event{TaskID: 1, Kind: task.EventFileCompleted, Input: file.NewFile("b.txt"), Message: "denied"})

	got := lines(buf)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "✗ b.txt"))
}

func TestReporterWatch(t *testing.T) {
	plain(t)

	events := make(chan task.Event, 4)
	events <- task.Event{TaskID: 7, Kind: task.EventStateChanged, State: task.Running}
	events <- task.Event{TaskID: 7, Kind: task.EventFileCompleted, Input: file.NewFile("a"), Success: true}
	events <- task.Event{TaskID: 7, Kind: task.EventTaskCompleted, State: task.Succeeded, Success: true}
	close(events)

	r := New(io.Discard, zerolog.Disabled).WithLogger(zerolog.Nop())
	totals := r.Watch(context.Background(), events)
	assert.Equal(t, Totals{Tasks: 1, Succeeded: 1, Files: 1}, totals)

	// 🧪 a cancelled context stops watching an open stream
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	open := make(chan task.Event)
	assert.Equal(t, totals, r.Watch(ctx, open))
}

func TestReporterMessages(t *testing.T) {
	plain(t)

	tests := []struct {
		name     string
		op       func(r *Reporter)
		wantLogs []string
	}{
		{
			name: "log_messages",
			op: func(r *Reporter) {
				r.Info("info message")
				r.Warning("warning message")
				r.Error("error message")
				r.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(r *Reporter) {
				r.Infof("info %s", "test")
				r.Warningf("warning %s", "test")
				r.Errorf("error %s", "test")
				r.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(r *Reporter) {
				r.Header("renaming 3 files")
			},
			wantLogs: []string{
				"batchfx • renaming 3 files",
			},
		},
		{
			name: "list_is_sorted",
			op: func(r *Reporter) {
				r.List([]string{"b", "a", "c"})
			},
			wantLogs: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			r := New(buf, zerolog.Disabled).WithLogger(zerolog.Nop())

			tt.op(r)

			got := lines(buf)
			require.Equal(t, len(tt.wantLogs), len(got), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, got[i], "log line %d should match", i)
			}
		})
	}
}

func TestReporterTable(t *testing.T) {
	plain(t)

	buf := &bytes.Buffer{}
	r := New(buf, zerolog.Disabled).WithLogger(zerolog.Nop())
	require.NoError(t, r.Table([]string{"NAME", "SIZE"}, [][]string{{"a.txt", "3 B"}}))
	assert.Contains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "a.txt")
}

func TestReporterContext(t *testing.T) {
	r := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), r)
	assert.Same(t, r, FromContext(ctx), "reporter from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when reporter is missing")
}
