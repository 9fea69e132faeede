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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const NameDelete = "FileDeleteHandler"

// DeleteOptions configures a Delete handler.
type DeleteOptions struct {
	Force    bool
	TrashDir string
}

// ❌ Delete removes files permanently (Force) or moves them to the trash.
type Delete struct {
	*Base
}

func NewDelete(opts DeleteOptions) *Delete {
	args := NewArgumentMap(
		Argument{Name: "Force", DisplayName: "Force", Description: "Delete permanently, clearing read-only permissions first.", Kind: ArgBool, Value: opts.Force},
		Argument{Name: "TrashDir", DisplayName: "Trash directory", Description: "Trash to move entries into; defaults to the desktop trash.", Kind: ArgDir, Value: opts.TrashDir},
	)
	return &Delete{Base: NewBase(NameDelete, "Delete", "Delete files and directories, or move them to the trash.", args)}
}

func (h *Delete) Clone() Handler { return &Delete{Base: h.CloneBase()} }

func (h *Delete) Filter(files []file.File) []file.File {
	return file.SortByDepth(file.Unique(files))
}

type deleteRun struct {
	h        *Delete
	ctx      context.Context
	progress Progress
	total    int
	done     int
	failed   int
}

func (r *deleteRun) report(in, out file.File, ok bool, msg string) {
	r.done++
	if !ok {
		r.failed++
	}
	r.progress.OnFileComplete(in, out, ok, msg)
	r.progress.OnProgress(Percent(r.done, r.total), in.FileName())
}

func (h *Delete) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	logger := zerolog.Ctx(ctx)
	force := h.Args().Bool("Force")

	run := &deleteRun{h: h, ctx: ctx, progress: progress}
	if force {
		run.total = Collect(ctx, files, true).Entries()
	} else {
		run.total = len(files)
	}

	trash := DefaultTrash()
	if dir := h.Args().String("TrashDir"); dir != "" {
		trash = Trash{Dir: dir}
	}

	var result []file.File
	for _, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		if force {
			run.remove(f)
			continue
		}
		out, err := trash.Put(ctx, f, time.Now())
		if err != nil {
			logger.Debug().Err(err).Str("path", f.Path()).Msg("trash failed")
			run.report(f, file.File{}, false, err.Error())
			continue
		}
		result = append(result, out)
		run.report(f, out, true, "moved to trash")
	}

	verb := "trashed"
	if force {
		verb = "deleted"
	}
	progress.OnComplete(run.failed == 0, fmt.Sprintf("%d %s, %d failed", run.done-run.failed, verb, run.failed))
	return result
}

// remove deletes f and everything below it, children first, reporting
// every entry.
func (r *deleteRun) remove(f file.File) bool {
	if r.h.Cancelled(r.ctx) {
		return false
	}
	info, err := os.Lstat(f.Path())
	if err != nil {
		r.report(f, file.File{}, false, err.Error())
		return false
	}
	if err := makeWritable(f.Path()); err != nil {
		r.report(f, file.File{}, false, errors.Errorf("clearing read-only: %w", err).Error())
		return false
	}

	if info.IsDir() {
		entries, err := readDir(f.Path())
		if err != nil {
			r.report(f, file.File{}, false, err.Error())
			return false
		}
		ok := true
		for _, e := range entries {
			if !r.remove(f.Join(e.Name(), !e.IsDir())) {
				ok = false
			}
		}
		if !ok {
			if !r.h.Cancelled(r.ctx) {
				r.report(f, file.File{}, false, "directory not empty")
			}
			return false
		}
	}

	if err := removeEntry(f.Path()); err != nil {
		r.report(f, file.File{}, false, err.Error())
		return false
	}
	r.report(f, file.File{}, true, "")
	return true
}
