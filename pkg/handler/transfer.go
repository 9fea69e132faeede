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
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const (
	NameCopy = "FileCopyHandler"
	NameMove = "FileMoveHandler"
)

// Duplicate policies at the destination.
const (
	DupRename    = "rename"
	DupOverwrite = "overwrite"
	DupSkip      = "skip"
)

// TransferOptions configures Copy and Move. Numbering formats the counter
// of the rename policy; its Template is replaced by DupTemplate.
type TransferOptions struct {
	Target      string
	DupMode     string
	DupTemplate string
	Numbering   DuplicateOptions
}

// 🚚 Transfer copies or moves files and directory trees into a target
// directory. Directories are created before their children are handled.
// Occupied destinations under the rename policy go through a Duplicate
// handler.
type Transfer struct {
	*Base
	move      bool
	numbering *Duplicate
}

func transferArgs(opts TransferOptions) *ArgumentMap {
	if opts.DupMode == "" {
		opts.DupMode = DupRename
	}
	if opts.DupTemplate == "" {
		opts.DupTemplate = DefaultDuplicateTemplate
	}
	return NewArgumentMap(
		Argument{Name: "Target", DisplayName: "Target", Description: "Destination directory.", Kind: ArgDir, Value: opts.Target, Required: true},
		Argument{Name: "DupMode", DisplayName: "On duplicate", Description: "What to do when the destination exists.", Kind: ArgOption, Limit: []string{DupRename, DupOverwrite, DupSkip}, Value: opts.DupMode},
		Argument{Name: "DupTemplate", DisplayName: "Duplicate template", Description: "Counter template used by the rename policy; N must appear exactly once.", Kind: ArgText, Limit: []string{`^[^N]*N[^N]*$`}, Value: opts.DupTemplate},
	)
}

func NewCopy(opts TransferOptions) *Transfer {
	return &Transfer{
		Base:      NewBase(NameCopy, "Copy", "Copy files and directories into a target directory.", transferArgs(opts)),
		numbering: NewDuplicate(opts.Numbering),
	}
}

func NewMove(opts TransferOptions) *Transfer {
	return &Transfer{
		Base:      NewBase(NameMove, "Move", "Move files and directories into a target directory.", transferArgs(opts)),
		move:      true,
		numbering: NewDuplicate(opts.Numbering),
	}
}

func (h *Transfer) Clone() Handler {
	return &Transfer{Base: h.CloneBase(), move: h.move, numbering: h.numbering.Clone().(*Duplicate)}
}

// Numbering is the Duplicate handler behind the rename policy.
func (h *Transfer) Numbering() *Duplicate { return h.numbering }

func (h *Transfer) Filter(files []file.File) []file.File { return file.Unique(files) }

// transferRun is the state of one Execute call.
type transferRun struct {
	h         *Transfer
	ctx       context.Context
	progress  Progress
	mode      string
	numbering *Duplicate
	total     int
	done      int
	failed    int
	skipped   int
}

func (r *transferRun) report(in, out file.File, ok bool, msg string) {
	r.done++
	if !ok {
		r.failed++
	}
	r.progress.OnFileComplete(in, out, ok, msg)
	r.progress.OnProgress(Percent(r.done, r.total), in.FileName())
}

func (h *Transfer) verb() string {
	if h.move {
		return "moved"
	}
	return "copied"
}

func (h *Transfer) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	target := h.Args().String("Target")
	if target == "" {
		progress.OnComplete(false, "target directory is required")
		return nil
	}
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	target, err := filepath.Abs(target)
	if err != nil {
		progress.OnComplete(false, errors.Errorf("resolving target: %w", err).Error())
		return nil
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		progress.OnComplete(false, errors.Errorf("creating target: %w", err).Error())
		return nil
	}
	dir := file.NewDir(target)

	numbering := h.numbering.Clone().(*Duplicate)
	if err := Configure(numbering, map[string]any{"Template": h.Args().String("DupTemplate")}); err != nil {
		progress.OnComplete(false, err.Error())
		return nil
	}

	run := &transferRun{
		h:         h,
		ctx:       ctx,
		progress:  progress,
		mode:      h.Args().String("DupMode"),
		numbering: numbering,
		total:     Collect(ctx, files, true).Entries(),
	}
	progress.OnProgress(0, fmt.Sprintf("%d entries to transfer", run.total))

	result := make([]file.File, 0, len(files))
	for _, src := range files {
		if h.Cancelled(ctx) {
			break
		}
		if !src.IsFile() && dir.IsWithin(src) {
			run.report(src, file.File{}, false, "cannot transfer a directory into itself")
			continue
		}
		dst := dir.Join(src.FileName(), src.IsFile())
		if out, ok := run.entry(src, dst, true); ok {
			result = append(result, out)
		}
	}

	zerolog.Ctx(ctx).Debug().Int("done", run.done).Int("failed", run.failed).Msg("transfer finished")
	msg := fmt.Sprintf("%d %s, %d skipped, %d failed", run.done-run.failed-run.skipped, h.verb(), run.skipped, run.failed)
	progress.OnComplete(run.failed == 0, msg)
	return result
}

// entry handles one source at one destination. top marks entries named
// in the input, where directory collisions follow the duplicate policy;
// below the top, existing directories are merged.
func (r *transferRun) entry(src, dst file.File, top bool) (file.File, bool) {
	if r.h.move && dst.Abs() == src.Abs() {
		r.skipped++
		r.report(src, dst, true, "unchanged")
		return dst, true
	}
	info, err := os.Lstat(src.Path())
	if err != nil {
		r.report(src, dst, false, err.Error())
		return file.File{}, false
	}
	if info.IsDir() {
		return r.dir(src, file.NewDir(dst.Path()), top)
	}
	return r.leaf(src, file.NewFile(dst.Path()), info.Mode().Type() != 0)
}

// resolve applies the duplicate policy to an occupied destination. It
// returns the destination to use and whether to go on.
func (r *transferRun) resolve(src, dst file.File) (file.File, bool) {
	if !dst.Exists() {
		return dst, true
	}
	switch r.mode {
	case DupSkip:
		r.skipped++
		r.report(src, dst, true, "skipped")
		return dst, false
	case DupOverwrite:
		if dst.Equal(src) || sameFile(src.Path(), dst.Path()) {
			r.skipped++
			r.report(src, dst, true, "source and target are the same")
			return dst, false
		}
		if err := removeTree(dst.Path()); err != nil {
			r.report(src, dst, false, err.Error())
			return dst, false
		}
		return dst, true
	default:
		sink := quiet()
		out := r.numbering.Execute(r.ctx, []file.File{dst}, sink)
		if len(out) != 1 {
			msg := "no free duplicate name"
			if sink.called && !sink.success {
				msg = sink.message
			}
			r.report(src, dst, false, msg)
			return dst, false
		}
		return out[0], true
	}
}

func (r *transferRun) leaf(src, dst file.File, special bool) (file.File, bool) {
	dst, ok := r.resolve(src, dst)
	if !ok {
		return dst, false
	}

	var err error
	switch {
	case r.h.move:
		err = moveTree(r.ctx, src.Path(), dst.Path())
	case special && isSymlink(src.Path()):
		err = copySymlink(src.Path(), dst.Path())
	case special:
		err = errors.Errorf("%s is not a regular file", src.Path())
	default:
		err = copyFile(src.Path(), dst.Path())
	}
	if err != nil {
		zerolog.Ctx(r.ctx).Debug().Err(err).Str("from", src.Path()).Str("to", dst.Path()).Msg("transfer failed")
		r.report(src, dst, false, err.Error())
		return dst, false
	}
	r.report(src, dst, true, "")
	return dst, true
}

func (r *transferRun) dir(src, dst file.File, top bool) (file.File, bool) {
	info, err := os.Stat(dst.Path())
	switch {
	case err == nil && info.IsDir() && !top:
		// merge into the existing directory
	case err == nil:
		var ok bool
		if info.IsDir() && r.mode == DupOverwrite {
			// overwrite merges trees and replaces files inside
			break
		}
		if dst, ok = r.resolve(src, dst); !ok {
			return dst, false
		}
	}

	srcInfo, err := os.Stat(src.Path())
	if err != nil {
		r.report(src, dst, false, err.Error())
		return dst, false
	}
	if err := os.MkdirAll(dst.Path(), srcInfo.Mode().Perm()|0o700); err != nil {
		r.report(src, dst, false, errors.Errorf("creating directory: %w", err).Error())
		return dst, false
	}

	entries, err := readDir(src.Path())
	if err != nil {
		r.report(src, dst, false, err.Error())
		return dst, false
	}

	clean := true
	for _, e := range entries {
		if r.h.Cancelled(r.ctx) {
			return dst, false
		}
		child := src.Join(e.Name(), !e.IsDir())
		failedBefore, skippedBefore := r.failed, r.skipped
		r.entry(child, dst.Join(e.Name(), !e.IsDir()), false)
		if r.failed != failedBefore || r.skipped != skippedBefore {
			clean = false
		}
	}

	if err := os.Chmod(dst.Path(), srcInfo.Mode().Perm()); err != nil {
		r.report(src, dst, false, errors.Errorf("setting mode: %w", err).Error())
		return dst, false
	}
	_ = os.Chtimes(dst.Path(), srcInfo.ModTime(), srcInfo.ModTime())

	if r.h.move {
		if !clean {
			r.report(src, dst, false, "source directory kept, not every entry moved")
			return dst, false
		}
		if err := os.Remove(src.Path()); err != nil {
			r.report(src, dst, false, errors.Errorf("removing source directory: %w", err).Error())
			return dst, false
		}
	}
	r.report(src, dst, true, "")
	return dst, true
}
