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
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const NameRename = "FileRenameHandler"

// 🏷️ Rename computes new names through a pipe of name transforms and then
// renames on disk. Input is deduplicated and ordered deepest first so no
// directory is renamed before the entries below it.
type Rename struct {
	*Base
	transforms *Pipe
}

func NewRename(transforms ...Handler) *Rename {
	args := NewArgumentMap(
		Argument{Name: "DryRun", DisplayName: "Dry run", Description: "Report the new names without renaming.", Kind: ArgBool, Value: false},
	)
	return &Rename{
		Base:       NewBase(NameRename, "Rename", "Rename files through a chain of name transforms.", args),
		transforms: NewPipe(transforms...),
	}
}

// Append adds name transforms to the chain.
func (h *Rename) Append(transforms ...Handler) { h.transforms.Append(transforms...) }

func (h *Rename) Handlers() []Handler { return h.transforms.Handlers() }

func (h *Rename) Clone() Handler {
	return &Rename{Base: h.CloneBase(), transforms: h.transforms.Clone().(*Pipe)}
}

func (h *Rename) Cancel() {
	h.Base.Cancel()
	h.transforms.Cancel()
}

func (h *Rename) String() string {
	return h.Base.String() + h.transforms.String()
}

func (h *Rename) Filter(files []file.File) []file.File {
	return file.SortByDepth(file.Unique(files))
}

func (h *Rename) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	logger := zerolog.Ctx(ctx)

	sink := quiet()
	targets := h.transforms.Execute(withSources(ctx, files), files, sink)
	if sink.called && !sink.success {
		progress.OnComplete(false, sink.message)
		return nil
	}
	if len(targets) != len(files) {
		progress.OnComplete(false, "count of files not equals")
		return nil
	}

	dryRun := h.Args().Bool("DryRun")
	result := make([]file.File, 0, len(files))
	var renamed, unchanged, failed int

	for i, src := range files {
		if h.Cancelled(ctx) {
			break
		}
		dst := targets[i]

		switch {
		case dst.Equal(src):
			unchanged++
			result = append(result, src)
			progress.OnFileComplete(src, dst, true, "unchanged")
		case dryRun:
			renamed++
			result = append(result, dst)
			progress.OnFileComplete(src, dst, true, "dry run")
		default:
			if err := renameEntry(src, dst); err != nil {
				failed++
				logger.Debug().Err(err).Str("from", src.Path()).Str("to", dst.Path()).Msg("rename failed")
				progress.OnFileComplete(src, dst, false, err.Error())
				break
			}
			renamed++
			if src.IsDir() {
				rebase(result, src, dst)
			}
			result = append(result, dst)
			logger.Debug().Str("from", src.Path()).Str("to", dst.Path()).Msg("renamed")
			progress.OnFileComplete(src, dst, true, "")
		}
		progress.OnProgress(Percent(i+1, len(files)), src.FileName())
	}

	msg := fmt.Sprintf("%d renamed, %d unchanged, %d failed", renamed, unchanged, failed)
	progress.OnComplete(failed == 0, msg)
	return result
}

func renameEntry(src, dst file.File) error {
	// a case-only rename on a case-insensitive filesystem sees dst as existing
	if dst.Exists() && !(strings.EqualFold(src.Path(), dst.Path()) && sameFile(src.Path(), dst.Path())) {
		return errors.Errorf("%s already exists", dst.Path())
	}
	if err := os.Rename(src.Path(), dst.Path()); err != nil {
		return errors.Errorf("renaming: %w", err)
	}
	return nil
}

// rebase rewrites already produced paths that lived under a directory that
// has just been renamed.
func rebase(done []file.File, from, to file.File) {
	for i, f := range done {
		if !f.IsWithin(from) || f.Abs() == from.Abs() {
			continue
		}
		rel, err := filepath.Rel(from.Abs(), f.Abs())
		if err != nil {
			continue
		}
		done[i] = to.Join(rel, f.IsFile())
	}
}
