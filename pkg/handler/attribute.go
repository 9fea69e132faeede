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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const NameAttribute = "FileModifyAttributeHandler"

// Tri-state attribute changes.
const (
	AttrUnchanged = "unchanged"
	AttrSet       = "set"
	AttrClear     = "clear"
)

// AttributeOptions configures an Attribute handler. Empty values mean
// unchanged.
type AttributeOptions struct {
	ReadOnly  string
	Hidden    string
	Recursive bool
}

// 🔐 Attribute sets or clears the read-only and hidden attributes. Hidden
// is the leading dot of the name, so changing it renames the entry.
type Attribute struct {
	*Base
}

func NewAttribute(opts AttributeOptions) *Attribute {
	if opts.ReadOnly == "" {
		opts.ReadOnly = AttrUnchanged
	}
	if opts.Hidden == "" {
		opts.Hidden = AttrUnchanged
	}
	choices := []string{AttrUnchanged, AttrSet, AttrClear}
	args := NewArgumentMap(
		Argument{Name: "ReadOnly", DisplayName: "Read only", Description: "Remove or restore write permission.", Kind: ArgOption, Limit: choices, Value: opts.ReadOnly},
		Argument{Name: "Hidden", DisplayName: "Hidden", Description: "Add or remove the leading dot of the name.", Kind: ArgOption, Limit: choices, Value: opts.Hidden},
		Argument{Name: "Recursive", DisplayName: "Recursive", Description: "Apply to everything below directories too.", Kind: ArgBool, Value: opts.Recursive},
	)
	return &Attribute{Base: NewBase(NameAttribute, "Modify attributes", "Change read-only and hidden attributes.", args)}
}

func (h *Attribute) Clone() Handler { return &Attribute{Base: h.CloneBase()} }

func (h *Attribute) Filter(files []file.File) []file.File {
	return file.SortByDepth(file.Unique(files))
}

func (h *Attribute) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	readOnly := h.Args().String("ReadOnly")
	hidden := h.Args().String("Hidden")
	recursive := h.Args().Bool("Recursive")

	var (
		result []file.File
		done   int
		failed int
	)
	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		if recursive && f.IsDir() {
			for _, child := range descendants(ctx, f) {
				if h.Cancelled(ctx) {
					break
				}
				out, err := applyAttributes(child, readOnly, hidden)
				done++
				if err != nil {
					failed++
					progress.OnFileComplete(child, out, false, err.Error())
					continue
				}
				progress.OnFileComplete(child, out, true, "")
			}
		}
		if h.Cancelled(ctx) {
			break
		}

		out, err := applyAttributes(f, readOnly, hidden)
		done++
		if err != nil {
			failed++
			progress.OnFileComplete(f, out, false, err.Error())
		} else {
			result = append(result, out)
			progress.OnFileComplete(f, out, true, "")
		}
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}

	progress.OnComplete(failed == 0, fmt.Sprintf("%d changed, %d failed", done-failed, failed))
	return result
}

// descendants lists everything below dir, deepest first.
func descendants(ctx context.Context, dir file.File) []file.File {
	var out []file.File
	_ = filepath.WalkDir(dir.Path(), func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil || path == dir.Path() {
			return nil
		}
		out = append(out, file.New(path, !d.IsDir()))
		return nil
	})
	return file.SortByDepth(out)
}

func applyAttributes(f file.File, readOnly, hidden string) (file.File, error) {
	info, err := os.Lstat(f.Path())
	if err != nil {
		return f, errors.Errorf("stat: %w", err)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		mode := info.Mode().Perm()
		switch readOnly {
		case AttrSet:
			mode &^= 0o222
		case AttrClear:
			mode |= 0o200
		}
		if mode != info.Mode().Perm() {
			if err := os.Chmod(f.Path(), mode); err != nil {
				return f, errors.Errorf("changing mode: %w", err)
			}
		}
	}

	name := f.FileName()
	switch hidden {
	case AttrSet:
		if !strings.HasPrefix(name, ".") {
			name = "." + name
		}
	case AttrClear:
		name = strings.TrimLeft(name, ".")
		if name == "" {
			return f, errors.Errorf("%s has no name without its leading dots", f.Path())
		}
	}
	if name == f.FileName() {
		return f, nil
	}

	out := f.WithName(name)
	if out.Exists() {
		return f, errors.Errorf("%s already exists", out.Path())
	}
	if err := os.Rename(f.Path(), out.Path()); err != nil {
		return f, errors.Errorf("renaming: %w", err)
	}
	return out, nil
}
