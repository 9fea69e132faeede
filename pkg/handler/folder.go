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

	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const (
	NameClearFolder = "ClearFolderHandler"
	NameEnvelope    = "FileEnvelopeByDirHandler"
)

// 🧽 ClearFolder removes every file below its directories and keeps the
// directory structure.
type ClearFolder struct {
	*Base
}

func NewClearFolder() *ClearFolder {
	return &ClearFolder{Base: NewBase(NameClearFolder, "Clear folder", "Delete every file inside directories, keeping the directories.", nil)}
}

func (h *ClearFolder) Clone() Handler { return &ClearFolder{Base: h.CloneBase()} }

func (h *ClearFolder) Filter(files []file.File) []file.File {
	var dirs []file.File
	for _, f := range file.Unique(files) {
		if f.IsDir() {
			dirs = append(dirs, f)
		}
	}
	return dirs
}

func (h *ClearFolder) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	total := Collect(ctx, files, true).Files
	var removed, failed int

	for _, dir := range files {
		if h.Cancelled(ctx) {
			break
		}
		_ = filepath.WalkDir(dir.Path(), func(path string, d fs.DirEntry, err error) error {
			if h.Cancelled(ctx) {
				return fs.SkipAll
			}
			if err != nil {
				failed++
				progress.OnFileComplete(file.New(path, d == nil || !d.IsDir()), file.File{}, false, err.Error())
				return nil
			}
			if d.IsDir() {
				return nil
			}
			f := file.NewFile(path)
			if err := removeEntry(path); err != nil {
				failed++
				progress.OnFileComplete(f, file.File{}, false, err.Error())
				return nil
			}
			removed++
			progress.OnFileComplete(f, file.File{}, true, "")
			progress.OnProgress(Percent(removed+failed, total), f.FileName())
			return nil
		})
	}

	progress.OnComplete(failed == 0, fmt.Sprintf("%d files removed, %d failed", removed, failed))
	return files
}

// 📦 Envelope moves each file into a new directory named after the file's
// base name: a/b.txt becomes a/b/b.txt.
type Envelope struct {
	*Base
}

func NewEnvelope() *Envelope {
	return &Envelope{Base: NewBase(NameEnvelope, "Envelope by directory", "Move every file into a directory named after it.", nil)}
}

func (h *Envelope) Clone() Handler { return &Envelope{Base: h.CloneBase()} }

func (h *Envelope) Filter(files []file.File) []file.File {
	var out []file.File
	for _, f := range file.Unique(files) {
		if f.IsFile() {
			out = append(out, f)
		}
	}
	return out
}

func (h *Envelope) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}
	var (
		result []file.File
		failed int
	)
	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		out, err := envelope(f)
		if err != nil {
			failed++
			progress.OnFileComplete(f, out, false, err.Error())
		} else {
			result = append(result, out)
			progress.OnFileComplete(f, out, true, "")
		}
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}
	progress.OnComplete(failed == 0, fmt.Sprintf("%d enveloped, %d failed", len(result), failed))
	return result
}

func envelope(f file.File) (file.File, error) {
	dir := f.ParentDirectory().Join(f.BaseName(), false)
	dst := dir.Join(f.FileName(), true)

	if info, err := os.Stat(dir.Path()); err == nil && !info.IsDir() {
		// a suffix-less file would collide with its own envelope
		if !dir.Equal(f) {
			return dst, errors.Errorf("%s exists and is not a directory", dir.Path())
		}
		return envelopeSelf(f, dst)
	}
	if err := os.MkdirAll(dir.Path(), 0o755); err != nil {
		return dst, errors.Errorf("creating %s: %w", dir.Path(), err)
	}
	if dst.Exists() {
		return dst, errors.Errorf("%s already exists", dst.Path())
	}
	if err := os.Rename(f.Path(), dst.Path()); err != nil {
		return dst, errors.Errorf("moving: %w", err)
	}
	return dst, nil
}

// envelopeSelf handles a file whose envelope directory has its own name,
// by parking it under a temporary name first.
func envelopeSelf(f, dst file.File) (file.File, error) {
	tmp, err := os.CreateTemp(f.ParentDirectory().Path(), ".envelope-*")
	if err != nil {
		return dst, errors.Errorf("creating temporary name: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := os.Rename(f.Path(), tmpPath); err != nil {
		os.Remove(tmpPath)
		return dst, errors.Errorf("moving aside: %w", err)
	}
	if err := os.Mkdir(f.Path(), 0o755); err != nil {
		_ = os.Rename(tmpPath, f.Path())
		return dst, errors.Errorf("creating %s: %w", f.Path(), err)
	}
	if err := os.Rename(tmpPath, dst.Path()); err != nil {
		return dst, errors.Errorf("moving: %w", err)
	}
	return dst, nil
}
