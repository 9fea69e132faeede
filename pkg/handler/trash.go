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
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

// 🗑️ Trash is a freedesktop.org trash directory: removed entries live in
// files/ and each has a matching info/<name>.trashinfo record.
type Trash struct {
	Dir string
}

// DefaultTrash is $XDG_DATA_HOME/Trash, falling back to
// ~/.local/share/Trash.
func DefaultTrash() Trash {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return Trash{Dir: filepath.Join(dir, "Trash")}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Trash{Dir: filepath.Join(os.TempDir(), "Trash")}
	}
	return Trash{Dir: filepath.Join(home, ".local", "share", "Trash")}
}

func (t Trash) filesDir() string { return filepath.Join(t.Dir, "files") }
func (t Trash) infoDir() string  { return filepath.Join(t.Dir, "info") }

// Put moves f into the trash and returns where it ended up.
func (t Trash) Put(ctx context.Context, f file.File, now time.Time) (file.File, error) {
	abs, err := filepath.Abs(f.Path())
	if err != nil {
		return file.File{}, errors.Errorf("resolving %s: %w", f.Path(), err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return file.File{}, errors.Errorf("stat %s: %w", abs, err)
	}
	for _, d := range []string{t.filesDir(), t.infoDir()} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return file.File{}, errors.Errorf("creating trash: %w", err)
		}
	}

	name, info, err := t.reserve(f)
	if err != nil {
		return file.File{}, err
	}

	record := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: abs}).EscapedPath(), now.Format("2006-01-02T15:04:05"))
	if _, err := info.WriteString(record); err != nil {
		info.Close()
		os.Remove(info.Name())
		return file.File{}, errors.Errorf("writing trash info: %w", err)
	}
	if err := info.Close(); err != nil {
		os.Remove(info.Name())
		return file.File{}, errors.Errorf("writing trash info: %w", err)
	}

	dst := filepath.Join(t.filesDir(), name)
	if err := moveTree(ctx, abs, dst); err != nil {
		os.Remove(info.Name())
		return file.File{}, errors.Errorf("moving to trash: %w", err)
	}
	return file.New(dst, f.IsFile()), nil
}

// reserve claims a free name by creating its info file exclusively.
func (t Trash) reserve(f file.File) (string, *os.File, error) {
	format := counterFormat{template: ".N", fill: '0', base: 10, after: true}
	name := f.FileName()
	for n := 1; n < maxDuplicateNumber; n++ {
		if _, err := os.Lstat(filepath.Join(t.filesDir(), name)); err == nil {
			name = file.ComposeName(format.name(f.BaseName(), n), f.Suffix())
			continue
		}
		info, err := os.OpenFile(filepath.Join(t.infoDir(), name+".trashinfo"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if os.IsExist(err) {
			name = file.ComposeName(format.name(f.BaseName(), n), f.Suffix())
			continue
		}
		if err != nil {
			return "", nil, errors.Errorf("reserving trash name: %w", err)
		}
		return name, info, nil
	}
	return "", nil, errors.Errorf("no free trash name for %s", f.FileName())
}
