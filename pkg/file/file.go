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

// Package file holds the normalized path value every handler works on.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📄 File is an immutable, normalized filesystem path plus its type flag.
//
// The zero value is an invalid File.
type File struct {
	path   string
	isFile bool
	depth  int
}

// 🏭 New normalizes path (native separators, no trailing separator) and
// computes its depth. It never fails: an empty path yields an invalid File.
func New(path string, isFile bool) File {
	if strings.TrimSpace(path) == "" {
		return File{}
	}
	p := filepath.Clean(filepath.FromSlash(path))
	return File{
		path:   p,
		isFile: isFile,
		depth:  Depth(p),
	}
}

// NewFile is shorthand for New(path, true).
func NewFile(path string) File { return New(path, true) }

// NewDir is shorthand for New(path, false).
func NewDir(path string) File { return New(path, false) }

// 🔍 Stat builds an absolute File from what is on disk. Symlinks are
// followed so a link to a directory is reported as a directory.
func Stat(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, errors.Errorf("stat %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, errors.Errorf("resolving %s: %w", path, err)
	}
	return New(abs, !info.IsDir()), nil
}

// Depth counts the separator-delimited segments of the normalized path.
// "/a/b" has depth 3 because the leading root segment is empty.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return len(strings.Split(path, string(filepath.Separator)))
}

func (f File) Path() string   { return f.path }
func (f File) IsFile() bool   { return f.isFile }
func (f File) IsDir() bool    { return f.path != "" && !f.isFile }
func (f File) Depth() int     { return f.depth }
func (f File) IsValid() bool  { return f.path != "" }
func (f File) String() string { return f.path }

// Abs returns the absolute form of the path, or the path itself when the
// working directory cannot be resolved.
func (f File) Abs() string {
	if f.path == "" || filepath.IsAbs(f.path) {
		return f.path
	}
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return f.path
	}
	return abs
}

// FileName is the last path element including any suffix.
func (f File) FileName() string {
	if f.path == "" {
		return ""
	}
	return filepath.Base(f.path)
}

// Suffix returns the file suffix without the leading dot. Registered
// multi-part suffixes win over the last dot-delimited segment.
func (f File) Suffix() string {
	_, suffix := splitName(f.FileName())
	return suffix
}

// BaseName is the file name without "." + Suffix().
func (f File) BaseName() string {
	base, _ := splitName(f.FileName())
	return base
}

// ParentDirectory returns the containing directory.
func (f File) ParentDirectory() File {
	if f.path == "" {
		return File{}
	}
	return NewDir(filepath.Dir(f.path))
}

// Join returns a File for name inside this directory.
func (f File) Join(name string, isFile bool) File {
	return New(filepath.Join(f.path, name), isFile)
}

// WithName returns the sibling of f called name, keeping the type flag.
// Depth is recomputed from the new path.
func (f File) WithName(name string) File {
	return New(filepath.Join(filepath.Dir(f.path), name), f.isFile)
}

// Equal compares normalized paths.
func (f File) Equal(other File) bool { return f.path == other.path }

// Exists reports whether anything is present at the path (without
// following a final symlink).
func (f File) Exists() bool {
	if f.path == "" {
		return false
	}
	_, err := os.Lstat(f.path)
	return err == nil
}

// IsHidden reports a dot-prefixed name.
func (f File) IsHidden() bool {
	name := f.FileName()
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// IsWithin reports whether f is dir itself or lies below it. Relative and
// absolute forms of the same location compare equal.
func (f File) IsWithin(dir File) bool {
	if !f.IsValid() || !dir.IsValid() {
		return false
	}
	path, parent := f.Abs(), dir.Abs()
	if path == parent {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(path, parent)
}

// ComposeName joins a base name and suffix back into a file name.
func ComposeName(base, suffix string) string {
	if suffix == "" {
		return base
	}
	return base + "." + suffix
}

func splitName(name string) (string, string) {
	if name == "" {
		return "", ""
	}
	if s, ok := registeredSuffix(name); ok {
		return name[:len(name)-len(s)-1], s
	}
	idx := strings.LastIndex(name, ".")
	// a leading dot marks a hidden name, not a suffix
	if idx <= 0 || idx == len(name)-1 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// Paths flattens files to their path strings.
func Paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.path)
	}
	return out
}
