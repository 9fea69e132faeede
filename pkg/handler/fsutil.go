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
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

const copyBufferSize = 1 << 20

// copyFile copies one regular file, keeping its mode and modification
// time. An existing dst is truncated.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating target: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Errorf("closing target: %w", cerr)
		}
	}()

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return errors.Errorf("copying content: %w", err)
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return errors.Errorf("setting mode: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("setting times: %w", err)
	}
	return nil
}

// copySymlink recreates the link at dst pointing at the same target.
func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return errors.Errorf("reading link: %w", err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return errors.Errorf("creating link: %w", err)
	}
	return nil
}

// copyTree copies src to dst recursively. Used where no per-entry events
// are needed, e.g. moving into the trash across devices.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Errorf("stat %s: %w", src, err)
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(src, dst)
	case !info.IsDir():
		return copyFile(src, dst)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}
	entries, err := readDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := copyTree(ctx, filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// moveTree renames src to dst, falling back to copy and remove when they
// are on different devices.
func moveTree(ctx context.Context, src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return errors.Errorf("renaming: %w", err)
	}
	if err := copyTree(ctx, src, dst); err != nil {
		return errors.Errorf("copying across devices: %w", err)
	}
	if err := removeTree(src); err != nil {
		return errors.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// removeTree is os.RemoveAll that first makes read-only entries writable.
func removeTree(path string) error {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.Type()&fs.ModeSymlink == 0 {
			_ = makeWritable(p)
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// removeEntry removes one entry. When the parent directory refuses the
// unlink it is made writable for a single retry and its mode put back
// afterwards.
func removeEntry(path string) error {
	err := os.Remove(path)
	if err == nil || !errors.Is(err, fs.ErrPermission) {
		return err
	}
	parent := filepath.Dir(path)
	info, serr := os.Lstat(parent)
	if serr != nil {
		return err
	}
	if werr := makeWritable(parent); werr != nil {
		return err
	}
	defer func() { _ = os.Chmod(parent, info.Mode().Perm()) }()
	return os.Remove(path)
}

// makeWritable adds owner write permission, plus execute for directories
// so their entries can be listed and removed.
func makeWritable(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil
	}
	want := info.Mode().Perm() | 0o200
	if info.IsDir() {
		want |= 0o700
	}
	if want == info.Mode().Perm() {
		return nil
	}
	return os.Chmod(path, want)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// readDir lists a directory in name order.
func readDir(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", dir, err)
	}
	return entries, nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
