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

package handler_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
	"github.com/walteh/batchfx/pkg/testutils"
)

func runTransfer(t *testing.T, h handler.Handler, files []file.File) ([]file.File, *testutils.Recorder) {
	t.Helper()
	rec := &testutils.Recorder{}
	out := h.Execute(testutils.Context(t), h.Filter(files), rec)
	require.Equal(t, 1, rec.Completes)
	return out, rec
}

// 🧪 TestCopyTree copies files and directories with their content and times
func TestCopyTree(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.WriteTree(t, src, map[string]string{
		"d/a.txt":     "a",
		"d/sub/b.txt": "b",
		"d/empty/":    "",
		"c.txt":       "c",
	})
	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "c.txt"), stamp, stamp))

	h := handler.NewCopy(handler.TransferOptions{Target: dst})
	out, rec := runTransfer(t, h, testutils.Files(src, "d/", "c.txt", "c.txt"))

	assert.True(t, rec.Success, rec.Final)
	assert.Equal(t, "6 copied, 0 skipped, 0 failed", rec.Final)
	assert.Equal(t, []string{"c.txt", "d"}, testutils.Rel(t, dst, file.Paths(out)))
	assert.Equal(t, map[string]string{
		"d/a.txt":     "a",
		"d/sub/b.txt": "b",
		"d/empty/":    "",
		"c.txt":       "c",
	}, testutils.ReadTree(t, dst))

	info, err := os.Stat(filepath.Join(dst, "c.txt"))
	require.NoError(t, err)
	assert.True(t, stamp.Equal(info.ModTime()), "mtime %s", info.ModTime())

	// the source is untouched
	assert.Len(t, testutils.ReadTree(t, src), 4)
	assert.Equal(t, float64(100), rec.Percents[len(rec.Percents)-1])
}

func TestCopySymlink(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.WriteTree(t, src, map[string]string{"t.txt": "hello", "d/": ""})
	target := filepath.Join(src, "t.txt")
	require.NoError(t, os.Symlink(target, filepath.Join(src, "d", "link")))

	_, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: dst}), testutils.Files(src, "d/"))
	assert.True(t, rec.Success, rec.Final)
	assert.Equal(t, "2 copied, 0 skipped, 0 failed", rec.Final)

	copied := filepath.Join(dst, "d", "link")
	info, err := os.Lstat(copied)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "copied entry is a link")

	got, err := os.Readlink(copied)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

// 🧪 TestCopyDuplicatePolicies covers rename, skip and overwrite
func TestCopyDuplicatePolicies(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		wantFinal string
		wantTree  map[string]string
	}{
		{
			name:      "rename",
			mode:      handler.DupRename,
			wantFinal: "1 copied, 0 skipped, 0 failed",
			wantTree:  map[string]string{"c.txt": "old", "c(1).txt": "new"},
		},
		{
			name:      "skip",
			mode:      handler.DupSkip,
			wantFinal: "0 copied, 1 skipped, 0 failed",
			wantTree:  map[string]string{"c.txt": "old"},
		},
		{
			name:      "overwrite read only target",
			mode:      handler.DupOverwrite,
			wantFinal: "1 copied, 0 skipped, 0 failed",
			wantTree:  map[string]string{"c.txt": "new"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := t.TempDir(), t.TempDir()
			testutils.WriteTree(t, src, map[string]string{"c.txt": "new"})
			testutils.WriteTree(t, dst, map[string]string{"c.txt": "old"})
			require.NoError(t, os.Chmod(filepath.Join(dst, "c.txt"), 0o444))

			h := handler.NewCopy(handler.TransferOptions{Target: dst, DupMode: tt.mode})
			_, rec := runTransfer(t, h, testutils.Files(src, "c.txt"))

			assert.True(t, rec.Success, rec.Final)
			assert.Equal(t, tt.wantFinal, rec.Final)
			assert.Equal(t, tt.wantTree, testutils.ReadTree(t, dst))
		})
	}
}

func TestCopyRenameNumbering(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.WriteTree(t, src, map[string]string{"c.txt": "new", "d/a.txt": "a"})
	testutils.WriteTree(t, dst, map[string]string{"c.txt": "old", "_001c.txt": "taken", "d/": ""})

	h := handler.NewCopy(handler.TransferOptions{
		Target:      dst,
		DupTemplate: "_N",
		Numbering:   handler.DuplicateOptions{Width: 3, Before: true},
	})
	out, rec := runTransfer(t, h, testutils.Files(src, "c.txt", "d/"))
	assert.True(t, rec.Success, rec.Final)
	assert.Equal(t, []string{"_001d", "_002c.txt"}, testutils.Rel(t, dst, file.Paths(out)))
	assert.Equal(t, map[string]string{
		"c.txt":       "old",
		"_001c.txt":   "taken",
		"_002c.txt":   "new",
		"d/":          "",
		"_001d/a.txt": "a",
	}, testutils.ReadTree(t, dst))

	// the configured numbering survives cloning
	clone := h.Clone().(*handler.Transfer)
	assert.Equal(t, 3, clone.Numbering().Args().Int("Width"))
}

func TestCopyDirectoryCollision(t *testing.T) {
	t.Run("rename numbers the directory", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		testutils.WriteTree(t, src, map[string]string{"d/a.txt": "a"})
		testutils.WriteTree(t, dst, map[string]string{"d/other.txt": "o"})

		out, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: dst}), testutils.Files(src, "d/"))
		assert.True(t, rec.Success, rec.Final)
		assert.Equal(t, []string{"d(1)"}, testutils.Rel(t, dst, file.Paths(out)))
		assert.Equal(t, map[string]string{"d/other.txt": "o", "d(1)/a.txt": "a"}, testutils.ReadTree(t, dst))
	})

	t.Run("overwrite merges", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		testutils.WriteTree(t, src, map[string]string{"d/a.txt": "a"})
		testutils.WriteTree(t, dst, map[string]string{"d/other.txt": "o", "d/a.txt": "old"})

		h := handler.NewCopy(handler.TransferOptions{Target: dst, DupMode: handler.DupOverwrite})
		_, rec := runTransfer(t, h, testutils.Files(src, "d/"))
		assert.True(t, rec.Success, rec.Final)
		assert.Equal(t, map[string]string{"d/other.txt": "o", "d/a.txt": "a"}, testutils.ReadTree(t, dst))
	})
}

// 🧪 TestMove leaves nothing behind at the source
func TestMove(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	testutils.WriteTree(t, src, map[string]string{
		"d/a.txt":     "a",
		"d/sub/b.txt": "b",
		"c.txt":       "c",
	})

	out, rec := runTransfer(t, handler.NewMove(handler.TransferOptions{Target: dst}), testutils.Files(src, "d/", "c.txt"))
	assert.True(t, rec.Success, rec.Final)
	assert.Equal(t, "5 moved, 0 skipped, 0 failed", rec.Final)
	assert.Equal(t, []string{"c.txt", "d"}, testutils.Rel(t, dst, file.Paths(out)))
	assert.Empty(t, testutils.ReadTree(t, src))
	assert.Equal(t, map[string]string{"d/a.txt": "a", "d/sub/b.txt": "b", "c.txt": "c"}, testutils.ReadTree(t, dst))
}

func TestMoveInPlace(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{"a.txt": "a"})

	out, rec := runTransfer(t, handler.NewMove(handler.TransferOptions{Target: root}), testutils.Files(root, "a.txt"))
	assert.True(t, rec.Success)
	assert.Equal(t, "0 moved, 1 skipped, 0 failed", rec.Final)
	assert.Equal(t, []string{"a.txt"}, testutils.Rel(t, root, file.Paths(out)))
}

func TestTransferErrors(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		root := t.TempDir()
		testutils.WriteTree(t, root, map[string]string{"a.txt": "a"})
		out, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{}), testutils.Files(root, "a.txt"))
		assert.Nil(t, out)
		assert.False(t, rec.Success)
		assert.Equal(t, "target directory is required", rec.Final)
	})

	t.Run("into itself", func(t *testing.T) {
		root := t.TempDir()
		testutils.WriteTree(t, root, map[string]string{"d/a.txt": "a"})
		target := filepath.Join(root, "d", "inner")
		out, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: target}), testutils.Files(root, "d/"))
		assert.Empty(t, out)
		assert.False(t, rec.Success)
		require.Len(t, rec.Files, 1)
		assert.Equal(t, "cannot transfer a directory into itself", rec.Files[0].Message)
	})

	t.Run("into itself through a relative source", func(t *testing.T) {
		root := t.TempDir()
		testutils.WriteTree(t, root, map[string]string{"src/a.txt": "a", "src/bak/": ""})
		testutils.Chdir(t, root)

		target := filepath.Join(root, "src", "bak")
		out, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: target}), []file.File{file.NewDir("src")})
		assert.Empty(t, out)
		assert.False(t, rec.Success)
		require.Len(t, rec.Files, 1)
		assert.Equal(t, "cannot transfer a directory into itself", rec.Files[0].Message)
		assert.Equal(t, map[string]string{"src/a.txt": "a", "src/bak/": ""}, testutils.ReadTree(t, root))
	})

	t.Run("relative target", func(t *testing.T) {
		root := t.TempDir()
		testutils.WriteTree(t, root, map[string]string{"a.txt": "a"})
		testutils.Chdir(t, root)

		out, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: "out"}), []file.File{file.NewFile(filepath.Join(root, "a.txt"))})
		assert.True(t, rec.Success, rec.Final)
		assert.Equal(t, []string{filepath.Join(root, "out", "a.txt")}, file.Paths(out))
	})

	t.Run("missing source", func(t *testing.T) {
		root, dst := t.TempDir(), t.TempDir()
		_, rec := runTransfer(t, handler.NewCopy(handler.TransferOptions{Target: dst}), testutils.Files(root, "gone.txt"))
		assert.False(t, rec.Success)
		assert.Equal(t, "0 copied, 0 skipped, 1 failed", rec.Final)
	})
}
