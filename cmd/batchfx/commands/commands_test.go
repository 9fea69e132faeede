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

package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/config"
	"github.com/walteh/batchfx/pkg/handler"
	"github.com/walteh/batchfx/pkg/log"
	"github.com/walteh/batchfx/pkg/testutils"
)

func newOpts(t *testing.T, quiet bool) (*opts.RootOpts, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := config.Default()
	cfg.Workers = 2
	return &opts.RootOpts{
		Config:   cfg,
		Quiet:    quiet,
		Reporter: log.New(buf, zerolog.Disabled).WithLogger(zerolog.Nop()).WithQuiet(quiet),
	}, buf
}

func runCmd(t *testing.T, cmd *cobra.Command, out *bytes.Buffer, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(testutils.Context(t))
}

func TestRenameCmd(t *testing.T) {
	tests := []struct {
		name  string
		tree  map[string]string
		args  []string
		want  map[string]string
		error string
	}{
		{
			name: "replace_and_lower",
			tree: map[string]string{"IMG_1.JPG": "1", "IMG_2.JPG": "2"},
			args: []string{"--pattern", "IMG_", "--replace", "Photo-", "--lower"},
			want: map[string]string{"photo-1.JPG": "1", "photo-2.JPG": "2"},
		},
		{
			name: "collisions_are_numbered",
			tree: map[string]string{"a.txt": "a", "b.txt": "b"},
			args: []string{"--pattern", "*", "--replace", "x"},
			want: map[string]string{"x.txt": "a", "x(1).txt": "b"},
		},
		{
			name: "dry_run_leaves_disk_alone",
			tree: map[string]string{"a.txt": "a"},
			args: []string{"--upper", "--dry-run"},
			want: map[string]string{"a.txt": "a"},
		},
		{
			name:  "nothing_to_do",
			tree:  map[string]string{"a.txt": "a"},
			error: "nothing to rename",
			want:  map[string]string{"a.txt": "a"},
		},
		{
			name:  "exclusive_case_flags",
			tree:  map[string]string{"a.txt": "a"},
			args:  []string{"--upper", "--lower"},
			error: "exclusive",
			want:  map[string]string{"a.txt": "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			testutils.WriteTree(t, root, tt.tree)

			var paths []string
			for rel := range tt.tree {
				paths = append(paths, filepath.Join(root, rel))
			}
			sort.Strings(paths)

			o, buf := newOpts(t, false)
			err := runCmd(t, NewRenameCmd(o), buf, append(tt.args, paths...)...)
			if tt.error != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.error)
			} else {
				require.NoError(t, err, buf.String())
			}
			assert.Equal(t, tt.want, testutils.ReadTree(t, root))
		})
	}
}

func TestTransferCmds(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{
		"src/a.txt":   "a",
		"src/d/b.txt": "b",
		"dst/a.txt":   "old",
	})

	o, buf := newOpts(t, false)
	err := runCmd(t, NewCopyCmd(o), buf, "--on-duplicate", handler.DupSkip,
		filepath.Join(root, "dst"), filepath.Join(root, "src", "a.txt"), filepath.Join(root, "src", "d"))
	require.NoError(t, err, buf.String())

	o, buf = newOpts(t, false)
	err = runCmd(t, NewMoveCmd(o), buf, "--on-duplicate", handler.DupOverwrite,
		filepath.Join(root, "dst"), filepath.Join(root, "src", "a.txt"))
	require.NoError(t, err, buf.String())

	assert.Equal(t, map[string]string{
		"src/d/b.txt": "b",
		"dst/a.txt":   "a",
		"dst/d/b.txt": "b",
	}, testutils.ReadTree(t, root))

	// 🧪 a bad policy is rejected before anything runs
	o, buf = newOpts(t, false)
	err = runCmd(t, NewCopyCmd(o), buf, "--on-duplicate", "merge", filepath.Join(root, "dst"), filepath.Join(root, "src", "d"))
	require.Error(t, err)
	assert.ErrorIs(t, err, handler.ErrInvalidArgument)
}

func TestSearchAndMatchCmds(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{
		"a.go":      "",
		"a_test.go": "",
		"pkg/b.go":  "",
	})

	o, buf := newOpts(t, true)
	require.NoError(t, runCmd(t, NewSearchCmd(o), buf, "--files", "*.go&!*_test.go", root))
	listing := filepath.Join(root, "a.go") + "\n" + filepath.Join(root, "pkg", "b.go") + "\n"
	assert.True(t, strings.HasSuffix(buf.String(), listing), buf.String())
	assert.NotContains(t, buf.String(), "a_test.go")

	o, buf = newOpts(t, false)
	err := runCmd(t, NewSearchCmd(o), buf, "(*.go", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing expression")

	o, buf = newOpts(t, false)
	out := &bytes.Buffer{}
	err = runCmd(t, NewMatchCmd(o), out, "*.go&!*_test.go", "a.go", "dir/b_test.go")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 names did not match", err.Error())
	assert.Equal(t, "true  a.go\nfalse dir/b_test.go\n", out.String())
}

func TestDeleteAndFolderCmds(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{
		"gone/a.txt":  "a",
		"keep/b.txt":  "b",
		"keep/c/d.md": "d",
		"env.txt":     "e",
		"trashed.txt": "t",
	})
	trash := filepath.Join(t.TempDir(), "Trash")

	o, buf := newOpts(t, false)
	require.NoError(t, runCmd(t, NewDeleteCmd(o), buf, "--force", filepath.Join(root, "gone")))

	o, buf = newOpts(t, false)
	o.Config.TrashDir = trash
	require.NoError(t, runCmd(t, NewDeleteCmd(o), buf, filepath.Join(root, "trashed.txt")))

	o, buf = newOpts(t, false)
	require.NoError(t, runCmd(t, NewClearCmd(o), buf, filepath.Join(root, "keep")))

	o, buf = newOpts(t, false)
	require.NoError(t, runCmd(t, NewEnvelopeCmd(o), buf, filepath.Join(root, "env.txt")))

	assert.Equal(t, map[string]string{
		"keep/c/":     "",
		"env/env.txt": "e",
	}, testutils.ReadTree(t, root))
	assert.FileExists(t, filepath.Join(trash, "files", "trashed.txt"))
}

func TestAttribAndStatCmds(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{"a.txt": "abc"})

	o, buf := newOpts(t, false)
	require.NoError(t, runCmd(t, NewAttribCmd(o), buf, "--hidden", handler.AttrSet, filepath.Join(root, "a.txt")))
	assert.FileExists(t, filepath.Join(root, ".a.txt"))

	o, buf = newOpts(t, false)
	err := runCmd(t, NewAttribCmd(o), buf, filepath.Join(root, ".a.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	o, buf = newOpts(t, false)
	require.NoError(t, runCmd(t, NewStatCmd(o), buf, "--table", root))
	assert.Contains(t, buf.String(), "1 files, 1 directories, 1 hidden, 3 B")
	assert.Contains(t, buf.String(), "MODIFIED")
}

func TestRunCmd(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{"a.txt": "a", "b.md": "b"})

	o, buf := newOpts(t, false)
	o.Config.Recipes = []config.Recipe{{
		Name:    "shout",
		Handler: handler.NameRename,
		Include: []string{"*.txt"},
		Steps:   []config.Recipe{{Handler: handler.NameCase, Args: map[string]any{"Upper": true}}},
	}}
	require.NoError(t, o.Config.Validate())

	require.NoError(t, runCmd(t, NewRunCmd(o), buf, "shout", filepath.Join(root, "a.txt"), filepath.Join(root, "b.md")))
	assert.Equal(t, map[string]string{"A.txt": "a", "b.md": "b"}, testutils.ReadTree(t, root))

	o2, buf := newOpts(t, false)
	err := runCmd(t, NewRunCmd(o2), buf, "shout", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipes configured")

	o, buf = newOpts(t, false)
	err = runCmd(t, NewRunCmd(o), buf, "shout", filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestListingCmds(t *testing.T) {
	o, buf := newOpts(t, false)
	o.Config.Recipes = []config.Recipe{{Name: "up", Handler: handler.NameCase, Include: []string{"*.txt"}}}

	require.NoError(t, runCmd(t, NewRecipesCmd(o), buf))
	assert.Contains(t, buf.String(), "up")
	assert.Contains(t, buf.String(), "CaseTransformHandler(SuffixInclude=false,Upper=false)")

	buf.Reset()
	require.NoError(t, runCmd(t, NewHandlersCmd(o), buf))
	for _, name := range handler.Registered() {
		assert.Contains(t, buf.String(), name)
	}
}

func TestVersionCmd(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, runCmd(t, NewVersionCmd(), out, "--json"))

	var info VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, GetVersionInfo(), info)
	assert.NotEmpty(t, info.GoVersion)

	out.Reset()
	require.NoError(t, runCmd(t, NewVersionCmd(), out))
	assert.True(t, strings.HasPrefix(out.String(), "🚀 batchfx "))
}
