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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
	"github.com/walteh/batchfx/pkg/testutils"
)

func TestRecipeBuild(t *testing.T) {
	r := Recipe{
		Name:    "shout",
		Handler: handler.NamePipe,
		Steps: []Recipe{
			{Handler: handler.NameReplace, Args: map[string]any{"Pattern": "draft", "After": "final"}},
			{Handler: handler.NameCase, Args: map[string]any{"Upper": "true"}},
		},
	}

	h, err := r.Build()
	require.NoError(t, err)
	pipe, ok := h.(*handler.Pipe)
	require.True(t, ok)
	assert.Len(t, pipe.Handlers(), 2)

	// every Build is a fresh instance
	other, err := r.Build()
	require.NoError(t, err)
	assert.NotSame(t, h, other)

	rec := &testutils.Recorder{}
	out := h.Execute(testutils.Context(t), []file.File{file.NewFile("notes-draft.md")}, rec)
	assert.Equal(t, []string{"NOTES-FINAL.md"}, file.Paths(out))
	assert.True(t, rec.Success)
}

func TestRecipeRenameSteps(t *testing.T) {
	r := Recipe{
		Handler: handler.NameRename,
		Args:    map[string]any{"DryRun": true},
		Steps:   []Recipe{{Handler: handler.NameCase}},
	}
	h, err := r.Build()
	require.NoError(t, err)
	rename, ok := h.(*handler.Rename)
	require.True(t, ok)
	assert.Len(t, rename.Handlers(), 1)
	assert.True(t, rename.Args().Bool("DryRun"))
}

func TestRecipeSelector(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
		want   []string
	}{
		{name: "no_globs_keeps_all", recipe: Recipe{}, want: []string{"a.JPG", "b.png", "tmp.jpg"}},
		{name: "include", recipe: Recipe{Include: []string{"*.jpg"}}, want: []string{"a.JPG", "tmp.jpg"}},
		{name: "include_and_exclude", recipe: Recipe{Include: []string{"*.jpg", "*.png"}, Exclude: []string{"tmp*"}}, want: []string{"a.JPG", "b.png"}},
		{name: "exclude_only", recipe: Recipe{Exclude: []string{"*.png"}}, want: []string{"a.JPG", "tmp.jpg"}},
	}

	files := []file.File{file.NewFile("a.JPG"), file.NewFile("b.png"), file.NewFile("tmp.jpg")}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.recipe.Selector(false).Select(files)
			assert.Equal(t, tt.want, file.Paths(got))
		})
	}

	strict := Recipe{Include: []string{"*.jpg"}}.Selector(true)
	assert.Equal(t, []string{"tmp.jpg"}, file.Paths(strict.Select(files)))
}
