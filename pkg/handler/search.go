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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/filter"
)

const NameSearch = "FileSearchHandler"

// 🔍 Search walks directories and returns every entry the predicate
// accepts. File inputs are tested directly.
type Search struct {
	*Base
	predicate *filter.Predicate
}

func NewSearch(expression string, caseSensitive bool) *Search {
	args := NewArgumentMap(
		Argument{Name: "Expression", DisplayName: "Expression", Description: "Filter expression, e.g. *.go&!*_test.go; empty matches everything.", Kind: ArgText, Value: expression},
		Argument{Name: "CaseSensitive", DisplayName: "Case sensitive", Description: "Match names case-sensitively.", Kind: ArgBool, Value: caseSensitive},
	)
	return &Search{Base: NewBase(NameSearch, "Search", "Find files below directories by filter expression.", args)}
}

// NewSearchPredicate searches with a prebuilt predicate; the Expression
// argument is ignored.
func NewSearchPredicate(p *filter.Predicate) *Search {
	s := NewSearch(p.String(), true)
	s.predicate = p
	return s
}

// Predicate is shared between clones; it is immutable.
func (h *Search) Clone() Handler { return &Search{Base: h.CloneBase(), predicate: h.predicate} }

func (h *Search) compile() (*filter.Predicate, error) {
	if h.predicate != nil {
		return h.predicate, nil
	}
	expr := h.Args().String("Expression")
	if strings.TrimSpace(expr) == "" {
		return filter.Always(), nil
	}
	return filter.Compile(expr, h.Args().Bool("CaseSensitive"))
}

func (h *Search) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	pred, err := h.compile()
	if err != nil {
		progress.OnComplete(false, err.Error())
		return nil
	}
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("predicate", pred.String()).Int("roots", len(files)).Msg("search")

	var result []file.File
	for _, root := range files {
		if h.Cancelled(ctx) {
			break
		}
		if root.IsFile() {
			if pred.Match(root) {
				result = append(result, root)
				progress.OnFileComplete(root, root, true, "")
			}
			continue
		}

		progress.OnProgress(Indeterminate, root.Path())
		_ = filepath.WalkDir(root.Path(), func(path string, d fs.DirEntry, err error) error {
			if h.Cancelled(ctx) {
				return fs.SkipAll
			}
			if err != nil {
				progress.OnFileComplete(root, file.New(path, d == nil || !d.IsDir()), false, err.Error())
				if d != nil && d.IsDir() && path != root.Path() {
					return fs.SkipDir
				}
				return nil
			}
			if path == root.Path() {
				return nil
			}
			f := file.New(path, !d.IsDir())
			if pred.Match(f) {
				result = append(result, f)
				progress.OnFileComplete(root, f, true, "")
			}
			return nil
		})
	}

	progress.OnComplete(true, fmt.Sprintf("%d matches", len(result)))
	return result
}
