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

	"github.com/walteh/batchfx/pkg/file"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const NameCase = "CaseTransformHandler"

// 🔠 CaseTransform upper- or lower-cases names without touching the disk.
type CaseTransform struct {
	*Base
}

func NewCaseTransform(upper, suffixInclude bool) *CaseTransform {
	args := NewArgumentMap(
		Argument{Name: "Upper", DisplayName: "Upper case", Description: "Upper case when set, lower case otherwise.", Kind: ArgBool, Value: upper},
		Argument{Name: "SuffixInclude", DisplayName: "Include suffix", Description: "Transform the suffix too.", Kind: ArgBool, Value: suffixInclude},
	)
	return &CaseTransform{Base: NewBase(NameCase, "Case transform", "Change the case of file names, without writing to disk.", args)}
}

func (h *CaseTransform) Clone() Handler { return &CaseTransform{Base: h.CloneBase()} }

func (h *CaseTransform) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}

	caser := cases.Lower(language.Und)
	if h.Args().Bool("Upper") {
		caser = cases.Upper(language.Und)
	}
	suffixInc := h.Args().Bool("SuffixInclude")

	result := make([]file.File, 0, len(files))
	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		out := f.WithName(rejoin(f, caser.String(nameScope(f, suffixInc)), suffixInc))
		result = append(result, out)
		progress.OnFileComplete(f, out, true, "")
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}

	progress.OnComplete(true, fmt.Sprintf("%d names computed", len(result)))
	return result
}
