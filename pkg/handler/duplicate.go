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
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
)

const NameDuplicate = "FileDuplicateHandler"

// DefaultDuplicateTemplate is used when no template is configured.
const DefaultDuplicateTemplate = "(N)"

const maxDuplicateNumber = 1 << 20

// DuplicateOptions configures a Duplicate handler. The zero value numbers
// after the name, in decimal, without padding, and lets the first member
// of a colliding group keep its name.
type DuplicateOptions struct {
	Template      string
	Width         int
	Fill          rune
	Base          int
	Before        bool
	NumberFirst   bool
	SuffixInclude bool
}

// 🔢 Duplicate makes target names unique. A name that already exists on
// disk, or was already produced earlier in the batch, gets a counter
// formatted through the template, e.g. "a(1).txt".
type Duplicate struct {
	*Base
}

func NewDuplicate(opts DuplicateOptions) *Duplicate {
	if opts.Template == "" {
		opts.Template = DefaultDuplicateTemplate
	}
	if opts.Fill == 0 {
		opts.Fill = '0'
	}
	if opts.Base == 0 {
		opts.Base = 10
	}
	args := NewArgumentMap(
		Argument{Name: "Template", DisplayName: "Template", Description: "Counter template such as (N), N_ or [N]; N must appear exactly once.", Kind: ArgText, Value: opts.Template},
		Argument{Name: "Width", DisplayName: "Width", Description: "Minimum digits of the counter; 4 gives 0001, 0002.", Kind: ArgRange, Limit: []string{"0", "32"}, Value: opts.Width},
		Argument{Name: "Fill", DisplayName: "Fill", Description: "Character used to pad the counter to Width.", Kind: ArgText, Limit: []string{`^.$`}, Value: string(opts.Fill)},
		Argument{Name: "Base", DisplayName: "Base", Description: "Number base of the counter.", Kind: ArgRange, Limit: []string{"2", "36"}, Value: opts.Base},
		Argument{Name: "After", DisplayName: "After name", Description: "Put the counter after the name instead of before it.", Kind: ArgBool, Value: !opts.Before},
		Argument{Name: "IgnoreFirst", DisplayName: "Ignore first", Description: "The first file of a colliding group keeps its name.", Kind: ArgBool, Value: !opts.NumberFirst},
		Argument{Name: "SuffixInclude", DisplayName: "Include suffix", Description: "Treat the suffix as part of the name.", Kind: ArgBool, Value: opts.SuffixInclude},
	)
	return &Duplicate{Base: NewBase(NameDuplicate, "Duplicate numbering", "Number colliding target names, without writing to disk.", args)}
}

func (h *Duplicate) Clone() Handler { return &Duplicate{Base: h.CloneBase()} }

type counterFormat struct {
	template string
	width    int
	fill     rune
	base     int
	after    bool
}

func (c counterFormat) name(scope string, n int) string {
	num := strconv.FormatInt(int64(n), c.base)
	if pad := c.width - utf8.RuneCountInString(num); pad > 0 {
		num = strings.Repeat(string(c.fill), pad) + num
	}
	tag := strings.Replace(c.template, "N", num, 1)
	if c.after {
		return scope + tag
	}
	return tag + scope
}

func (h *Duplicate) format() counterFormat {
	fill, _ := utf8.DecodeRuneInString(h.Args().String("Fill"))
	if fill == utf8.RuneError {
		fill = '0'
	}
	base := h.Args().Int("Base")
	if base < 2 || base > 36 {
		base = 10
	}
	return counterFormat{
		template: h.Args().String("Template"),
		width:    h.Args().Int("Width"),
		fill:     fill,
		base:     base,
		after:    h.Args().Bool("After"),
	}
}

func (h *Duplicate) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	tmpl := h.Args().String("Template")
	if strings.Count(tmpl, "N") != 1 {
		progress.OnComplete(false, fmt.Sprintf("invalid template %q: N must appear exactly once", tmpl))
		return nil
	}
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}

	var (
		logger      = zerolog.Ctx(ctx)
		format      = h.format()
		ignoreFirst = h.Args().Bool("IgnoreFirst")
		suffixInc   = h.Args().Bool("SuffixInclude")
		sources     = sourcesFrom(ctx)
		// execution state, owned by this call only
		occurrences = make(map[string]int, len(files))
		counters    = make(map[string]int, len(files))
		seen        = make(map[string]bool, len(files))
		taken       = make(map[string]struct{}, len(files))
		result      = make([]file.File, 0, len(files))
		renumbered  int
	)
	if len(sources) != len(files) {
		sources = nil
	}
	ownSource := func(i int, f file.File) bool {
		return sources != nil && sources[i].Path() == f.Path()
	}

	for _, f := range files {
		occurrences[f.Path()]++
	}

	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		p := f.Path()
		first := !seen[p]
		seen[p] = true

		_, inBatch := taken[p]
		onDisk := f.Exists() && !ownSource(i, f)
		needs := onDisk || inBatch || (occurrences[p] > 1 && (!first || !ignoreFirst))

		out := f
		ok := true
		if needs {
			ok = false
			scope := nameScope(f, suffixInc)
			for counters[p] < maxDuplicateNumber && !h.Cancelled(ctx) {
				counters[p]++
				cand := f.WithName(rejoin(f, format.name(scope, counters[p]), suffixInc))
				if _, clash := taken[cand.Path()]; clash {
					continue
				}
				if cand.Exists() && !ownSource(i, cand) {
					continue
				}
				out, ok = cand, true
				break
			}
		}

		if !ok {
			progress.OnFileComplete(f, f, false, "no free duplicate name")
			continue
		}
		if !out.Equal(f) {
			renumbered++
			logger.Debug().Str("from", p).Str("to", out.Path()).Msg("duplicate renumbered")
		}
		taken[out.Path()] = struct{}{}
		result = append(result, out)
		progress.OnFileComplete(f, out, true, "")
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}

	progress.OnComplete(true, fmt.Sprintf("%d duplicates renumbered", renumbered))
	return result
}

type sourcesKey struct{}

// withSources records the original paths a name-transform chain started
// from, so an unchanged name is not mistaken for a collision with itself.
func withSources(ctx context.Context, files []file.File) context.Context {
	return context.WithValue(ctx, sourcesKey{}, files)
}

func sourcesFrom(ctx context.Context) []file.File {
	files, _ := ctx.Value(sourcesKey{}).([]file.File)
	return files
}
