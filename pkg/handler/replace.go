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
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const NameReplace = "FileNameReplaceByExpHandler"

const (
	SyntaxWildcard = "wildcard"
	SyntaxRegexp   = "regexp"
)

// ReplaceOptions configures a Replace handler.
type ReplaceOptions struct {
	Pattern       string
	After         string
	Syntax        string
	CaseSensitive bool
	SuffixInclude bool
}

// ✏️ Replace rewrites file names by pattern without touching the disk.
// Every distinct matched substring is replaced by After wherever it occurs.
type Replace struct {
	*Base
}

func NewReplace(opts ReplaceOptions) *Replace {
	if opts.Syntax == "" {
		opts.Syntax = SyntaxWildcard
	}
	args := NewArgumentMap(
		Argument{Name: "Pattern", DisplayName: "Pattern", Description: "Wildcard or regular expression matched against the name; * is any run of characters, ? is one character.", Kind: ArgText, Value: opts.Pattern},
		Argument{Name: "After", DisplayName: "Replacement", Description: "Text that replaces every matched substring.", Kind: ArgText, Value: opts.After},
		Argument{Name: "Syntax", DisplayName: "Syntax", Description: "Pattern syntax.", Kind: ArgOption, Limit: []string{SyntaxWildcard, SyntaxRegexp}, Value: opts.Syntax},
		Argument{Name: "CaseSensitive", DisplayName: "Case sensitive", Description: "Match case exactly.", Kind: ArgBool, Value: opts.CaseSensitive},
		Argument{Name: "SuffixInclude", DisplayName: "Include suffix", Description: "Match against the full name instead of the base name.", Kind: ArgBool, Value: opts.SuffixInclude},
	)
	return &Replace{Base: NewBase(NameReplace, "Replace by expression", "Replace parts of file names matched by an expression, without writing to disk.", args)}
}

func (h *Replace) Clone() Handler { return &Replace{Base: h.CloneBase()} }

func (h *Replace) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	if len(files) == 0 {
		progress.OnComplete(true, "the file list to be handled is empty")
		return nil
	}

	re, err := CompilePattern(h.Args().String("Pattern"), h.Args().String("Syntax"), h.Args().Bool("CaseSensitive"))
	if err != nil {
		progress.OnComplete(false, err.Error())
		return nil
	}

	after := h.Args().String("After")
	suffixInc := h.Args().Bool("SuffixInclude")
	logger := zerolog.Ctx(ctx)

	result := make([]file.File, 0, len(files))
	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		name := replaceTokens(re, nameScope(f, suffixInc), after)
		out := f.WithName(rejoin(f, name, suffixInc))
		logger.Debug().Str("from", f.Path()).Str("to", out.Path()).Msg("replace")

		result = append(result, out)
		progress.OnFileComplete(f, out, true, "")
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}

	progress.OnComplete(true, fmt.Sprintf("%d names computed", len(result)))
	return result
}

// CompilePattern turns a wildcard or regexp pattern into a regexp. An
// empty pattern yields nil, which matches nothing.
func CompilePattern(pattern, syntax string, caseSensitive bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	expr := pattern
	if !strings.EqualFold(syntax, SyntaxRegexp) {
		expr = WildcardToRegexp(pattern)
	}
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return re, nil
}

// WildcardToRegexp translates * and ? and keeps [...] classes; everything
// else is literal.
func WildcardToRegexp(pattern string) string {
	var b strings.Builder
	inClass, classStart := false, false
	for _, r := range pattern {
		switch {
		case inClass:
			if classStart && r == '!' {
				b.WriteRune('^')
			} else {
				b.WriteRune(r)
			}
			classStart = false
			if r == ']' {
				inClass = false
			}
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteString(".")
		case r == '[':
			inClass, classStart = true, true
			b.WriteRune(r)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if inClass {
		// unterminated class: treat the whole thing literally
		return regexp.QuoteMeta(pattern)
	}
	return b.String()
}

func replaceTokens(re *regexp.Regexp, s, after string) string {
	if re == nil {
		return s
	}
	seen := map[string]struct{}{}
	var tokens []string
	for _, tok := range re.FindAllString(s, -1) {
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	for _, tok := range tokens {
		s = strings.ReplaceAll(s, tok, after)
	}
	return s
}

// nameScope is the part of the name a transform works on.
func nameScope(f file.File, suffixInc bool) string {
	if suffixInc {
		return f.FileName()
	}
	return f.BaseName()
}

// rejoin puts the untouched suffix back on a transformed scope.
func rejoin(f file.File, scope string, suffixInc bool) string {
	if suffixInc {
		return scope
	}
	return file.ComposeName(scope, f.Suffix())
}
