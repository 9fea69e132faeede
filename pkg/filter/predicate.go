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

package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/batchfx/pkg/file"
)

// Kind tags a Predicate node.
type Kind int

const (
	KindAlways Kind = iota
	KindWildcard
	KindIsFile
	KindIsDir
	KindAnd
	KindOr
	KindNot
)

func (k Kind) String() string {
	switch k {
	case KindAlways:
		return "always"
	case KindWildcard:
		return "wildcard"
	case KindIsFile:
		return "file"
	case KindIsDir:
		return "dir"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return "unknown"
	}
}

// 🎯 Predicate is an immutable boolean rule over one file. Nodes are
// shared by pointer between trees; building bottom-up keeps them acyclic.
type Predicate struct {
	kind          Kind
	pattern       string
	caseSensitive bool
	left          *Predicate
	right         *Predicate
}

var (
	always = &Predicate{kind: KindAlways}
	isFile = &Predicate{kind: KindIsFile}
	isDir  = &Predicate{kind: KindIsDir}
)

// Always matches every file.
func Always() *Predicate { return always }

// IsFile matches entries flagged as files.
func IsFile() *Predicate { return isFile }

// IsDir matches entries flagged as directories.
func IsDir() *Predicate { return isDir }

// Wildcard matches the file name against a glob pattern. `*` matches any
// run of characters and `?` exactly one.
func Wildcard(pattern string, caseSensitive bool) *Predicate {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
	}
	return &Predicate{kind: KindWildcard, pattern: pattern, caseSensitive: caseSensitive}
}

func And(left, right *Predicate) *Predicate {
	return &Predicate{kind: KindAnd, left: left, right: right}
}

func Or(left, right *Predicate) *Predicate {
	return &Predicate{kind: KindOr, left: left, right: right}
}

func Not(inner *Predicate) *Predicate {
	return &Predicate{kind: KindNot, left: inner}
}

func (p *Predicate) Kind() Kind          { return p.kind }
func (p *Predicate) Pattern() string     { return p.pattern }
func (p *Predicate) CaseSensitive() bool { return p.caseSensitive }
func (p *Predicate) Left() *Predicate    { return p.left }
func (p *Predicate) Right() *Predicate   { return p.right }

// Match evaluates the rule. And and Or short-circuit left to right.
func (p *Predicate) Match(f file.File) bool {
	if p == nil {
		return false
	}
	switch p.kind {
	case KindAlways:
		return true
	case KindWildcard:
		return matchName(p.pattern, f.FileName(), p.caseSensitive)
	case KindIsFile:
		return f.IsFile()
	case KindIsDir:
		return f.IsDir()
	case KindAnd:
		return p.left.Match(f) && p.right.Match(f)
	case KindOr:
		return p.left.Match(f) || p.right.Match(f)
	case KindNot:
		return !p.left.Match(f)
	default:
		return false
	}
}

// Select keeps the files the predicate accepts.
func (p *Predicate) Select(files []file.File) []file.File {
	out := make([]file.File, 0, len(files))
	for _, f := range files {
		if p.Match(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the tree, e.g. and(wildcard(a),not(wildcard(b))).
func (p *Predicate) String() string {
	if p == nil {
		return "<nil>"
	}
	switch p.kind {
	case KindWildcard:
		return "wildcard(" + p.pattern + ")"
	case KindAnd, KindOr:
		return p.kind.String() + "(" + p.left.String() + "," + p.right.String() + ")"
	case KindNot:
		return "not(" + p.left.String() + ")"
	default:
		return p.kind.String()
	}
}

// Equal reports structural equality.
func (p *Predicate) Equal(other *Predicate) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.kind != other.kind || p.pattern != other.pattern || p.caseSensitive != other.caseSensitive {
		return false
	}
	switch p.kind {
	case KindAnd, KindOr:
		return p.left.Equal(other.left) && p.right.Equal(other.right)
	case KindNot:
		return p.left.Equal(other.left)
	}
	return true
}

func matchName(pattern, name string, caseSensitive bool) bool {
	if !caseSensitive {
		name = strings.ToLower(name)
	}
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		// a bad pattern never matches
		return false
	}
	return ok
}
