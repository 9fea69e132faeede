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
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnbalanced   = errors.Base("unbalanced parentheses")
	ErrOperandCount = errors.Base("operand count does not match binary operators")
	ErrMalformed    = errors.Base("malformed expression")
	ErrBadPattern   = errors.Base("invalid wildcard pattern")
)

// operator precedence: an incoming operator is pushed when the stack is
// empty or its in-priority is >= the top's out-priority. Equal & and |
// therefore stack up and associate to the right.
type operator struct {
	in, out int
}

var operators = map[string]operator{
	"&": {in: 1, out: 1},
	"|": {in: 1, out: 1},
	"!": {in: 2, out: 2},
	"(": {in: 5, out: 0},
	")": {in: -1, out: -1},
}

const operatorChars = "!&|()"

type token struct {
	text string
	op   bool
}

// 🧮 Compile parses a filter expression such as "*.go&!*_test.go" into a
// Predicate. Operands are wildcard patterns; operators are & | ! ( ).
// A failed compile means no predicate is available, never "match all".
func Compile(expr string, caseSensitive bool) (*Predicate, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", expr, err)
	}

	postfix, err := toPostfix(tokens)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", expr, err)
	}

	pred, err := build(postfix, caseSensitive)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", expr, err)
	}
	return pred, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string, caseSensitive bool) *Predicate {
	p, err := Compile(expr, caseSensitive)
	if err != nil {
		panic(err)
	}
	return p
}

// Match compiles expr and evaluates it against a single path. Paths are
// treated as files.
func Match(expr, path string, caseSensitive bool) (bool, error) {
	p, err := Compile(expr, caseSensitive)
	if err != nil {
		return false, err
	}
	return p.Match(file.NewFile(path)), nil
}

func tokenize(expr string) ([]token, error) {
	var (
		tokens   []token
		operand  strings.Builder
		operands int
		binops   int
		opens    int
		closes   int
	)

	flush := func() {
		s := strings.TrimSpace(operand.String())
		operand.Reset()
		if s == "" {
			return
		}
		tokens = append(tokens, token{text: s})
		operands++
	}

	for _, r := range expr {
		if !strings.ContainsRune(operatorChars, r) {
			operand.WriteRune(r)
			continue
		}
		flush()
		tokens = append(tokens, token{text: string(r), op: true})
		switch r {
		case '&', '|':
			binops++
		case '(':
			opens++
		case ')':
			closes++
		}
	}
	flush()

	if opens != closes {
		return nil, ErrUnbalanced
	}
	if binops+1 != operands {
		return nil, errors.Errorf("%d operands for %d binary operators: %w", operands, binops, ErrOperandCount)
	}
	if err := checkShape(tokens); err != nil {
		return nil, err
	}
	for _, t := range tokens {
		if !t.op && !doublestar.ValidatePattern(t.text) {
			return nil, errors.Errorf("%q: %w", t.text, ErrBadPattern)
		}
	}
	return tokens, nil
}

// checkShape rejects operators in positions the grammar does not allow,
// such as "a!" or "()" or ")a(".
func checkShape(tokens []token) error {
	wantOperand := true
	depth := 0
	for _, t := range tokens {
		switch {
		case !t.op:
			if !wantOperand {
				return errors.Errorf("unexpected operand %q: %w", t.text, ErrMalformed)
			}
			wantOperand = false
		case t.text == "!" || t.text == "(":
			if !wantOperand {
				return errors.Errorf("unexpected %q: %w", t.text, ErrMalformed)
			}
			if t.text == "(" {
				depth++
			}
		case t.text == ")":
			if wantOperand || depth == 0 {
				return errors.Errorf("unexpected %q: %w", t.text, ErrMalformed)
			}
			depth--
		default:
			if wantOperand {
				return errors.Errorf("unexpected %q: %w", t.text, ErrMalformed)
			}
			wantOperand = true
		}
	}
	if wantOperand {
		return errors.Errorf("expression ends with an operator: %w", ErrMalformed)
	}
	return nil
}

func toPostfix(tokens []token) ([]token, error) {
	out := make([]token, 0, len(tokens))
	var stack []token

	for _, t := range tokens {
		if !t.op {
			out = append(out, t)
			continue
		}
		if t.text == ")" {
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.text == "(" {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, errors.Errorf("unmatched ')': %w", ErrMalformed)
			}
			continue
		}

		in := operators[t.text].in
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if in >= operators[top.text].out {
				break
			}
			stack = stack[:len(stack)-1]
			out = append(out, top)
		}
		stack = append(stack, t)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.text == "(" {
			return nil, errors.Errorf("unmatched '(': %w", ErrMalformed)
		}
		out = append(out, top)
	}
	return out, nil
}

func build(postfix []token, caseSensitive bool) (*Predicate, error) {
	var stack []*Predicate

	pop := func() (*Predicate, error) {
		if len(stack) == 0 {
			return nil, errors.Errorf("stack underflow: %w", ErrMalformed)
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return p, nil
	}

	for _, t := range postfix {
		if !t.op {
			stack = append(stack, Wildcard(t.text, caseSensitive))
			continue
		}
		switch t.text {
		case "!":
			inner, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, Not(inner))
		case "&", "|":
			// the first pop is the right-hand operand
			right, err := pop()
			if err != nil {
				return nil, err
			}
			left, err := pop()
			if err != nil {
				return nil, err
			}
			if t.text == "&" {
				stack = append(stack, And(left, right))
			} else {
				stack = append(stack, Or(left, right))
			}
		default:
			return nil, errors.Errorf("unexpected %q in postfix: %w", t.text, ErrMalformed)
		}
	}

	if len(stack) != 1 {
		return nil, errors.Errorf("%d predicates left on stack: %w", len(stack), ErrMalformed)
	}
	return stack[0], nil
}
