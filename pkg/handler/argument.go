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
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownArgument = errors.Base("unknown argument")
	ErrInvalidArgument = errors.Base("invalid argument")
)

// ArgKind says how an argument value is interpreted and validated.
type ArgKind int

const (
	ArgText ArgKind = iota
	ArgBool
	ArgOption
	ArgDate
	ArgRange
	ArgRect
	ArgSize
	ArgFile
	ArgDir
)

func (k ArgKind) String() string {
	switch k {
	case ArgText:
		return "text"
	case ArgBool:
		return "bool"
	case ArgOption:
		return "option"
	case ArgDate:
		return "date"
	case ArgRange:
		return "range"
	case ArgRect:
		return "rect"
	case ArgSize:
		return "size"
	case ArgFile:
		return "file"
	case ArgDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Rect is the value of an ArgRect argument.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// 🔧 Argument is one named, typed setting of a handler.
//
// Limit depends on Kind: a regular expression for text, the allowed values
// for options, and "min","max" for ranges.
type Argument struct {
	Name        string
	DisplayName string
	Description string
	Value       any
	Kind        ArgKind
	Limit       []string
	Required    bool
}

// ArgumentMap holds the arguments of exactly one handler instance. It is
// not safe for concurrent use; clone it instead.
type ArgumentMap struct {
	args map[string]*Argument
}

// NewArgumentMap defines the given arguments. Values are stored as given.
func NewArgumentMap(args ...Argument) *ArgumentMap {
	m := &ArgumentMap{args: make(map[string]*Argument, len(args))}
	for _, a := range args {
		m.Define(a)
	}
	return m
}

// Define adds or replaces an argument definition.
func (m *ArgumentMap) Define(a Argument) {
	if a.DisplayName == "" {
		a.DisplayName = a.Name
	}
	a.Limit = append([]string(nil), a.Limit...)
	m.args[a.Name] = &a
}

// Argument returns a copy of the named definition.
func (m *ArgumentMap) Argument(name string) (Argument, bool) {
	a, ok := m.args[name]
	if !ok {
		return Argument{}, false
	}
	cp := *a
	cp.Limit = append([]string(nil), a.Limit...)
	return cp, true
}

// Names returns argument names in sorted order.
func (m *ArgumentMap) Names() []string {
	names := make([]string, 0, len(m.args))
	for n := range m.args {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *ArgumentMap) Len() int { return len(m.args) }

// 🎛️ Set coerces value to the argument's kind and stores it. Strings are
// parsed for every kind, so values read from flags or config files work.
func (m *ArgumentMap) Set(name string, value any) error {
	a, ok := m.args[name]
	if !ok {
		return errors.Errorf("%s: %w", name, ErrUnknownArgument)
	}
	v, err := coerce(a, value)
	if err != nil {
		return errors.Errorf("%s: %w", name, err)
	}
	a.Value = v
	return nil
}

// Get returns the raw value.
func (m *ArgumentMap) Get(name string) (any, bool) {
	a, ok := m.args[name]
	if !ok {
		return nil, false
	}
	return a.Value, true
}

func (m *ArgumentMap) String(name string) string {
	v, _ := m.Get(name)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (m *ArgumentMap) Bool(name string) bool {
	v, _ := m.Get(name)
	b, _ := v.(bool)
	return b
}

func (m *ArgumentMap) Int(name string) int {
	v, _ := m.Get(name)
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case uint64:
		return int(t)
	}
	return 0
}

// Size returns an ArgSize value in bytes.
func (m *ArgumentMap) Size(name string) uint64 {
	v, _ := m.Get(name)
	s, _ := v.(uint64)
	return s
}

func (m *ArgumentMap) Time(name string) time.Time {
	v, _ := m.Get(name)
	t, _ := v.(time.Time)
	return t
}

func (m *ArgumentMap) Rect(name string) Rect {
	v, _ := m.Get(name)
	r, _ := v.(Rect)
	return r
}

// Validate checks required arguments and re-checks every value against
// its limit.
func (m *ArgumentMap) Validate() error {
	for _, name := range m.Names() {
		a := m.args[name]
		if a.Required && isZero(a.Value) {
			return errors.Errorf("%s is required: %w", name, ErrInvalidArgument)
		}
		if isZero(a.Value) {
			continue
		}
		if _, err := coerce(a, a.Value); err != nil {
			return errors.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (m *ArgumentMap) Clone() *ArgumentMap {
	c := &ArgumentMap{args: make(map[string]*Argument, len(m.args))}
	for name, a := range m.args {
		cp := *a
		cp.Limit = append([]string(nil), a.Limit...)
		c.args[name] = &cp
	}
	return c
}

// Render formats the values as k=v pairs in name order.
func (m *ArgumentMap) Render() string {
	parts := make([]string, 0, len(m.args))
	for _, name := range m.Names() {
		parts = append(parts, name+"="+m.String(name))
	}
	return strings.Join(parts, ",")
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case time.Time:
		return t.IsZero()
	}
	return false
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func coerce(a *Argument, value any) (any, error) {
	switch a.Kind {
	case ArgBool:
		switch t := value.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, errors.Errorf("%q is not a boolean: %w", t, ErrInvalidArgument)
			}
			return b, nil
		}
	case ArgRange:
		n, err := toInt(value)
		if err != nil {
			return nil, err
		}
		if err := inRange(n, a.Limit); err != nil {
			return nil, err
		}
		return n, nil
	case ArgSize:
		switch t := value.(type) {
		case uint64:
			return t, nil
		case string:
			n, err := humanize.ParseBytes(strings.TrimSpace(t))
			if err != nil {
				return nil, errors.Errorf("%q is not a size: %w", t, ErrInvalidArgument)
			}
			return n, nil
		default:
			n, err := toInt(value)
			if err != nil || n < 0 {
				return nil, errors.Errorf("%v is not a size: %w", value, ErrInvalidArgument)
			}
			return uint64(n), nil
		}
	case ArgDate:
		switch t := value.(type) {
		case time.Time:
			return t, nil
		case string:
			for _, layout := range dateLayouts {
				if d, err := time.ParseInLocation(layout, strings.TrimSpace(t), time.Local); err == nil {
					return d, nil
				}
			}
			return nil, errors.Errorf("%q is not a date: %w", t, ErrInvalidArgument)
		}
	case ArgRect:
		switch t := value.(type) {
		case Rect:
			return t, nil
		case string:
			return parseRect(t)
		}
	case ArgOption:
		s, ok := value.(string)
		if !ok {
			break
		}
		if len(a.Limit) == 0 {
			return s, nil
		}
		for _, choice := range a.Limit {
			if strings.EqualFold(choice, s) {
				return choice, nil
			}
		}
		return nil, errors.Errorf("%q is not one of %s: %w", s, strings.Join(a.Limit, "|"), ErrInvalidArgument)
	default:
		s, ok := value.(string)
		if !ok {
			break
		}
		if a.Kind == ArgText && len(a.Limit) > 0 && s != "" {
			re, err := regexp.Compile(a.Limit[0])
			if err != nil {
				return nil, errors.Errorf("bad limit %q: %w", a.Limit[0], err)
			}
			if !re.MatchString(s) {
				return nil, errors.Errorf("%q does not match %s: %w", s, a.Limit[0], ErrInvalidArgument)
			}
		}
		return s, nil
	}
	return nil, errors.Errorf("%T is not valid for a %s argument: %w", value, a.Kind, ErrInvalidArgument)
}

func toInt(value any) (int, error) {
	switch t := value.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case int32:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float64:
		// JSON numbers decode as float64
		if t != math.Trunc(t) {
			return 0, errors.Errorf("%v is not an integer: %w", t, ErrInvalidArgument)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, errors.Errorf("%q is not an integer: %w", t, ErrInvalidArgument)
		}
		return n, nil
	}
	return 0, errors.Errorf("%T is not an integer: %w", value, ErrInvalidArgument)
}

func inRange(n int, limit []string) error {
	if len(limit) > 0 && limit[0] != "" {
		lo, err := strconv.Atoi(limit[0])
		if err == nil && n < lo {
			return errors.Errorf("%d is below %d: %w", n, lo, ErrInvalidArgument)
		}
	}
	if len(limit) > 1 && limit[1] != "" {
		hi, err := strconv.Atoi(limit[1])
		if err == nil && n > hi {
			return errors.Errorf("%d is above %d: %w", n, hi, ErrInvalidArgument)
		}
	}
	return nil
}

func parseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, errors.Errorf("%q is not x,y,w,h: %w", s, ErrInvalidArgument)
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, errors.Errorf("%q is not x,y,w,h: %w", s, ErrInvalidArgument)
		}
		vals[i] = n
	}
	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
