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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/walteh/batchfx/pkg/file"
	"gitlab.com/tozd/go/errors"
)

var ErrUnknownHandler = errors.Base("unknown handler")

// 🧰 Handler is one configurable file operation.
//
// Execute never returns an error: per-file failures go to
// Progress.OnFileComplete and the overall verdict to Progress.OnComplete.
// An instance runs at most once; Clone it for every new run.
type Handler interface {
	Name() string
	DisplayName() string
	Description() string
	Args() *ArgumentMap

	// Filter narrows the input before Execute, identity by default.
	Filter(files []file.File) []file.File
	Execute(ctx context.Context, files []file.File, progress Progress) []file.File

	// Clone returns an independent instance with the same configuration and
	// no execution state.
	Clone() Handler
	// Cancel asks a running Execute to stop at its next checkpoint.
	Cancel()
}

// 🧱 Base carries the identity, arguments and cancel flag shared by every
// concrete handler. Embed it by pointer.
type Base struct {
	name        string
	displayName string
	description string
	args        *ArgumentMap
	cancelled   atomic.Bool
}

func NewBase(name, displayName, description string, args *ArgumentMap) *Base {
	if args == nil {
		args = NewArgumentMap()
	}
	if displayName == "" {
		displayName = name
	}
	return &Base{
		name:        name,
		displayName: displayName,
		description: description,
		args:        args,
	}
}

func (b *Base) Name() string        { return b.name }
func (b *Base) DisplayName() string { return b.displayName }
func (b *Base) Description() string { return b.description }
func (b *Base) Args() *ArgumentMap  { return b.args }

func (b *Base) Filter(files []file.File) []file.File { return files }

func (b *Base) Cancel() { b.cancelled.Store(true) }

// Cancelled reports whether the run should stop, either because Cancel
// was called or ctx is done.
func (b *Base) Cancelled(ctx context.Context) bool {
	return b.cancelled.Load() || ctx.Err() != nil
}

// CloneBase copies identity and arguments into a fresh, uncancelled Base.
func (b *Base) CloneBase() *Base {
	return NewBase(b.name, b.displayName, b.description, b.args.Clone())
}

// String renders Name(k=v,...).
func (b *Base) String() string {
	return b.name + "(" + b.args.Render() + ")"
}

// Factory builds a handler with default arguments.
type Factory func() Handler

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

// 📚 Register makes a handler kind available by name. Later registrations
// replace earlier ones, which lets plugins override built-ins.
func Register(name string, f Factory) {
	registry.Lock()
	defer registry.Unlock()
	registry.factories[name] = f
}

// New returns a fresh handler of the named kind.
func New(name string) (Handler, error) {
	registry.RLock()
	f, ok := registry.factories[name]
	registry.RUnlock()
	if !ok {
		return nil, errors.Errorf("%s: %w", name, ErrUnknownHandler)
	}
	return f(), nil
}

// Registered lists the known kinds in name order.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.factories))
	for n := range registry.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Configure sets every value in args and validates the result.
func Configure(h Handler, args map[string]any) error {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := h.Args().Set(k, args[k]); err != nil {
			return errors.Errorf("configuring %s: %w", h.Name(), err)
		}
	}
	if err := h.Args().Validate(); err != nil {
		return errors.Errorf("configuring %s: %w", h.Name(), err)
	}
	return nil
}

func init() {
	Register(NamePipe, func() Handler { return NewPipe() })
	Register(NameCombine, func() Handler { return NewCombine() })
	Register(NameReplace, func() Handler { return NewReplace(ReplaceOptions{}) })
	Register(NameCase, func() Handler { return NewCaseTransform(false, false) })
	Register(NameDuplicate, func() Handler { return NewDuplicate(DuplicateOptions{}) })
	Register(NameRename, func() Handler { return NewRename() })
	Register(NameCopy, func() Handler { return NewCopy(TransferOptions{}) })
	Register(NameMove, func() Handler { return NewMove(TransferOptions{}) })
	Register(NameDelete, func() Handler { return NewDelete(DeleteOptions{}) })
	Register(NameStat, func() Handler { return NewStat(true) })
	Register(NameSearch, func() Handler { return NewSearch("", false) })
	Register(NameAttribute, func() Handler { return NewAttribute(AttributeOptions{}) })
	Register(NameClearFolder, func() Handler { return NewClearFolder() })
	Register(NameEnvelope, func() Handler { return NewEnvelope() })
}
