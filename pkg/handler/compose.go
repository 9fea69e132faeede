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
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
)

const (
	NamePipe    = "PipeFileHandler"
	NameCombine = "CombineHandler"
)

// stage wraps the caller's sink for one member of a composite: progress is
// scaled into the member's slice of the whole and OnComplete is captured.
type stage struct {
	completion
	index, count int
}

func newStage(p Progress, index, count int) *stage {
	return &stage{completion: completion{Progress: p}, index: index, count: count}
}

func (s *stage) OnProgress(percent float64, message string) {
	if percent < 0 || s.count <= 1 {
		s.Progress.OnProgress(percent, message)
		return
	}
	s.Progress.OnProgress((float64(s.index)*100+percent)/float64(s.count), message)
}

type composite struct {
	*Base
	members []Handler
}

func (c *composite) Handlers() []Handler { return append([]Handler(nil), c.members...) }

// Append adds members at the end.
func (c *composite) Append(h ...Handler) { c.members = append(c.members, h...) }

func (c *composite) Cancel() {
	c.Base.Cancel()
	for _, m := range c.members {
		m.Cancel()
	}
}

func (c *composite) cloneMembers() []Handler {
	out := make([]Handler, 0, len(c.members))
	for _, m := range c.members {
		out = append(out, m.Clone())
	}
	return out
}

func (c *composite) String() string {
	parts := make([]string, 0, len(c.members))
	for _, m := range c.members {
		parts = append(parts, describe(m))
	}
	return c.Name() + "[" + strings.Join(parts, ",") + "]"
}

func describe(h Handler) string {
	if s, ok := h.(fmt.Stringer); ok {
		return s.String()
	}
	return h.Name()
}

// verdict folds member completions into one OnComplete.
func verdict(progress Progress, stages []*stage, cancelled bool) {
	for _, s := range stages {
		if s.called && !s.success {
			progress.OnComplete(false, s.message)
			return
		}
	}
	if cancelled {
		progress.OnComplete(true, "cancelled")
		return
	}
	if n := len(stages); n > 0 && stages[n-1].message != "" {
		progress.OnComplete(true, stages[n-1].message)
		return
	}
	progress.OnComplete(true, fmt.Sprintf("%d steps done", len(stages)))
}

// 🔗 Pipe chains members: the output of one is the input of the next. The
// chain stops at the first member that reports failure.
type Pipe struct {
	composite
}

func NewPipe(members ...Handler) *Pipe {
	return &Pipe{composite{
		Base:    NewBase(NamePipe, "Pipe", "Run handlers in order, each on the output of the previous one.", nil),
		members: members,
	}}
}

func (p *Pipe) Clone() Handler {
	return &Pipe{composite{Base: p.CloneBase(), members: p.cloneMembers()}}
}

func (p *Pipe) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	logger := zerolog.Ctx(ctx)
	current := files
	stages := make([]*stage, 0, len(p.members))

	for i, m := range p.members {
		if p.Cancelled(ctx) {
			break
		}
		s := newStage(progress, i, len(p.members))
		stages = append(stages, s)
		logger.Debug().Str("handler", m.Name()).Int("files", len(current)).Msg("pipe stage")
		current = m.Execute(ctx, m.Filter(current), s)
		if s.called && !s.success {
			break
		}
	}

	verdict(progress, stages, p.Cancelled(ctx))
	return current
}

// 🪢 Combine runs every member on the same original input and returns the
// output of the last one.
type Combine struct {
	composite
}

func NewCombine(members ...Handler) *Combine {
	return &Combine{composite{
		Base:    NewBase(NameCombine, "Combine", "Run handlers in order, each on the original input.", nil),
		members: members,
	}}
}

func (c *Combine) Clone() Handler {
	return &Combine{composite{Base: c.CloneBase(), members: c.cloneMembers()}}
}

func (c *Combine) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	logger := zerolog.Ctx(ctx)
	var result []file.File
	stages := make([]*stage, 0, len(c.members))

	for i, m := range c.members {
		if c.Cancelled(ctx) {
			break
		}
		s := newStage(progress, i, len(c.members))
		stages = append(stages, s)
		logger.Debug().Str("handler", m.Name()).Int("files", len(files)).Msg("combine stage")
		result = m.Execute(ctx, m.Filter(files), s)
	}

	verdict(progress, stages, c.Cancelled(ctx))
	return result
}
