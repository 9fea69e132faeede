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

package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
	"github.com/walteh/batchfx/pkg/testutils"
)

// dropLast is a plugin-style handler that loses one file.
type dropLast struct {
	*handler.Base
}

func newDropLast() *dropLast {
	return &dropLast{Base: handler.NewBase("DropLast", "", "drops the last file", nil)}
}

func (d *dropLast) Clone() handler.Handler { return &dropLast{Base: d.CloneBase()} }

func (d *dropLast) Execute(_ context.Context, files []file.File, p handler.Progress) []file.File {
	p.OnComplete(true, "")
	if len(files) == 0 {
		return nil
	}
	return files[:len(files)-1]
}

func upper() handler.Handler { return handler.NewCaseTransform(true, false) }

func replace(pattern, after string) handler.Handler {
	return handler.NewReplace(handler.ReplaceOptions{Pattern: pattern, After: after, CaseSensitive: true})
}

// 🧪 TestPipe chains outputs into inputs
func TestPipe(t *testing.T) {
	ctx := testutils.Context(t)
	rec := &testutils.Recorder{}

	p := handler.NewPipe(replace("a", "b"), upper())
	out := p.Execute(ctx, []file.File{file.NewFile("a.txt")}, rec)

	assert.Equal(t, []string{"B.txt"}, file.Paths(out))
	assert.Equal(t, 1, rec.Completes)
	assert.True(t, rec.Success)
	assert.Len(t, rec.Files, 2)
	assert.Equal(t, []float64{50, 100}, rec.Percents)
	assert.Equal(t, "PipeFileHandler[FileNameReplaceByExpHandler(After=b,CaseSensitive=true,Pattern=a,SuffixInclude=false,Syntax=wildcard),CaseTransformHandler(SuffixInclude=false,Upper=true)]", p.String())
}

// 🧪 TestCombine feeds every member the original input
func TestCombine(t *testing.T) {
	ctx := testutils.Context(t)
	rec := &testutils.Recorder{}

	c := handler.NewCombine(replace("a", "b"), upper())
	out := c.Execute(ctx, []file.File{file.NewFile("a.txt")}, rec)

	assert.Equal(t, []string{"A.txt"}, file.Paths(out))
	require.Len(t, rec.Files, 2)
	assert.Equal(t, "b.txt", rec.Files[0].Output.Path())
	assert.Equal(t, "A.txt", rec.Files[1].Output.Path())
	assert.Equal(t, 1, rec.Completes)
}

func TestPipeStopsOnFailure(t *testing.T) {
	ctx := testutils.Context(t)
	rec := &testutils.Recorder{}

	p := handler.NewPipe(handler.NewDuplicate(handler.DuplicateOptions{Template: "bad"}), upper())
	out := p.Execute(ctx, []file.File{file.NewFile("a.txt")}, rec)

	assert.Nil(t, out)
	assert.False(t, rec.Success)
	assert.Contains(t, rec.Final, "invalid template")
	assert.Empty(t, rec.Files)
}

func TestPipeCancelAndClone(t *testing.T) {
	ctx := testutils.Context(t)
	in := []file.File{file.NewFile("a.txt")}

	p := handler.NewPipe(upper())
	c := p.Clone()
	c.Cancel()

	rec := &testutils.Recorder{}
	out := c.Execute(ctx, in, rec)
	assert.Equal(t, file.Paths(in), file.Paths(out))
	assert.Empty(t, rec.Files)
	assert.True(t, rec.Success)

	// the prototype is untouched by the clone's cancel
	rec = &testutils.Recorder{}
	out = p.Execute(ctx, in, rec)
	assert.Equal(t, []string{"A.txt"}, file.Paths(out))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	rec = &testutils.Recorder{}
	p.Clone().Execute(cctx, in, rec)
	assert.Empty(t, rec.Files)
}

func TestPipeAppend(t *testing.T) {
	h, err := handler.New(handler.NamePipe)
	require.NoError(t, err)
	p, ok := h.(*handler.Pipe)
	require.True(t, ok)
	p.Append(upper(), newDropLast())
	assert.Len(t, p.Handlers(), 2)

	out := p.Execute(testutils.Context(t), []file.File{file.NewFile("a"), file.NewFile("b")}, &testutils.Recorder{})
	assert.Equal(t, []string{"A"}, file.Paths(out))
}
