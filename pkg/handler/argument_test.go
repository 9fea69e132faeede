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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchfx/pkg/handler"
	"gitlab.com/tozd/go/errors"
)

func newTestArgs() *handler.ArgumentMap {
	return handler.NewArgumentMap(
		handler.Argument{Name: "Name", Kind: handler.ArgText, Limit: []string{`^[a-z]+$`}},
		handler.Argument{Name: "Flag", Kind: handler.ArgBool},
		handler.Argument{Name: "Mode", Kind: handler.ArgOption, Limit: []string{"rename", "skip"}, Value: "rename"},
		handler.Argument{Name: "Width", Kind: handler.ArgRange, Limit: []string{"0", "8"}},
		handler.Argument{Name: "Max", Kind: handler.ArgSize},
		handler.Argument{Name: "Since", Kind: handler.ArgDate},
		handler.Argument{Name: "Box", Kind: handler.ArgRect},
		handler.Argument{Name: "Target", Kind: handler.ArgDir, Required: true},
	)
}

// 🧪 TestArgumentSet checks coercion and limits per kind
func TestArgumentSet(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		value   any
		wantErr error
		want    any
	}{
		{name: "text ok", arg: "Name", value: "abc", want: "abc"},
		{name: "text limit", arg: "Name", value: "ABC", wantErr: handler.ErrInvalidArgument},
		{name: "bool from string", arg: "Flag", value: "true", want: true},
		{name: "bool from int", arg: "Flag", value: 1, wantErr: handler.ErrInvalidArgument},
		{name: "option folds case", arg: "Mode", value: "SKIP", want: "skip"},
		{name: "option outside choices", arg: "Mode", value: "copy", wantErr: handler.ErrInvalidArgument},
		{name: "range from json number", arg: "Width", value: float64(3), want: 3},
		{name: "range from string", arg: "Width", value: "8", want: 8},
		{name: "range above max", arg: "Width", value: "9", wantErr: handler.ErrInvalidArgument},
		{name: "range fraction", arg: "Width", value: 2.5, wantErr: handler.ErrInvalidArgument},
		{name: "size human", arg: "Max", value: "2 KiB", want: uint64(2048)},
		{name: "size number", arg: "Max", value: 10, want: uint64(10)},
		{name: "size garbage", arg: "Max", value: "lots", wantErr: handler.ErrInvalidArgument},
		{name: "date", arg: "Since", value: "2024-05-01", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)},
		{name: "date garbage", arg: "Since", value: "yesterday", wantErr: handler.ErrInvalidArgument},
		{name: "rect", arg: "Box", value: "1, 2, 3, 4", want: handler.Rect{X: 1, Y: 2, Width: 3, Height: 4}},
		{name: "rect short", arg: "Box", value: "1,2", wantErr: handler.ErrInvalidArgument},
		{name: "unknown", arg: "Nope", value: "x", wantErr: handler.ErrUnknownArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestArgs()
			err := m.Set(tt.arg, tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			got, ok := m.Get(tt.arg)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 🧪 TestArgumentValidate enforces required values
func TestArgumentValidate(t *testing.T) {
	m := newTestArgs()
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, handler.ErrInvalidArgument))

	require.NoError(t, m.Set("Target", "/tmp/out"))
	require.NoError(t, m.Validate())
}

// 🧪 TestArgumentClone keeps copies independent
func TestArgumentClone(t *testing.T) {
	m := handler.NewArgumentMap(
		handler.Argument{Name: "B", Kind: handler.ArgBool, Value: true},
		handler.Argument{Name: "A", Kind: handler.ArgText, Value: "x"},
	)
	c := m.Clone()
	require.NoError(t, c.Set("A", "y"))

	assert.Equal(t, "x", m.String("A"))
	assert.Equal(t, "y", c.String("A"))
	assert.Equal(t, []string{"A", "B"}, m.Names())
	assert.Equal(t, "A=x,B=true", m.Render())
	assert.True(t, m.Bool("B"))
	assert.Equal(t, 0, m.Int("missing"))
}

// 🧪 TestRegistry builds every registered kind by name
func TestRegistry(t *testing.T) {
	for _, name := range handler.Registered() {
		h, err := handler.New(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, h.Name())
		assert.NotNil(t, h.Args())
	}

	_, err := handler.New("NoSuchHandler")
	require.Error(t, err)
	assert.True(t, errors.Is(err, handler.ErrUnknownHandler))

	h, err := handler.New(handler.NameCopy)
	require.NoError(t, err)
	err = handler.Configure(h, map[string]any{"Target": "/tmp/x", "DupMode": "skip"})
	require.NoError(t, err)
	assert.Equal(t, "skip", h.Args().String("DupMode"))

	err = handler.Configure(h, map[string]any{"Bogus": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, handler.ErrUnknownArgument))
}
