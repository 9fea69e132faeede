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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
)

const NameStat = "FileStatHandler"

// 📊 Stats aggregates a set of files and everything below them.
type Stats struct {
	Files  int
	Dirs   int
	Hidden int
	// Size sums regular files, following symlinks to their targets.
	Size   uint64
	Oldest time.Time
	Newest time.Time
}

// Entries is Files + Dirs, the denominator for per-entry progress.
func (s Stats) Entries() int { return s.Files + s.Dirs }

func (s *Stats) Add(o Stats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Hidden += o.Hidden
	s.Size += o.Size
	s.touch(o.Oldest)
	s.touch(o.Newest)
}

func (s *Stats) touch(t time.Time) {
	if t.IsZero() {
		return
	}
	if s.Oldest.IsZero() || t.Before(s.Oldest) {
		s.Oldest = t
	}
	if s.Newest.IsZero() || t.After(s.Newest) {
		s.Newest = t
	}
}

func (s *Stats) count(name string, info fs.FileInfo) {
	if info.IsDir() {
		s.Dirs++
	} else {
		s.Files++
		if info.Mode().IsRegular() {
			s.Size += uint64(info.Size())
		}
	}
	if len(name) > 1 && strings.HasPrefix(name, ".") {
		s.Hidden++
	}
	s.touch(info.ModTime())
}

func (s Stats) String() string {
	msg := fmt.Sprintf("%d files, %d directories, %d hidden, %s", s.Files, s.Dirs, s.Hidden, humanize.IBytes(s.Size))
	if !s.Oldest.IsZero() {
		msg += fmt.Sprintf(", modified %s to %s", humanize.Time(s.Oldest), humanize.Time(s.Newest))
	}
	return msg
}

// Collect stats each input and, when recursive, everything below the
// directories among them. Unreadable entries are skipped.
func Collect(ctx context.Context, files []file.File, recursive bool) Stats {
	var total Stats
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		total.Add(collectOne(ctx, f.Path(), recursive))
	}
	return total
}

func collectOne(ctx context.Context, root string, recursive bool) Stats {
	var s Stats
	info, err := os.Stat(root)
	if err != nil {
		return s
	}
	s.count(filepath.Base(root), info)
	if !info.IsDir() || !recursive {
		return s
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil || path == root {
			return nil
		}
		// follow symlinks for size and kind, but never descend through them
		info, err := os.Stat(path)
		if err != nil {
			return nil
		}
		s.count(d.Name(), info)
		return nil
	})
	return s
}

// 📈 Stat reports counts, sizes and modification range of its input.
type Stat struct {
	*Base
}

func NewStat(recursive bool) *Stat {
	args := NewArgumentMap(
		Argument{Name: "Recursive", DisplayName: "Recursive", Description: "Include everything below directories.", Kind: ArgBool, Value: recursive},
	)
	return &Stat{Base: NewBase(NameStat, "Statistics", "Count files and directories and sum their size.", args)}
}

func (h *Stat) Clone() Handler { return &Stat{Base: h.CloneBase()} }

func (h *Stat) Execute(ctx context.Context, files []file.File, progress Progress) []file.File {
	recursive := h.Args().Bool("Recursive")
	logger := zerolog.Ctx(ctx)

	var total Stats
	result := make([]file.File, 0, len(files))
	for i, f := range files {
		if h.Cancelled(ctx) {
			break
		}
		s := collectOne(ctx, f.Path(), recursive)
		total.Add(s)
		result = append(result, f)
		progress.OnFileComplete(f, f, true, s.String())
		progress.OnProgress(Percent(i+1, len(files)), f.FileName())
	}

	logger.Debug().Int("files", total.Files).Int("dirs", total.Dirs).Uint64("size", total.Size).Msg("stat collected")
	progress.OnComplete(true, total.String())
	return result
}
