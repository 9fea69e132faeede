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

package file

import "sort"

// 🪜 SortByDepth orders files deepest first and, within one depth, files
// before directories. Depth is taken from the absolute path so relative and
// absolute inputs sort together. Destructive operations walk this order so
// children are handled before the directory that contains them. The input
// order is kept for ties.
func SortByDepth(files []File) []File {
	type keyed struct {
		f     File
		depth int
	}
	ks := make([]keyed, len(files))
	for i, f := range files {
		ks[i] = keyed{f: f, depth: Depth(f.Abs())}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return deeperFirst(ks[i].f, ks[j].f, ks[i].depth, ks[j].depth)
	})
	out := make([]File, len(ks))
	for i, k := range ks {
		out[i] = k.f
	}
	return out
}

// DeeperFirst is the less function behind SortByDepth.
func DeeperFirst(a, b File) bool {
	return deeperFirst(a, b, Depth(a.Abs()), Depth(b.Abs()))
}

func deeperFirst(a, b File, da, db int) bool {
	if da != db {
		return da > db
	}
	return a.isFile && !b.isFile
}

// Unique drops invalid entries and repeated locations, keeping the first
// one. "d/f.txt" and its absolute form are the same location.
func Unique(files []File) []File {
	seen := make(map[string]struct{}, len(files))
	out := make([]File, 0, len(files))
	for _, f := range files {
		if !f.IsValid() {
			continue
		}
		key := f.Abs()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
