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

import (
	"sort"
	"strings"
	"sync"
)

// DefaultSuffixes are the multi-part suffixes known out of the box.
var DefaultSuffixes = []string{
	"tar.gz",
	"tar.bz2",
	"tar.xz",
	"tar.zst",
	"shp.xml",
	"sbnand.sbx",
	"fbnand.fbx",
	"ainand.aih",
}

var (
	suffixMu sync.RWMutex
	// kept sorted longest first so the most specific suffix wins
	suffixes = normalizeSuffixes(DefaultSuffixes)
)

// 🧩 SetSuffixes replaces the process-wide multi-part suffix set.
func SetSuffixes(list []string) {
	n := normalizeSuffixes(list)
	suffixMu.Lock()
	defer suffixMu.Unlock()
	suffixes = n
}

// RegisterSuffix adds suffixes to the process-wide set.
func RegisterSuffix(list ...string) {
	suffixMu.Lock()
	defer suffixMu.Unlock()
	suffixes = normalizeSuffixes(append(append([]string{}, suffixes...), list...))
}

// Suffixes returns a copy of the current set, longest first.
func Suffixes() []string {
	suffixMu.RLock()
	defer suffixMu.RUnlock()
	return append([]string{}, suffixes...)
}

func registeredSuffix(name string) (string, bool) {
	suffixMu.RLock()
	defer suffixMu.RUnlock()
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		// the suffix needs a dot in front of it and a non-empty base
		if len(lower) > len(s)+1 && strings.HasSuffix(lower, "."+s) {
			return name[len(name)-len(s):], true
		}
	}
	return "", false
}

func normalizeSuffixes(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "."))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
