// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spireg

import (
	"runtime/debug"
	"testing"
)

func TestVersion(t *testing.T) {
	const root = "github.com/go-lpc/spireg"
	for _, tc := range []struct {
		name string
		b    *debug.BuildInfo
		vers string
		sum  string
	}{
		{name: "nil"},
		{
			name: "no-dep",
			b:    &debug.BuildInfo{Deps: []*debug.Module{{Path: "example.com/other", Version: "v1.0.0"}}},
		},
		{
			name: "dep",
			b:    &debug.BuildInfo{Deps: []*debug.Module{{Path: root, Version: "v0.2.0", Sum: "h1:abc"}}},
			vers: "v0.2.0",
			sum:  "h1:abc",
		},
		{
			name: "replace-path-version",
			b: &debug.BuildInfo{Deps: []*debug.Module{{
				Path: root, Version: "v0.2.0",
				Replace: &debug.Module{Path: "example.com/fork", Version: "v0.3.0", Sum: "h1:fork"},
			}}},
			vers: "example.com/fork v0.3.0",
			sum:  "h1:fork",
		},
		{
			name: "replace-version",
			b: &debug.BuildInfo{Deps: []*debug.Module{{
				Path: root, Version: "v0.2.0",
				Replace: &debug.Module{Version: "v0.3.0", Sum: "h1:v3"},
			}}},
			vers: "v0.3.0",
			sum:  "h1:v3",
		},
		{
			name: "replace-path",
			b: &debug.BuildInfo{Deps: []*debug.Module{{
				Path: root, Version: "v0.2.0",
				Replace: &debug.Module{Path: "../spireg"},
			}}},
			vers: "../spireg",
		},
		{
			name: "replace-empty",
			b: &debug.BuildInfo{Deps: []*debug.Module{{
				Path: root, Version: "v0.2.0",
				Replace: &debug.Module{},
			}}},
			vers: "v0.2.0*",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			vers, sum := versionOf(tc.b)
			if got, want := vers, tc.vers; got != want {
				t.Fatalf("invalid version: got=%q, want=%q", got, want)
			}
			if got, want := sum, tc.sum; got != want {
				t.Fatalf("invalid sum: got=%q, want=%q", got, want)
			}
		})
	}
}
