// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matprod

import "runtime/debug"

const root = "github.com/LynnColeArt/matprod"

// Version returns the version of matprod and its checksum. The returned
// values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return moduleVersion(b)
}

// moduleVersion finds matprod in b, as the main module when running the
// matprod command and as a dependency otherwise. A replaced dependency is
// reported as "v => replacement" with the replacement's sum.
func moduleVersion(b *debug.BuildInfo) (version, sum string) {
	m := &b.Main
	if m.Path != root {
		m = nil
		for _, dep := range b.Deps {
			if dep.Path == root {
				m = dep
				break
			}
		}
	}
	if m == nil {
		return "", ""
	}

	if r := m.Replace; r != nil {
		to := r.Version
		if to == "" {
			to = r.Path
		}
		return m.Version + " => " + to, r.Sum
	}
	return m.Version, m.Sum
}
