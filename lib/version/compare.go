// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Canonical returns text in canonical semantic version form
// ("v1.2.3" or "v1.2.3-rc.1"). A leading "v" is optional, missing minor
// and patch components default to zero, and build metadata ("+build.5")
// is dropped because it carries no precedence.
func Canonical(text string) (string, error) {
	prefixed := strings.TrimSpace(text)
	if !strings.HasPrefix(prefixed, "v") {
		prefixed = "v" + prefixed
	}
	if !semver.IsValid(prefixed) {
		return "", fmt.Errorf("version %q is not a semantic version", text)
	}
	return semver.Canonical(prefixed), nil
}

// Compare returns -1, 0 or +1 as a orders before, equal to, or after b
// under semantic version precedence: numeric pre-release identifiers
// compare numerically ("rc.2" < "rc.10"), a pre-release orders before
// its release, and build metadata is ignored.
func Compare(a, b string) (int, error) {
	left, err := Canonical(a)
	if err != nil {
		return 0, err
	}
	right, err := Canonical(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(left, right), nil
}

// Compatible reports whether data written by producer can be read by
// this build: same major version, and not from a newer minor release.
// Unparseable versions are treated as incompatible.
func Compatible(producer string) bool {
	written, err := Canonical(producer)
	if err != nil {
		return false
	}
	running, err := Canonical(Version)
	if err != nil {
		return false
	}
	return semver.Major(written) == semver.Major(running) &&
		semver.Compare(semver.MajorMinor(written), semver.MajorMinor(running)) <= 0
}
