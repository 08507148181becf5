// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package version

import "fmt"

var (
	// Version is the main component of the current release.
	Version = "0.1.0"

	// VersionPrerelease is a marker for pre-release builds, e.g. "dev" for
	// builds off of main between releases.
	VersionPrerelease = "dev"

	// GitCommit and GitDescribe are set via linker flags at build time.
	GitCommit   string
	GitDescribe string
)

// GetHumanVersion composes the parts of the version into a human-readable
// string, the way every HashiCorp CLI in this family reports `version`.
func GetHumanVersion() string {
	version := Version
	if GitDescribe != "" {
		version = GitDescribe
	}

	release := VersionPrerelease
	if GitDescribe == "" && release == "" {
		release = "dev"
	}

	if release != "" {
		version += fmt.Sprintf("-%s", release)
	}

	if GitCommit != "" {
		version += fmt.Sprintf(" (%s)", GitCommit)
	}

	return version
}
