// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package version reports the build identity of a leanr binary.
package version

import "fmt"

// Application identifies a leanr build by semantic version.
type Application struct {
	Name  string
	Major int
	Minor int
	Patch int
}

// String returns "name/major.minor.patch".
func (a *Application) String() string {
	return fmt.Sprintf("%s/%d.%d.%d", a.Name, a.Major, a.Minor, a.Patch)
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than other, comparing Major then Minor then Patch.
func (a *Application) Compare(other *Application) int {
	if a.Major != other.Major {
		if a.Major < other.Major {
			return -1
		}
		return 1
	}
	if a.Minor != other.Minor {
		if a.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if a.Patch != other.Patch {
		if a.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// Current is the version of this build of leanr.
var Current = &Application{Name: "leanr", Major: 0, Minor: 1, Patch: 0}
