// Package pyversions computes the Python versions a configured package supports
// and renders them into the tox and GitHub Actions snippets.
package pyversions

import (
	"fmt"
	"strings"
)

// Version is a Python (major, minor) release pair.
type Version struct {
	Major int
	Minor int
}

var (
	// Max is the newest supported Python release.
	Max = Version{Major: 3, Minor: 9}
	// Legacy is the single legacy release prepended when legacy support is enabled.
	Legacy = Version{Major: 2, Minor: 7}
	// DefaultMin is the minimum release used when no selector flag is given.
	DefaultMin = Version{Major: 3, Minor: 6}
)

const (
	// ToxPyPyEnvs lists the PyPy environments appended to the tox envlist.
	ToxPyPyEnvs = "\n    pypy,\n    pypy3,"
	// TestMatrixPyPy lists the PyPy entries appended to the workflow matrix.
	TestMatrixPyPy = "\n        - [\"pypy2\", \"pypy\"]\n        - [\"pypy3\", \"pypy3\"]"
)

// String returns the dotted form, e.g. "3.6".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Env returns the tox environment identifier, e.g. "py36".
func (v Version) Env() string {
	return fmt.Sprintf("py%d%d", v.Major, v.Minor)
}

// Supported returns the releases from minimum through Max.
func Supported(minimum Version, legacy bool) []Version {
	return Range(minimum, Max, legacy)
}

// Range returns the releases from minimum.Minor through maximum.Minor using the
// major version of maximum. A minimum above maximum yields an empty range.
// When legacy is set, Legacy is prepended exactly once.
func Range(minimum Version, maximum Version, legacy bool) []Version {
	versions := make([]Version, 0)
	if legacy {
		versions = append(versions, Legacy)
	}
	for minor := minimum.Minor; minor <= maximum.Minor; minor++ {
		versions = append(versions, Version{Major: maximum.Major, Minor: minor})
	}
	return versions
}

// ToxEnvs renders the envlist entries inserted into tox.ini.
func ToxEnvs(versions []Version) string {
	var b strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&b, "\n    %s,", v.Env())
	}
	return b.String()
}

// TestMatrix renders the matrix entries inserted into the tests workflow.
func TestMatrix(versions []Version) string {
	var b strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&b, "\n        - [%q, %q]", v.String(), v.Env())
	}
	return b.String()
}
