package resolve

import (
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// ParseVersionRange parses a PackageRequest's VersionRange into a semver
// Constraint. The universal range ("", "*") parses to semver.Any().
//
// This is a convenience for SolverContract implementations (see
// fakesolver) and for callers that want to validate requests before
// constructing a Resolver; the core itself treats VersionRange as an
// opaque, textual field per the data model.
func ParseVersionRange(r PackageRequest) (semver.Constraint, error) {
	if r.VersionRange == "" || r.VersionRange == "*" {
		return semver.Any(), nil
	}
	c, err := semver.NewConstraint(r.VersionRange)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version range %q for package %q", r.VersionRange, r.Name)
	}
	return c, nil
}
