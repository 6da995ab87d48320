// Package manifest parses the client's publish manifest and translates it
// into the narrower index.Record the package index stores, the way the
// registry's manifest package validates and normalizes an uploaded image
// manifest before it is persisted.
package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/onelson/estuary/internal/index"
)

// nameRE matches the client's package name character class: ASCII
// letters, digits, '-', '_', '.', non-empty.
var nameRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidName reports whether name matches the client's package name
// character class. Handlers outside this package use it to reject input
// containing path separators or other characters outside that class
// before it reaches the filesystem or the index; names made only of dots,
// such as "..", are within the class and are accepted.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// Dependency is one entry of a publish manifest's "deps" array.
type Dependency struct {
	Name                string               `json:"name"`
	VersionReq          string               `json:"version_req"`
	Features            []string             `json:"features"`
	Optional            bool                 `json:"optional"`
	DefaultFeatures     bool                 `json:"default_features"`
	Target              *string              `json:"target,omitempty"`
	Kind                index.DependencyKind `json:"kind"`
	Registry            *string              `json:"registry,omitempty"`
	ExplicitNameInToml  *string              `json:"explicit_name_in_toml,omitempty"`
}

// Manifest is the client's publish manifest, submitted as the first part
// of the publish envelope.
type Manifest struct {
	Name          string                `json:"name"`
	Vers          string                `json:"vers"`
	Deps          []Dependency          `json:"deps"`
	Features      map[string][]string   `json:"features"`
	Authors       []string              `json:"authors,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Documentation *string               `json:"documentation,omitempty"`
	Homepage      *string               `json:"homepage,omitempty"`
	Readme        *string               `json:"readme,omitempty"`
	ReadmeFile    *string               `json:"readme_file,omitempty"`
	Keywords      []string              `json:"keywords,omitempty"`
	Categories    []string              `json:"categories,omitempty"`
	License       *string               `json:"license,omitempty"`
	LicenseFile   *string               `json:"license_file,omitempty"`
	Repository    *string               `json:"repository,omitempty"`
	Badges        map[string]any        `json:"badges,omitempty"`
	Links         *string               `json:"links,omitempty"`
}

// ValidationError reports a single malformed field of a manifest, in a
// machine-readable {field, cause} shape.
type ValidationError struct {
	Field string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest: %s: %s", e.Field, e.Cause)
}

// Parse unmarshals raw JSON into a Manifest. A JSON syntax error is
// reported as a ValidationError on the "manifest" field.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ValidationError{Field: "manifest", Cause: err.Error()}
	}
	return &m, nil
}

// Validate checks the manifest's name, version, and every dependency
// requirement, returning the first violation found.
func (m *Manifest) Validate() error {
	if !nameRE.MatchString(m.Name) {
		return &ValidationError{Field: "name", Cause: "must be a non-empty string of letters, digits, '-', '_', '.'"}
	}
	if _, err := semver.NewVersion(m.Vers); err != nil {
		return &ValidationError{Field: "vers", Cause: "not a valid semantic version: " + err.Error()}
	}
	for _, d := range m.Deps {
		if !nameRE.MatchString(d.Name) {
			return &ValidationError{Field: "deps[].name", Cause: "must be a non-empty string of letters, digits, '-', '_', '.'"}
		}
		if _, err := semver.NewConstraint(d.VersionReq); err != nil {
			return &ValidationError{Field: "deps[].version_req", Cause: "not a valid version requirement: " + err.Error()}
		}
	}
	return nil
}
