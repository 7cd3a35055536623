package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrInvalidLocation indicates the manifest's target directory does not exist.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNotFound indicates no file in the target directory matches the manifest entry.
	ErrNotFound = errors.New("no matching file")

	// ErrAmbiguousMatch indicates more than one file matches the manifest entry.
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// InvalidLocationError is returned when the directory a manifest entry
// points at is missing from the web root.
type InvalidLocationError struct {
	Dir          string // Absolute directory that was checked
	ManifestPath string // Manifest-relative path of the entry being resolved
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("target location directory '%s' does not exist (processing '%s' entry from the configuration manifest)", e.Dir, e.ManifestPath)
}

func (e *InvalidLocationError) Unwrap() error { return ErrInvalidLocation }

// NotFoundError is returned when no file matches the manifest base name.
// SearchPath is the directory-scoped pattern that was attempted.
type NotFoundError struct {
	ManifestPath string
	SearchPath   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed to find match for '%s' (attempt: '%s')", e.ManifestPath, e.SearchPath)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousMatchError is returned when several files share the manifest
// base name, e.g. both Foo.config and Foo.config.disabled exist.
type AmbiguousMatchError struct {
	ManifestPath string
	Candidates   []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for '%s': %d candidates (%s)", e.ManifestPath, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousMatchError) Unwrap() error { return ErrAmbiguousMatch }
