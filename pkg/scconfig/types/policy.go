package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Default extension markers. The first entry of each list is the one the
// rename primitives write.
var (
	DefaultEnabledExtensions  = []string{".config"}
	DefaultDisabledExtensions = []string{".disabled", ".disable", ".example", ".exclude"}
)

// ErrOverlappingExtensions is returned when an extension is both an enabled
// and a disabled marker.
var ErrOverlappingExtensions = errors.New("enabled and disabled extensions overlap")

// ErrEmptyExtensions is returned when either marker list is empty.
var ErrEmptyExtensions = errors.New("extension list is empty")

// ExtensionPolicy defines which file extensions mark a config file as live
// (enabled) or inert (disabled). An extension in neither list is part of the
// file's base name.
type ExtensionPolicy struct {
	Enabled  []string `json:"enabled" yaml:"enabled"`
	Disabled []string `json:"disabled" yaml:"disabled"`
}

// NewExtensionPolicy builds a normalized policy: entries are trimmed,
// lowercased, given a leading dot and de-duplicated, keeping the first
// occurrence so the configured order is preserved.
func NewExtensionPolicy(enabled, disabled []string) ExtensionPolicy {
	return ExtensionPolicy{
		Enabled:  normalizeExtensions(enabled),
		Disabled: normalizeExtensions(disabled),
	}
}

// DefaultExtensionPolicy returns the policy built from the default markers.
func DefaultExtensionPolicy() ExtensionPolicy {
	return NewExtensionPolicy(DefaultEnabledExtensions, DefaultDisabledExtensions)
}

// Validate checks that both lists are non-empty and disjoint.
func (p ExtensionPolicy) Validate() error {
	if len(p.Enabled) == 0 {
		return fmt.Errorf("%w: enabled", ErrEmptyExtensions)
	}
	if len(p.Disabled) == 0 {
		return fmt.Errorf("%w: disabled", ErrEmptyExtensions)
	}
	for _, ext := range p.Enabled {
		if contains(p.Disabled, ext) {
			return fmt.Errorf("%w: %s", ErrOverlappingExtensions, ext)
		}
	}
	return nil
}

// IsEnabled reports whether ext is an enabled marker (case-insensitive).
func (p ExtensionPolicy) IsEnabled(ext string) bool {
	return contains(p.Enabled, NormalizeExtension(ext))
}

// IsDisabled reports whether ext is a disabled marker (case-insensitive).
func (p ExtensionPolicy) IsDisabled(ext string) bool {
	return contains(p.Disabled, NormalizeExtension(ext))
}

// IsMarker reports whether ext is either kind of marker.
func (p ExtensionPolicy) IsMarker(ext string) bool {
	return p.IsEnabled(ext) || p.IsDisabled(ext)
}

// IsFileEnabled reports whether the file's last extension is an enabled marker.
func (p ExtensionPolicy) IsFileEnabled(name string) bool {
	return p.IsEnabled(filepath.Ext(name))
}

// PrimaryEnabled returns the enabled marker written when enabling a file.
func (p ExtensionPolicy) PrimaryEnabled() string {
	if len(p.Enabled) == 0 {
		return ""
	}
	return p.Enabled[0]
}

// PrimaryDisabled returns the disabled marker written when disabling a file.
func (p ExtensionPolicy) PrimaryDisabled() string {
	if len(p.Disabled) == 0 {
		return ""
	}
	return p.Disabled[0]
}

// NormalizeExtension lowercases ext and ensures it starts with a dot.
// An empty string stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeExtensions(exts []string) []string {
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = NormalizeExtension(ext)
		if ext == "" || contains(result, ext) {
			continue
		}
		result = append(result, ext)
	}
	return result
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
