package engine

import (
	"path/filepath"
	"strings"

	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
	"github.com/spf13/afero"
)

// Toggler switches a config file between its enabled and disabled forms by
// renaming it. It never overwrites an existing file.
type Toggler struct {
	fs     afero.Fs
	policy types.ExtensionPolicy
}

// NewToggler creates a Toggler for fs.
func NewToggler(fs afero.Fs, policy types.ExtensionPolicy) *Toggler {
	return &Toggler{fs: fs, policy: policy}
}

// DisabledName returns the name a file gets when disabled: the primary
// disabled extension is appended.
func (t *Toggler) DisabledName(path string) string {
	return path + t.policy.PrimaryDisabled()
}

// EnabledName returns the name a file gets when enabled: a trailing disabled
// marker is removed, and the primary enabled extension is appended if what
// remains is not already enabled.
func (t *Toggler) EnabledName(path string) string {
	dir, name := filepath.Split(path)

	if ext := filepath.Ext(name); t.policy.IsDisabled(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	if !t.policy.IsEnabled(filepath.Ext(name)) {
		name += t.policy.PrimaryEnabled()
	}
	return dir + name
}

// Disable renames path to its disabled form and returns the new path.
func (t *Toggler) Disable(path string) (string, error) {
	target := t.DisabledName(path)
	return target, t.rename("disable", path, target)
}

// Enable renames path to its enabled form and returns the new path.
func (t *Toggler) Enable(path string) (string, error) {
	target := t.EnabledName(path)
	return target, t.rename("enable", path, target)
}

func (t *Toggler) rename(op, from, to string) error {
	if from == to {
		return &RenameError{Op: op, From: from, To: to, Err: ErrSameName}
	}
	if _, err := t.fs.Stat(to); err == nil {
		return &RenameError{Op: op, From: from, To: to, Err: ErrTargetExists}
	}
	if err := t.fs.Rename(from, to); err != nil {
		return &RenameError{Op: op, From: from, To: to, Err: err}
	}
	return nil
}
