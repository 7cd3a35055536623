package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jamesainslie/scconfig/pkg/scconfig/lookup"
	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
	"github.com/jamesainslie/scconfig/pkg/scconfig/resolver"
)

var (
	// ErrFailed indicates at least one entry failed to reconcile.
	ErrFailed = errors.New("reconciliation failed")

	// ErrActionRequired indicates a verify run found pending changes.
	ErrActionRequired = errors.New("action required")

	// ErrRename indicates an enable or disable rename did not happen.
	ErrRename = errors.New("rename failed")

	// ErrTargetExists indicates the rename target is already present.
	ErrTargetExists = errors.New("target file already exists")

	// ErrSameName indicates the toggled name equals the current name.
	ErrSameName = errors.New("toggled name equals current name")

	// ErrPanic wraps a panic recovered while reconciling an entry.
	ErrPanic = errors.New("unexpected panic")

	// ErrCancelled marks entries skipped because the run was cancelled.
	ErrCancelled = errors.New("reconciliation cancelled")
)

// RenameError is returned when the enable or disable primitive could not
// change a file's state.
type RenameError struct {
	Op   string // "enable" or "disable"
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to %s '%s' as '%s': %v", e.Op, e.From, filepath.Base(e.To), e.Err)
}

// Unwrap exposes both ErrRename and the underlying cause.
func (e *RenameError) Unwrap() []error { return []error{ErrRename, e.Err} }

// Error kinds recorded in trace records.
const (
	KindInvalidLocation = "InvalidLocation"
	KindNotFound        = "NotFound"
	KindAmbiguousMatch  = "AmbiguousMatch"
	KindRenameFailure   = "RenameFailure"
	KindDescription     = "DescriptionResolution"
	KindCancelled       = "Cancelled"
	KindInternal        = "Internal"
	KindUnknown         = "Error"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, resolver.ErrInvalidLocation):
		return KindInvalidLocation
	case errors.Is(err, resolver.ErrNotFound):
		return KindNotFound
	case errors.Is(err, resolver.ErrAmbiguousMatch):
		return KindAmbiguousMatch
	case errors.Is(err, ErrRename):
		return KindRenameFailure
	case errors.Is(err, lookup.ErrUnresolved),
		errors.Is(err, manifest.ErrMissingField):
		return KindDescription
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrPanic):
		return KindInternal
	default:
		return KindUnknown
	}
}
