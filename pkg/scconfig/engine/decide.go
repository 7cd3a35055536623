package engine

import (
	"fmt"

	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// Transition is the file state change a decision requires.
type Transition int

const (
	// TransitionNone leaves the file untouched.
	TransitionNone Transition = iota
	// TransitionEnable renames the file to an enabled extension.
	TransitionEnable
	// TransitionDisable renames the file to a disabled extension.
	TransitionDisable
)

// String returns the transition name.
func (t Transition) String() string {
	switch t {
	case TransitionEnable:
		return "enable"
	case TransitionDisable:
		return "disable"
	default:
		return "none"
	}
}

// Status details reported by Decide.
const (
	DetailProviderMismatch = "already disabled due to provider mismatch"
	DetailNeedsDisable     = "needs to be disabled"
	DetailDisabled         = "had been disabled"
	DetailNeedsEnable      = "needs to be enabled"
	DetailEnabled          = "had been enabled"
	DetailAlreadyEnabled   = "already enabled, no action"
	DetailAlreadyDisabled  = "already disabled, no action"
	DetailNotManaged       = "role does not require this file to be managed"
)

// Decision is the outcome of Decide for one entry.
type Decision struct {
	Transition Transition
	Status     trace.Status
	Detail     string
	Note       string
}

// Decide computes what to do with a resolved file. It has no side effects;
// the caller performs the transition when one is returned.
//
// The search-provider gate comes first: when a specific target is set and
// the entry belongs to another provider, the file must be disabled whatever
// the role says. Otherwise the role's action applies.
func Decide(isEnabled bool, entryProvider types.SearchProvider, action types.Action, target types.SearchProvider, mode types.Mode) Decision {
	if target != types.ProviderAny && entryProvider != target {
		if !isEnabled {
			return Decision{
				Status: trace.StatusOK,
				Detail: DetailProviderMismatch,
				Note: fmt.Sprintf("file has to be (and already is) disabled due to mismatching search providers (target: %s; manifest: %s)",
					target, entryProvider),
			}
		}
		note := fmt.Sprintf("manifest entry is for the %s search provider whereas the target is %s; the file has to be disabled",
			entryProvider, target)
		return disable(mode, note)
	}

	switch action {
	case types.ActionEnable:
		if isEnabled {
			return Decision{
				Status: trace.StatusOK,
				Detail: DetailAlreadyEnabled,
				Note:   "file has to be (and already is) enabled",
			}
		}
		return enable(mode, "file is disabled and has to be enabled per manifest")

	case types.ActionDisable:
		if !isEnabled {
			return Decision{
				Status: trace.StatusOK,
				Detail: DetailAlreadyDisabled,
				Note:   "file has to be (and already is) disabled",
			}
		}
		return disable(mode, "file is enabled and has to be disabled per manifest")

	default:
		return Decision{
			Status: trace.StatusOK,
			Detail: DetailNotManaged,
			Note:   "the current role does not demand the file to be enabled or disabled",
		}
	}
}

func enable(mode types.Mode, note string) Decision {
	if mode == types.ModeApply {
		return Decision{Transition: TransitionEnable, Status: trace.StatusOK, Detail: DetailEnabled, Note: note}
	}
	return Decision{Status: trace.StatusActionRequired, Detail: DetailNeedsEnable, Note: note}
}

func disable(mode types.Mode, note string) Decision {
	if mode == types.ModeApply {
		return Decision{Transition: TransitionDisable, Status: trace.StatusOK, Detail: DetailDisabled, Note: note}
	}
	return Decision{Status: trace.StatusActionRequired, Detail: DetailNeedsDisable, Note: note}
}
