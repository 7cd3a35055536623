// Package types provides the core enumerations shared by the scconfig
// packages: manifest actions, search providers, deployment roles and the
// reconciliation mode. Each enumeration is a closed set with a String form,
// a Parse function and text marshalling so values round-trip through JSON,
// YAML and TOML as their string forms.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Action is the role-specific requirement a manifest places on a config file.
type Action int

const (
	// ActionNotApplicable means the role does not manage the file at all.
	ActionNotApplicable Action = iota
	// ActionEnable means the file must be live for the role.
	ActionEnable
	// ActionDisable means the file must be inert for the role.
	ActionDisable
)

// Action string constants.
const (
	actionNA      = "NA"
	actionEnable  = "Enable"
	actionDisable = "Disable"
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionEnable:
		return actionEnable
	case ActionDisable:
		return actionDisable
	default:
		return actionNA
	}
}

// ErrInvalidAction indicates that the action string could not be parsed.
var ErrInvalidAction = errors.New("invalid action")

// ParseAction parses a canonical action name (case-insensitive).
// Free-text manifest descriptions are resolved by the lookup package instead.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "na", "n/a", "notapplicable", "not_applicable":
		return ActionNotApplicable, nil
	case "enable", "enabled":
		return ActionEnable, nil
	case "disable", "disabled":
		return ActionDisable, nil
	default:
		return ActionNotApplicable, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// SearchProvider is the search engine a config fragment is specific to.
type SearchProvider int

const (
	// ProviderAny matches every search provider.
	ProviderAny SearchProvider = iota
	// ProviderLucene is the Lucene search provider.
	ProviderLucene
	// ProviderSolr is the SOLR search provider.
	ProviderSolr
)

// Search provider string constants.
const (
	providerAny    = "Any"
	providerLucene = "Lucene"
	providerSolr   = "SOLR"
)

// String returns the string representation of the search provider.
func (p SearchProvider) String() string {
	switch p {
	case ProviderLucene:
		return providerLucene
	case ProviderSolr:
		return providerSolr
	default:
		return providerAny
	}
}

// ErrInvalidSearchProvider indicates that the provider string could not be parsed.
var ErrInvalidSearchProvider = errors.New("invalid search provider")

// ParseSearchProvider parses a canonical provider name (case-insensitive).
func ParseSearchProvider(s string) (SearchProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "":
		return ProviderAny, nil
	case "lucene":
		return ProviderLucene, nil
	case "solr":
		return ProviderSolr, nil
	default:
		return ProviderAny, fmt.Errorf("%w: %q", ErrInvalidSearchProvider, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p SearchProvider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SearchProvider) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchProvider(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Role is the deployment role a reconciliation run targets. Each manifest
// entry carries one action per role.
type Role int

const (
	// RoleContentDelivery is the content delivery (CD) role.
	RoleContentDelivery Role = iota
	// RoleContentManagement is the content management (CM) role.
	RoleContentManagement
	// RoleProcessing is the processing role.
	RoleProcessing
	// RoleCMAndProcessing is a combined content management and processing instance.
	RoleCMAndProcessing
	// RoleReporting is the reporting service role.
	RoleReporting
)

// Roles lists every role in manifest column order.
var Roles = []Role{
	RoleContentDelivery,
	RoleContentManagement,
	RoleProcessing,
	RoleCMAndProcessing,
	RoleReporting,
}

// String returns the short name of the role.
func (r Role) String() string {
	switch r {
	case RoleContentDelivery:
		return "CD"
	case RoleContentManagement:
		return "CM"
	case RoleProcessing:
		return "PRC"
	case RoleCMAndProcessing:
		return "CM+PRC"
	case RoleReporting:
		return "REP"
	default:
		return "unknown"
	}
}

// Title returns the long, human-readable name of the role.
func (r Role) Title() string {
	switch r {
	case RoleContentDelivery:
		return "Content Delivery"
	case RoleContentManagement:
		return "Content Management"
	case RoleProcessing:
		return "Processing"
	case RoleCMAndProcessing:
		return "CM + Processing"
	case RoleReporting:
		return "Reporting"
	default:
		return "Unknown"
	}
}

// ErrInvalidRole indicates that the role string could not be parsed.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole parses a role from its short or long name. Case, spaces,
// dashes and underscores are ignored, so "CM + Processing", "cm-prc" and
// "CMAndProcessing" all parse to RoleCMAndProcessing.
func ParseRole(s string) (Role, error) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	switch key {
	case "cd", "contentdelivery":
		return RoleContentDelivery, nil
	case "cm", "contentmanagement":
		return RoleContentManagement, nil
	case "prc", "processing":
		return RoleProcessing, nil
	case "cm+prc", "cmprc", "cm+processing", "cmandprocessing", "cmprocessing", "cmp":
		return RoleCMAndProcessing, nil
	case "rep", "reporting":
		return RoleReporting, nil
	default:
		return RoleContentDelivery, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Mode selects whether reconciliation renames files or only reports.
type Mode int

const (
	// ModeVerify reports required changes without touching the file system.
	ModeVerify Mode = iota
	// ModeApply performs the renames.
	ModeApply
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	if m == ModeApply {
		return "apply"
	}
	return "verify"
}

// ErrInvalidMode indicates that the mode string could not be parsed.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode parses "verify" or "apply" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verify", "dry-run", "dryrun":
		return ModeVerify, nil
	case "apply":
		return ModeApply, nil
	default:
		return ModeVerify, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
