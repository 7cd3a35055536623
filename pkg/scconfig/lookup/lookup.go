// Package lookup resolves the free-text descriptions used in manifest
// spreadsheets into search providers and actions.
//
// Each enumeration value owns a set of descriptions. Matching trims
// whitespace and ignores case; sets are checked in a fixed precedence order
// and the first set containing the description wins.
package lookup

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// ErrUnresolved indicates a description did not belong to any set.
var ErrUnresolved = errors.New("unresolved description")

// ResolutionError is returned when a description matches no set.
type ResolutionError struct {
	Kind        string // "search provider" or "action"
	Description string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s can not be resolved by the description '%s'", e.Kind, e.Description)
}

func (e *ResolutionError) Unwrap() error { return ErrUnresolved }

// ProviderDescriptions maps descriptions to search providers.
// Precedence: Lucene, SOLR, Any.
type ProviderDescriptions struct {
	Lucene []string `mapstructure:"lucene" json:"lucene" yaml:"lucene"`
	Solr   []string `mapstructure:"solr" json:"solr" yaml:"solr"`
	Any    []string `mapstructure:"any" json:"any" yaml:"any"`
}

// DefaultProviderDescriptions returns the descriptions used by the stock
// configuration spreadsheets.
func DefaultProviderDescriptions() ProviderDescriptions {
	return ProviderDescriptions{
		Lucene: []string{"Lucene", "Lucene is used"},
		Solr:   []string{"Solr", "Solr is used"},
		Any:    []string{"", "Base", "Any", "n/a"},
	}
}

// Resolve returns the provider whose set contains description.
func (d ProviderDescriptions) Resolve(description string) (types.SearchProvider, error) {
	switch {
	case contains(d.Lucene, description):
		return types.ProviderLucene, nil
	case contains(d.Solr, description):
		return types.ProviderSolr, nil
	case contains(d.Any, description):
		return types.ProviderAny, nil
	default:
		return types.ProviderAny, &ResolutionError{Kind: "search provider", Description: description}
	}
}

// ActionDescriptions maps descriptions to actions.
// Precedence: Enable, Disable, NotApplicable.
type ActionDescriptions struct {
	Enable        []string `mapstructure:"enable" json:"enable" yaml:"enable"`
	Disable       []string `mapstructure:"disable" json:"disable" yaml:"disable"`
	NotApplicable []string `mapstructure:"not_applicable" json:"not_applicable" yaml:"not_applicable"`
}

// DefaultActionDescriptions returns the descriptions used by the stock
// configuration spreadsheets.
func DefaultActionDescriptions() ActionDescriptions {
	return ActionDescriptions{
		Enable:        []string{"Enable", "Enabled"},
		Disable:       []string{"Disable", "Disabled"},
		NotApplicable: []string{"", "n/a", "NA"},
	}
}

// Resolve returns the action whose set contains description.
func (d ActionDescriptions) Resolve(description string) (types.Action, error) {
	switch {
	case contains(d.Enable, description):
		return types.ActionEnable, nil
	case contains(d.Disable, description):
		return types.ActionDisable, nil
	case contains(d.NotApplicable, description):
		return types.ActionNotApplicable, nil
	default:
		return types.ActionNotApplicable, &ResolutionError{Kind: "action", Description: description}
	}
}

// Descriptions bundles both lookups.
type Descriptions struct {
	Providers ProviderDescriptions `mapstructure:"providers" json:"providers" yaml:"providers"`
	Actions   ActionDescriptions   `mapstructure:"actions" json:"actions" yaml:"actions"`
}

// DefaultDescriptions returns the default provider and action sets.
func DefaultDescriptions() Descriptions {
	return Descriptions{
		Providers: DefaultProviderDescriptions(),
		Actions:   DefaultActionDescriptions(),
	}
}

// Conflict is a description claimed by more than one set. Only the first
// set (by precedence) ever matches it.
type Conflict struct {
	Kind        string
	Description string
	Sets        []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s description '%s' is listed in %s; %s wins", c.Kind, c.Description, strings.Join(c.Sets, ", "), c.Sets[0])
}

// Conflicts lists descriptions that belong to more than one set.
func (d Descriptions) Conflicts() []Conflict {
	var out []Conflict
	out = append(out, conflicts("search provider", []namedSet{
		{"Lucene", d.Providers.Lucene},
		{"SOLR", d.Providers.Solr},
		{"Any", d.Providers.Any},
	})...)
	out = append(out, conflicts("action", []namedSet{
		{"Enable", d.Actions.Enable},
		{"Disable", d.Actions.Disable},
		{"NA", d.Actions.NotApplicable},
	})...)
	return out
}

type namedSet struct {
	name  string
	items []string
}

func conflicts(kind string, sets []namedSet) []Conflict {
	owners := make(map[string][]string)
	display := make(map[string]string)
	for _, set := range sets {
		seen := make(map[string]bool)
		for _, item := range set.items {
			key := normalize(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := display[key]; !ok {
				display[key] = strings.TrimSpace(item)
			}
			owners[key] = append(owners[key], set.name)
		}
	}

	keys := make([]string, 0, len(owners))
	for key, names := range owners {
		if len(names) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]Conflict, 0, len(keys))
	for _, key := range keys {
		out = append(out, Conflict{Kind: kind, Description: display[key], Sets: owners[key]})
	}
	return out
}

func contains(set []string, description string) bool {
	want := normalize(description)
	for _, item := range set {
		if normalize(item) == want {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
