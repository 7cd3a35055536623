// Package manifest loads the configuration manifest: the list of config
// fragments a deployment manages, with the search provider each one belongs
// to and the action every deployment role requires.
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// Entry is one resolved manifest row. Entries are immutable once loaded.
type Entry struct {
	ProductName    string                      `json:"product_name" yaml:"product_name"`
	FilePath       string                      `json:"file_path" yaml:"file_path"`
	ConfigFileName string                      `json:"config_file_name" yaml:"config_file_name"`
	ConfigType     string                      `json:"config_type,omitempty" yaml:"config_type,omitempty"`
	SearchProvider types.SearchProvider        `json:"search_provider" yaml:"search_provider"`
	Actions        map[types.Role]types.Action `json:"actions" yaml:"actions"`
	Row            int                         `json:"row" yaml:"row"`
}

// ActionFor returns the action the role requires. Roles without an
// explicit action are not applicable.
func (e Entry) ActionFor(role types.Role) types.Action {
	if action, ok := e.Actions[role]; ok {
		return action
	}
	return types.ActionNotApplicable
}

// RelativeFilePath joins the directory and file name with forward slashes.
func (e Entry) RelativeFilePath() string {
	return joinRelative(e.FilePath, e.ConfigFileName)
}

// String is the description used in traces and audit output.
func (e Entry) String() string {
	var b strings.Builder
	if e.ProductName != "" {
		b.WriteString(e.ProductName)
		b.WriteString(": ")
	}
	b.WriteString(e.RelativeFilePath())
	if e.ConfigType != "" {
		fmt.Fprintf(&b, " (%s)", e.ConfigType)
	}
	fmt.Fprintf(&b, " [%s]", e.SearchProvider)
	return b.String()
}

func joinRelative(dir, name string) string {
	dir = strings.TrimRight(strings.ReplaceAll(strings.TrimSpace(dir), `\`, "/"), "/")
	name = strings.TrimSpace(name)
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Manifest is a loaded manifest. Entries holds every row that resolved;
// Errors holds the rows that did not, in row order.
type Manifest struct {
	Path    string
	Format  Format
	Entries []Entry
	Errors  []*RowError
}

// Len returns the number of rows read, resolved or not.
func (m *Manifest) Len() int {
	return len(m.Entries) + len(m.Errors)
}

// Format is a manifest file encoding.
type Format int

const (
	// FormatCSV is a spreadsheet export with a header row.
	FormatCSV Format = iota
	// FormatJSON is a JSON document with an "entries" list.
	FormatJSON
	// FormatYAML is a YAML document with an "entries" list.
	FormatYAML
	// FormatTOML is a TOML document with an [[entries]] array.
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "csv"
	}
}

// ErrUnsupportedFormat indicates the manifest extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return FormatCSV, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Sentinel errors for row validation.
var (
	// ErrMissingField indicates a row lacks a required value.
	ErrMissingField = errors.New("missing required field")

	// ErrMissingColumn indicates a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)

// RowError describes a manifest row that could not be turned into an
// Entry. It aborts only that row.
type RowError struct {
	Row         int    // 1-based position among data rows
	Description string // Best-effort description of the row
	Err         error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("manifest row %d (%s): %v", e.Row, e.Description, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
