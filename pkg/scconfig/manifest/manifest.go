package manifest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
	"github.com/jamesainslie/scconfig/pkg/scconfig/lookup"
	"github.com/jamesainslie/scconfig/pkg/scconfig/resolver"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// RawRow is a manifest row before its descriptions are resolved.
type RawRow struct {
	ProductName       string `json:"product_name" yaml:"product_name" toml:"product_name"`
	FilePath          string `json:"file_path" yaml:"file_path" toml:"file_path"`
	ConfigFileName    string `json:"config_file_name" yaml:"config_file_name" toml:"config_file_name"`
	ConfigType        string `json:"config_type" yaml:"config_type" toml:"config_type"`
	SearchProvider    string `json:"search_provider" yaml:"search_provider" toml:"search_provider"`
	ContentDelivery   string `json:"content_delivery" yaml:"content_delivery" toml:"content_delivery"`
	ContentManagement string `json:"content_management" yaml:"content_management" toml:"content_management"`
	Processing        string `json:"processing" yaml:"processing" toml:"processing"`
	CMAndProcessing   string `json:"cm_processing" yaml:"cm_processing" toml:"cm_processing"`
	Reporting         string `json:"reporting" yaml:"reporting" toml:"reporting"`
}

func (r RawRow) action(role types.Role) string {
	switch role {
	case types.RoleContentDelivery:
		return r.ContentDelivery
	case types.RoleContentManagement:
		return r.ContentManagement
	case types.RoleProcessing:
		return r.Processing
	case types.RoleCMAndProcessing:
		return r.CMAndProcessing
	default:
		return r.Reporting
	}
}

func (r RawRow) blank() bool {
	return strings.TrimSpace(r.ProductName+r.FilePath+r.ConfigFileName+r.ConfigType+r.SearchProvider+
		r.ContentDelivery+r.ContentManagement+r.Processing+r.CMAndProcessing+r.Reporting) == ""
}

func (r RawRow) describe() string {
	desc := joinRelative(r.FilePath, r.ConfigFileName)
	if r.ProductName != "" {
		desc = strings.TrimSpace(r.ProductName) + ": " + desc
	}
	return desc
}

// document is the shape of JSON, YAML and TOML manifests.
type document struct {
	Entries []RawRow `json:"entries" yaml:"entries" toml:"entries"`
}

// Load reads the manifest at path, choosing the decoder by extension.
// An I/O or decode failure aborts the load; rows that fail to resolve are
// collected in Manifest.Errors.
func Load(path string, descs lookup.Descriptions) (*Manifest, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f, format, descs)
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse decodes a manifest from r.
func Parse(r io.Reader, format Format, descs lookup.Descriptions) (*Manifest, error) {
	var rows []RawRow
	var err error

	switch format {
	case FormatCSV:
		rows, err = decodeCSV(r)
	case FormatJSON:
		rows, err = decodeJSON(r)
	case FormatYAML:
		rows, err = decodeYAML(r)
	case FormatTOML:
		rows, err = decodeTOML(r)
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	m := &Manifest{Format: format}
	n := 0
	for _, row := range rows {
		if row.blank() {
			continue
		}
		n++
		entry, err := Resolve(row, n, descs)
		if err != nil {
			m.Errors = append(m.Errors, err)
			continue
		}
		m.Entries = append(m.Entries, entry)
	}

	logging.Get("manifest").Debug("manifest parsed",
		"format", format.String(), "entries", len(m.Entries), "errors", len(m.Errors))

	return m, nil
}

// Resolve turns a raw row into an Entry using descs.
func Resolve(row RawRow, n int, descs lookup.Descriptions) (Entry, *RowError) {
	rowErr := func(err error) *RowError {
		return &RowError{Row: n, Description: row.describe(), Err: err}
	}

	if strings.TrimSpace(row.ConfigFileName) == "" {
		return Entry{}, rowErr(fmt.Errorf("%w: config file name", ErrMissingField))
	}

	provider, err := descs.Providers.Resolve(row.SearchProvider)
	if err != nil {
		return Entry{}, rowErr(err)
	}

	actions := make(map[types.Role]types.Action, len(types.Roles))
	for _, role := range types.Roles {
		action, err := descs.Actions.Resolve(row.action(role))
		if err != nil {
			return Entry{}, rowErr(fmt.Errorf("%s: %w", role.Title(), err))
		}
		actions[role] = action
	}

	return Entry{
		ProductName:    strings.TrimSpace(row.ProductName),
		FilePath:       strings.TrimSpace(row.FilePath),
		ConfigFileName: strings.TrimSpace(row.ConfigFileName),
		ConfigType:     strings.TrimSpace(row.ConfigType),
		SearchProvider: provider,
		Actions:        actions,
		Row:            n,
	}, nil
}

// Dirs returns the distinct web-root-relative directories the entries live
// in, sorted. Directories differing only in case are reported once.
func (m *Manifest) Dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, e := range m.Entries {
		dir := resolver.RelativeDir(e.FilePath)
		key := strings.ToLower(dir)
		if seen[key] {
			continue
		}
		seen[key] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// csvColumns maps normalized spreadsheet headers to row setters.
var csvColumns = map[string]func(*RawRow, string){
	"productname":        func(r *RawRow, v string) { r.ProductName = v },
	"filepath":           func(r *RawRow, v string) { r.FilePath = v },
	"configfilename":     func(r *RawRow, v string) { r.ConfigFileName = v },
	"configtype":         func(r *RawRow, v string) { r.ConfigType = v },
	"searchproviderused": func(r *RawRow, v string) { r.SearchProvider = v },
	"searchprovider":     func(r *RawRow, v string) { r.SearchProvider = v },
	"contentdelivery":    func(r *RawRow, v string) { r.ContentDelivery = v },
	"contentmanagement":  func(r *RawRow, v string) { r.ContentManagement = v },
	"processing":         func(r *RawRow, v string) { r.Processing = v },
	"cmprocessing":       func(r *RawRow, v string) { r.CMAndProcessing = v },
	"reporting":          func(r *RawRow, v string) { r.Reporting = v },
}

// normalizeHeader lowercases a header and drops everything but letters and
// digits, so "CM + Processing" and "cm_processing" compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range h {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func decodeCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	setters := make([]func(*RawRow, string), len(header))
	found := make(map[string]bool)
	for i, h := range header {
		key := normalizeHeader(h)
		if set, ok := csvColumns[key]; ok {
			setters[i] = set
			found[key] = true
		}
	}
	for _, required := range []string{"filepath", "configfilename"} {
		if !found[required] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		var row RawRow
		for i, value := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeJSON(r io.Reader) ([]RawRow, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return doc.Entries, nil
}

func decodeYAML(r io.Reader) ([]RawRow, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return doc.Entries, nil
}

func decodeTOML(r io.Reader) ([]RawRow, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decoding toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logging.Get("manifest").Warn("ignoring unknown manifest keys", "keys", strings.Join(keys, ", "))
	}
	return doc.Entries, nil
}
