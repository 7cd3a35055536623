// Package resolver maps a manifest entry's declared file to the real file in
// the web root. The real file's extension may differ from the manifest's
// because an earlier run toggled it, so matching is done on extensionless
// base names: every trailing enabled or disabled marker is stripped from
// both sides before comparison.
package resolver

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
	"github.com/spf13/afero"
)

// virtualRoot is the leading segment manifests use for the web root itself.
const virtualRoot = "website"

// Resolver locates real config files under a web root.
type Resolver struct {
	fs     afero.Fs
	policy types.ExtensionPolicy
	logger *logging.Logger
}

// New creates a Resolver reading from fs with the given extension policy.
func New(fs afero.Fs, policy types.ExtensionPolicy) *Resolver {
	return &Resolver{
		fs:     fs,
		policy: policy,
		logger: logging.Get("resolver"),
	}
}

// Policy returns the resolver's extension policy.
func (r *Resolver) Policy() types.ExtensionPolicy {
	return r.policy
}

// ExtensionlessBaseName strips trailing dot-separated segments from name
// while each one is a known marker of either kind. The first segment is
// never stripped, and neither is a marker directly after an empty first
// segment, so ".config" and "web" are returned unchanged.
//
//	ExtensionlessBaseName("web.config", {.config}, {})                 == "web"
//	ExtensionlessBaseName("web.config.disable", {.config}, {.disable}) == "web"
//	ExtensionlessBaseName("Foo.Bar.xml.config", {.config}, {})         == "Foo.Bar.xml"
func ExtensionlessBaseName(name string, policy types.ExtensionPolicy) string {
	segments := strings.Split(strings.TrimSpace(name), ".")

	cut := len(segments)
	for cut > 1 && policy.IsMarker("."+segments[cut-1]) {
		if cut == 2 && segments[0] == "" {
			break
		}
		cut--
	}

	return strings.Join(segments[:cut], ".")
}

// BaseName is ExtensionlessBaseName using the resolver's policy.
func (r *Resolver) BaseName(name string) string {
	return ExtensionlessBaseName(name, r.policy)
}

// RelativeDir normalizes a manifest directory: backslashes become slashes,
// surrounding separators are trimmed and a leading "website" segment is
// removed. The result is slash-separated and relative ("" for the root).
func RelativeDir(manifestDir string) string {
	dir := strings.ReplaceAll(strings.TrimSpace(manifestDir), `\`, "/")
	dir = strings.Trim(dir, "/")

	first, rest, _ := strings.Cut(dir, "/")
	if strings.EqualFold(first, virtualRoot) {
		dir = rest
	}

	dir = path.Clean("/" + dir)[1:]
	return dir
}

// Resolve returns the absolute path of the single file in
// webRoot/manifestDir whose base name equals the base name of
// manifestFileName. It fails with *InvalidLocationError when the directory
// is missing, *NotFoundError when nothing matches and *AmbiguousMatchError
// when more than one file matches.
func (r *Resolver) Resolve(webRoot, manifestDir, manifestFileName string) (string, error) {
	manifestPath := filepath.Join(strings.ReplaceAll(manifestDir, `\`, "/"), manifestFileName)
	baseName := r.BaseName(manifestFileName)
	dir := filepath.Join(webRoot, filepath.FromSlash(RelativeDir(manifestDir)))

	info, err := r.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &InvalidLocationError{Dir: dir, ManifestPath: manifestPath}
	}

	searchPath := filepath.Join(dir, baseName+".*")
	if strings.Trim(baseName, ".") == "" {
		return "", &NotFoundError{ManifestPath: manifestPath, SearchPath: searchPath}
	}

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return "", &InvalidLocationError{Dir: dir, ManifestPath: manifestPath}
	}

	prefix := strings.ToLower(baseName + ".")
	var matches []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		name := entry.Name()
		// <base>.* also matches a bare <base>, as it does on Windows.
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) && lower != prefix[:len(prefix)-1] {
			continue
		}
		if strings.EqualFold(r.BaseName(name), baseName) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ManifestPath: manifestPath, SearchPath: searchPath}
	case 1:
		r.logger.Debug("resolved manifest entry", "manifest", manifestPath, "file", matches[0])
		return matches[0], nil
	default:
		sort.Strings(matches)
		r.logger.Warn("ambiguous manifest entry", "manifest", manifestPath, "candidates", len(matches))
		return "", &AmbiguousMatchError{ManifestPath: manifestPath, Candidates: matches}
	}
}
