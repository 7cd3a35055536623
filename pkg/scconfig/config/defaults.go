// Package config provides configuration management for scconfig.
package config

// Default configuration values.
const (
	// DefaultRole is the server role reconciled when none is configured.
	DefaultRole = "CD"

	// DefaultTarget is the search provider targeted when none is configured.
	DefaultTarget = "SOLR"

	// DefaultRetentionDays is how long run history is kept.
	DefaultRetentionDays = 30

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	appName = "scconfig"
)

// DefaultScanExclusions lists web-root directories skipped by scan.
var DefaultScanExclusions = []string{
	"bin",
	"obj",
	"node_modules",
	"App_Data",
}
