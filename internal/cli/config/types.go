// Package config provides configuration loading for the semql CLI.
//
// Settings come from a config file, environment variables, and flags,
// merged in that order of precedence (flags win).
package config

// Config holds all CLI configuration options.
type Config struct {
	// Dialect is the SQL dialect name used for parsing and analysis.
	Dialect string `koanf:"dialect"`
	// Database is a path to a SQLite database whose schema becomes the
	// catalog. Empty means no live database.
	Database string `koanf:"database"`
	// Schema is a path to a YAML schema file that describes the catalog.
	// Used when no live database is given.
	Schema string `koanf:"schema"`
	// Output selects the rendering format: table, json, or plain.
	Output string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// SearchInsideWords lets completion match the typed prefix anywhere
	// inside candidate names, not just at the start.
	SearchInsideWords bool `koanf:"search_inside_words"`
}

// Default configuration values.
const (
	DefaultDialect = "ansi"
	DefaultOutput  = "table"
)
