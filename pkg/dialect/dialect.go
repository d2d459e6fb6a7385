// Package dialect provides SQL dialect configuration: identifier quoting and
// normalization rules, reserved words, and clause behavior the semantic
// analyzer depends on.
//
// Concrete dialects are registered via Register(), usually from init().
// The bundled "ansi" dialect covers standard SQL behavior.
package dialect

import "strings"

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL, ClickHouse).
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (BigQuery, Hive, DuckDB).
	NormCaseInsensitive
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// FilterClause identifies a row-filtering or ordering clause of a projection.
type FilterClause int

// Filter clauses in statement order.
const (
	ClauseWhere FilterClause = iota
	ClauseGroupBy
	ClauseHaving
	ClauseOrderBy
)

// String returns the SQL spelling of the clause.
func (c FilterClause) String() string {
	switch c {
	case ClauseWhere:
		return "WHERE"
	case ClauseGroupBy:
		return "GROUP BY"
	case ClauseHaving:
		return "HAVING"
	case ClauseOrderBy:
		return "ORDER BY"
	default:
		return "CLAUSE"
	}
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// DefaultSchema is the schema unqualified tables resolve against first.
	DefaultSchema string

	// aliasVisible holds the clauses where projection aliases may be
	// referenced alongside source columns.
	aliasVisible map[FilterClause]struct{}

	// reservedWords are keywords that need quoting when used as identifiers,
	// normalized per the dialect's strategy.
	reservedWords map[string]struct{}
}

// Config declares a dialect for registration.
type Config struct {
	Name          string
	Identifiers   IdentifierConfig
	DefaultSchema string
	ReservedWords []string
	AliasVisible  []FilterClause
}

// New builds a Dialect from its configuration.
func New(cfg Config) *Dialect {
	d := &Dialect{
		Name:          cfg.Name,
		Identifiers:   cfg.Identifiers,
		DefaultSchema: cfg.DefaultSchema,
		aliasVisible:  make(map[FilterClause]struct{}, len(cfg.AliasVisible)),
		reservedWords: make(map[string]struct{}, len(cfg.ReservedWords)),
	}
	for _, c := range cfg.AliasVisible {
		d.aliasVisible[c] = struct{}{}
	}
	for _, w := range cfg.ReservedWords {
		d.reservedWords[d.NormalizeName(w)] = struct{}{}
	}
	return d
}

// NormalizeName normalizes an unquoted identifier per the dialect strategy.
// Quoted identifiers must not be passed here; their case is preserved as-is.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormCaseSensitive:
		return name
	default:
		return strings.ToLower(name)
	}
}

// EqualNames reports whether two identifiers denote the same name once
// normalized.
func (d *Dialect) EqualNames(a, b string) bool {
	return d.NormalizeName(a) == d.NormalizeName(b)
}

// IsReserved reports whether the word is a reserved keyword in this dialect.
func (d *Dialect) IsReserved(word string) bool {
	_, ok := d.reservedWords[d.NormalizeName(word)]
	return ok
}

// QuoteIdentifier wraps an identifier in the dialect's quote characters,
// escaping embedded quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	q, qe := d.Identifiers.Quote, d.Identifiers.QuoteEnd
	if qe == "" {
		qe = q
	}
	escaped := name
	if d.Identifiers.Escape != "" {
		escaped = strings.ReplaceAll(name, qe, d.Identifiers.Escape)
	}
	return q + escaped + qe
}

// QuoteIfNeeded quotes an identifier only when it would not survive as a
// plain word: reserved words and names containing characters outside an
// identifier.
func (d *Dialect) QuoteIfNeeded(name string) string {
	if name == "" || d.IsReserved(name) || !plainIdentifier(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

func plainIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// AliasVisibleIn reports whether projection aliases are in scope for the
// given clause.
func (d *Dialect) AliasVisibleIn(c FilterClause) bool {
	_, ok := d.aliasVisible[c]
	return ok
}
