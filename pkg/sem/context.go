package sem

import (
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
)

// ResultColumn is one column exposed by a rows source.
type ResultColumn struct {
	Symbol     *Symbol
	Source     RowsSource          // producing model node, may be nil
	RealEntity catalog.Entity      // underlying table for direct columns
	RealAttr   *catalog.Attribute  // underlying attribute for direct columns
	Type       *ValueType
}

// SourceResolution is the result of resolving a dotted name to a rows
// source visible in a context.
type SourceResolution struct {
	Source RowsSource
	Alias  *Symbol        // nil when the source has no alias
	Table  catalog.Entity // nil for subqueries and CTEs
	IsCTE  bool
}

// KnownSourcesInfo aggregates every rows source visible in a context.
type KnownSourcesInfo struct {
	Resolutions      map[RowsSource]*SourceResolution
	AliasesInUse     map[string]struct{}
	ReferencedTables []catalog.Entity
}

// DataContext is the immutable set of rows sources and columns visible at
// one point of a query. Extending a context always builds a new one; parent
// contexts are never mutated.
//
// The implementation set is closed within this package.
type DataContext interface {
	Dialect() *dialect.Dialect
	Catalog() catalog.Catalog
	// Columns returns the visible result columns in projection order.
	// Duplicate names are permitted; resolution picks the first match.
	Columns() []*ResultColumn
	// ResolveSource matches a dotted name against the aliases, CTE names,
	// and table names visible here.
	ResolveSource(parts []string) *SourceResolution

	collectSources(info *KnownSourcesInfo)
}

// NewRootContext builds the statement-level context over a catalog.
func NewRootContext(d *dialect.Dialect, cat catalog.Catalog) DataContext {
	return &rootContext{dialect: d, cat: cat}
}

// ResolveColumn finds the first visible column with the given normalized
// name.
func ResolveColumn(dc DataContext, name string) *ResultColumn {
	for _, col := range dc.Columns() {
		if col.Symbol != nil && col.Symbol.Name() == name {
			return col
		}
	}
	return nil
}

// KnownSources collects all rows sources visible in the context.
func KnownSources(dc DataContext) *KnownSourcesInfo {
	info := &KnownSourcesInfo{
		Resolutions:  make(map[RowsSource]*SourceResolution),
		AliasesInUse: make(map[string]struct{}),
	}
	dc.collectSources(info)
	return info
}

func (info *KnownSourcesInfo) add(res *SourceResolution) {
	if res.Source != nil {
		if _, seen := info.Resolutions[res.Source]; seen {
			return
		}
		info.Resolutions[res.Source] = res
	}
	if res.Alias != nil {
		info.AliasesInUse[res.Alias.Name()] = struct{}{}
	}
	if res.Table != nil {
		for _, t := range info.ReferencedTables {
			if t == res.Table {
				return
			}
		}
		info.ReferencedTables = append(info.ReferencedTables, res.Table)
	}
}

// ---------- Context constructors ----------

// Combine merges two contexts, as for joined sources. Columns concatenate
// left before right; source resolution prefers the left side.
func Combine(left, right DataContext) DataContext {
	return &combinedContext{left: left, right: right}
}

// OverrideResultTuple replaces the visible columns with the result tuple of
// a projection while keeping the parent's sources reachable.
func OverrideResultTuple(parent DataContext, source RowsSource, cols []*ResultColumn) DataContext {
	return &resultTupleContext{chained: chained{parent}, source: source, cols: cols}
}

// HideSources removes all rows sources from visibility, leaving only the
// result columns. Projections hide their internals from enclosing queries.
func HideSources(parent DataContext) DataContext {
	return &hiddenSourcesContext{chained{parent}}
}

// ExtendWithTable makes a real table visible as a rows source.
func ExtendWithTable(parent DataContext, table catalog.Entity, source RowsSource) DataContext {
	return &tableContext{chained: chained{parent}, table: table, source: source}
}

// ExtendWithAlias makes a source visible under a correlation alias. The
// alias hides the underlying table name.
func ExtendWithAlias(parent DataContext, res *SourceResolution) DataContext {
	return &aliasContext{chained: chained{parent}, res: res}
}

// ExtendWithCTE makes a common table expression visible by name.
func ExtendWithCTE(parent DataContext, name *Symbol, source RowsSource) DataContext {
	return &cteContext{
		chained: chained{parent},
		res:     &SourceResolution{Source: source, Alias: name, IsCTE: true},
	}
}

// ---------- Implementations ----------

type rootContext struct {
	dialect *dialect.Dialect
	cat     catalog.Catalog
}

func (c *rootContext) Dialect() *dialect.Dialect                   { return c.dialect }
func (c *rootContext) Catalog() catalog.Catalog                    { return c.cat }
func (c *rootContext) Columns() []*ResultColumn                    { return nil }
func (c *rootContext) ResolveSource(parts []string) *SourceResolution { return nil }
func (c *rootContext) collectSources(info *KnownSourcesInfo)       {}

// chained delegates everything to the parent context; outer types override
// what they change.
type chained struct {
	parent DataContext
}

func (c *chained) Dialect() *dialect.Dialect { return c.parent.Dialect() }
func (c *chained) Catalog() catalog.Catalog  { return c.parent.Catalog() }
func (c *chained) Columns() []*ResultColumn  { return c.parent.Columns() }
func (c *chained) ResolveSource(parts []string) *SourceResolution {
	return c.parent.ResolveSource(parts)
}
func (c *chained) collectSources(info *KnownSourcesInfo) {
	c.parent.collectSources(info)
}

type tableContext struct {
	chained
	table  catalog.Entity
	source RowsSource
}

func (c *tableContext) ResolveSource(parts []string) *SourceResolution {
	if matchTableName(c.Dialect(), c.table, parts) {
		return &SourceResolution{Source: c.source, Table: c.table}
	}
	return c.parent.ResolveSource(parts)
}

func (c *tableContext) collectSources(info *KnownSourcesInfo) {
	info.add(&SourceResolution{Source: c.source, Table: c.table})
	c.parent.collectSources(info)
}

type aliasContext struct {
	chained
	res *SourceResolution
}

func (c *aliasContext) ResolveSource(parts []string) *SourceResolution {
	if len(parts) == 1 && c.res.Alias != nil &&
		c.Dialect().NormalizeName(parts[0]) == c.res.Alias.Name() {
		return c.res
	}
	return c.parent.ResolveSource(parts)
}

func (c *aliasContext) collectSources(info *KnownSourcesInfo) {
	info.add(c.res)
	c.parent.collectSources(info)
}

type cteContext struct {
	chained
	res *SourceResolution
}

func (c *cteContext) ResolveSource(parts []string) *SourceResolution {
	if len(parts) == 1 && c.Dialect().NormalizeName(parts[0]) == c.res.Alias.Name() {
		return c.res
	}
	return c.parent.ResolveSource(parts)
}

func (c *cteContext) collectSources(info *KnownSourcesInfo) {
	info.add(c.res)
	c.parent.collectSources(info)
}

type resultTupleContext struct {
	chained
	source RowsSource
	cols   []*ResultColumn
}

func (c *resultTupleContext) Columns() []*ResultColumn { return c.cols }

type combinedContext struct {
	left, right DataContext
}

func (c *combinedContext) Dialect() *dialect.Dialect { return c.left.Dialect() }
func (c *combinedContext) Catalog() catalog.Catalog  { return c.left.Catalog() }

func (c *combinedContext) Columns() []*ResultColumn {
	left := c.left.Columns()
	right := c.right.Columns()
	out := make([]*ResultColumn, 0, len(left)+len(right))
	out = append(out, left...)
	return append(out, right...)
}

func (c *combinedContext) ResolveSource(parts []string) *SourceResolution {
	if res := c.left.ResolveSource(parts); res != nil {
		return res
	}
	return c.right.ResolveSource(parts)
}

func (c *combinedContext) collectSources(info *KnownSourcesInfo) {
	c.left.collectSources(info)
	c.right.collectSources(info)
}

type hiddenSourcesContext struct {
	chained
}

func (c *hiddenSourcesContext) ResolveSource(parts []string) *SourceResolution { return nil }
func (c *hiddenSourcesContext) collectSources(info *KnownSourcesInfo)          {}

// matchTableName compares a dotted name against a table and its ancestors,
// right to left.
func matchTableName(d *dialect.Dialect, table catalog.Entity, parts []string) bool {
	if len(parts) == 0 || !d.EqualNames(parts[len(parts)-1], table.Name()) {
		return false
	}
	obj := table.Parent()
	for i := len(parts) - 2; i >= 0; i-- {
		if obj == nil || obj.Parent() == nil {
			return false
		}
		if !d.EqualNames(parts[i], obj.Name()) {
			return false
		}
		obj = obj.Parent()
	}
	return true
}
