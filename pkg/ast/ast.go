// Package ast defines the SQL syntax tree consumed by the semantic analyzer.
//
// Every node carries a source span. The tree is deliberately tolerant of
// broken input: a parser may leave clause fields nil, produce identifiers
// with empty names, or insert Unexpected nodes holding the tokens it could
// not place. The analyzer degrades gracefully around all of these.
package ast

import "github.com/halcyondb/semql/pkg/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	GetSpan() token.Span
}

// Statement represents a SQL statement.
type Statement interface {
	Node
	stmtNode()
}

// Expr represents an expression in SQL.
type Expr interface {
	Node
	exprNode()
}

// TableRef represents a rows source in a FROM clause.
type TableRef interface {
	Node
	tableRefNode()
}

// NodeInfo provides common fields for all AST nodes.
// Embed this in node types that need position/comment tracking.
type NodeInfo struct {
	Span             token.Span
	LeadingComments  []*token.Comment
	TrailingComments []*token.Comment
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// AddLeadingComment adds a leading comment to the node.
func (n *NodeInfo) AddLeadingComment(c *token.Comment) {
	n.LeadingComments = append(n.LeadingComments, c)
}

// AddTrailingComment adds a trailing comment to the node.
func (n *NodeInfo) AddTrailingComment(c *token.Comment) {
	n.TrailingComments = append(n.TrailingComments, c)
}

// ---------- Identifiers ----------

// Ident is a single identifier occurrence. Name holds the decoded text
// (quotes stripped, escapes resolved); Quoted reports whether the source
// was delimited.
type Ident struct {
	NodeInfo
	Name   string
	Quoted bool
}

func (*Ident) exprNode() {}

// ObjectName is a dotted identifier chain such as catalog.schema.table.
// TrailingDot marks an incomplete name like "t." left by error recovery.
type ObjectName struct {
	NodeInfo
	Parts       []*Ident
	TrailingDot bool
}

// Strings returns the raw part names in order.
func (o *ObjectName) Strings() []string {
	out := make([]string, len(o.Parts))
	for i, p := range o.Parts {
		out[i] = p.Name
	}
	return out
}

// Last returns the final part, or nil for an empty name.
func (o *ObjectName) Last() *Ident {
	if len(o.Parts) == 0 {
		return nil
	}
	return o.Parts[len(o.Parts)-1]
}

// ---------- Script and statements ----------

// Script is a sequence of statements from one source text.
type Script struct {
	NodeInfo
	Statements []Statement
}

// SelectStmt represents a complete SELECT statement with optional WITH clause.
type SelectStmt struct {
	NodeInfo
	With *WithClause
	Body *SelectBody
}

func (*SelectStmt) stmtNode() {}

// SelectStmt doubles as a rows source for derived tables and CTEs.
func (*SelectStmt) tableRefNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	NodeInfo
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	NodeInfo
	Name    *Ident
	Columns []*Ident
	Select  *SelectStmt
}

// SelectBody represents the body of a SELECT with possible set operations.
type SelectBody struct {
	NodeInfo
	Left  *SelectCore
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL
	Right *SelectBody // For chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents one SELECT ... FROM ... block.
// Clause fields are nil when the clause is absent; SelectKw always covers
// the SELECT keyword itself.
type SelectCore struct {
	NodeInfo
	SelectKw token.Span
	Distinct bool
	Items    []*SelectItem
	Into     *IntoClause
	From     *FromClause
	Where    *Clause
	GroupBy  *GroupByClause
	Having   *Clause
	OrderBy  *OrderByClause
	Limit    *LimitClause
}

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	NodeInfo
	Expr  Expr
	Alias *Ident // AS alias, nil if none
}

// IntoClause represents SELECT ... INTO target [, target ...].
type IntoClause struct {
	NodeInfo
	Keyword token.Span
	Targets []*ObjectName
}

// FromClause represents the FROM clause. Comma-separated sources are
// separate entries in Tables; explicit joins nest inside a Join node.
type FromClause struct {
	NodeInfo
	Keyword token.Span
	Tables  []TableRef
}

// Clause is a single-expression clause (WHERE, HAVING).
type Clause struct {
	NodeInfo
	Keyword token.Span
	Expr    Expr
}

// GroupByClause represents GROUP BY expr [, expr ...].
type GroupByClause struct {
	NodeInfo
	Keyword token.Span
	Exprs   []Expr
}

// OrderByClause represents ORDER BY item [, item ...].
type OrderByClause struct {
	NodeInfo
	Keyword token.Span
	Items   []*OrderByItem
}

// OrderByItem represents an item in ORDER BY clause.
type OrderByItem struct {
	NodeInfo
	Expr Expr
	Desc bool
}

// LimitClause represents LIMIT count [OFFSET skip].
type LimitClause struct {
	NodeInfo
	Keyword token.Span
	Count   Expr
	Offset  Expr
}

// ---------- DML statements ----------

// UpdateStmt represents UPDATE target SET assignments [FROM ...]
// [WHERE ...] [ORDER BY ...] [LIMIT ...].
type UpdateStmt struct {
	NodeInfo
	Target  TableRef
	SetKw   token.Span
	Sets    []*SetAssignment
	From    *FromClause
	Where   *Clause
	OrderBy *OrderByClause
	Limit   *LimitClause
}

func (*UpdateStmt) stmtNode() {}

// SetAssignment is one SET target = value entry.
type SetAssignment struct {
	NodeInfo
	Target *ObjectName
	Value  Expr
}

// InsertStmt represents INSERT INTO target [(columns)] VALUES ... | SELECT ...
type InsertStmt struct {
	NodeInfo
	Target  *TableName
	Columns []*Ident
	Values  [][]Expr    // nil when Select is set
	Select  *SelectStmt // nil when Values is set
}

func (*InsertStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM target [WHERE ...].
type DeleteStmt struct {
	NodeInfo
	Target TableRef
	Where  *Clause
}

func (*DeleteStmt) stmtNode() {}

// ---------- Table reference types ----------

// TableName references a (possibly qualified) table with an optional alias.
type TableName struct {
	NodeInfo
	Name  *ObjectName
	Alias *Ident
}

func (*TableName) tableRefNode() {}

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	NodeInfo
	Select  *SelectStmt
	Alias   *Ident
	Columns []*Ident // optional column alias list
}

func (*DerivedTable) tableRefNode() {}

// JoinType represents the type of join, spelled as its SQL keyword.
type JoinType string

// Join type constants.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// Join represents one binary join. Chained joins nest on the left.
type Join struct {
	NodeInfo
	Type    JoinType
	Natural bool
	Left    TableRef
	Right   TableRef
	On      Expr     // ON condition, nil if absent
	Using   []*Ident // USING (col1, col2) columns
}

func (*Join) tableRefNode() {}

// ---------- Expression types ----------

// ColumnRef references a (possibly qualified) column.
type ColumnRef struct {
	NodeInfo
	Name *ObjectName
}

func (*ColumnRef) exprNode() {}

// TupleRef is a qualified asterisk: t.* or schema.table.*.
type TupleRef struct {
	NodeInfo
	Table *ObjectName
}

func (*TupleRef) exprNode() {}

// StarExpr is a bare * select item.
type StarExpr struct {
	NodeInfo
}

func (*StarExpr) exprNode() {}

// MemberExpr accesses a named member of a composite value:
// (expr).member or func(x).member.
type MemberExpr struct {
	NodeInfo
	Owner  Expr
	Member *Ident
}

func (*MemberExpr) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value.
type Literal struct {
	NodeInfo
	Type  LiteralType
	Value string
}

func (*Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	NodeInfo
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	NodeInfo
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// FuncCall represents a function call.
type FuncCall struct {
	NodeInfo
	Name     *Ident
	Distinct bool
	Args     []Expr
	Star     bool // COUNT(*)
}

func (*FuncCall) exprNode() {}

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	NodeInfo
	Operand Expr // CASE operand WHEN... (optional)
	Whens   []*WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause represents a WHEN clause in CASE expression.
type WhenClause struct {
	NodeInfo
	Condition Expr
	Result    Expr
}

// CastExpr represents a CAST expression.
type CastExpr struct {
	NodeInfo
	Expr     Expr
	TypeName *Ident
}

func (*CastExpr) exprNode() {}

// InExpr represents an IN expression.
type InExpr struct {
	NodeInfo
	Expr   Expr
	Not    bool
	Values []Expr      // IN (1, 2, 3)
	Query  *SelectStmt // IN (SELECT ...)
}

func (*InExpr) exprNode() {}

// BetweenExpr represents a BETWEEN expression.
type BetweenExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// IsNullExpr represents an IS NULL expression.
type IsNullExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// LikeExpr represents a LIKE expression.
type LikeExpr struct {
	NodeInfo
	Expr    Expr
	Not     bool
	Pattern Expr
}

func (*LikeExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	NodeInfo
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// SubqueryExpr represents a subquery used as a scalar expression.
type SubqueryExpr struct {
	NodeInfo
	Select *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// ExistsExpr represents an EXISTS expression.
type ExistsExpr struct {
	NodeInfo
	Not    bool
	Select *SelectStmt
}

func (*ExistsExpr) exprNode() {}

// ---------- Error recovery ----------

// Unexpected holds tokens the parser could not attach to the grammar.
// It satisfies every node interface so recovery can park it anywhere.
type Unexpected struct {
	NodeInfo
	Tokens []token.Token
}

func (*Unexpected) stmtNode()     {}
func (*Unexpected) exprNode()     {}
func (*Unexpected) tableRefNode() {}
