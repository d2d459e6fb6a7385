package sem

import (
	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/token"
)

// recognizeValue resolves one value expression against a context and infers
// its type. Grammar gaps degrade to untyped operators without diagnostics.
func (rc *recognition) recognizeValue(e ast.Expr, dc DataContext) ValueExpr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *ast.ColumnRef:
		return rc.resolveColumnRef(e, dc, &ValueRefOrigin{Context: dc})

	case *ast.TupleRef:
		return rc.resolveTupleRef(e, dc)

	case *ast.StarExpr:
		m := &StarModel{Columns: dc.Columns()}
		rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
		return m

	case *ast.Literal:
		m := &LiteralModel{}
		rc.initValue(&m.valueNode, e.Span, dc, literalType(e.Type))
		return m

	case *ast.BinaryExpr:
		m := &OperatorModel{Op: e.Op.String()}
		rc.initValue(&m.valueNode, e.Span, dc, nil)
		left := rc.recognizeValue(e.Left, dc)
		right := rc.recognizeValue(e.Right, dc)
		m.Operands = appendOperand(m.Operands, left)
		m.Operands = appendOperand(m.Operands, right)
		for _, op := range m.Operands {
			m.addChild(op)
		}
		m.typ = binaryType(e.Op, left)
		return m

	case *ast.UnaryExpr:
		m := &OperatorModel{Op: e.Op.String()}
		rc.initValue(&m.valueNode, e.Span, dc, nil)
		operand := rc.recognizeValue(e.Expr, dc)
		m.Operands = appendOperand(m.Operands, operand)
		m.addChild(operand)
		if e.Op == token.NOT {
			m.typ = BooleanType
		} else if operand != nil {
			m.typ = operand.ValueType()
		}
		return m

	case *ast.FuncCall:
		m := &OperatorModel{Op: rc.normalize(e.Name)}
		rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
		for _, arg := range e.Args {
			v := rc.recognizeValue(arg, dc)
			m.Operands = appendOperand(m.Operands, v)
			m.addChild(v)
		}
		return m

	case *ast.CaseExpr:
		m := &OperatorModel{Op: "case"}
		rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
		if v := rc.recognizeValue(e.Operand, dc); v != nil {
			m.Operands = append(m.Operands, v)
			m.addChild(v)
		}
		for _, w := range e.Whens {
			cond := rc.recognizeValue(w.Condition, dc)
			res := rc.recognizeValue(w.Result, dc)
			m.Operands = appendOperand(m.Operands, cond)
			m.Operands = appendOperand(m.Operands, res)
			m.addChild(cond)
			m.addChild(res)
			if m.typ == UnknownType && res != nil {
				m.typ = res.ValueType()
			}
		}
		if v := rc.recognizeValue(e.Else, dc); v != nil {
			m.Operands = append(m.Operands, v)
			m.addChild(v)
		}
		return m

	case *ast.CastExpr:
		typ := NamedType(e.TypeName.Name)
		te := rc.makeEntry(e.TypeName)
		te.Symbol().SetClass(ClassType)
		m := &OperatorModel{Op: "cast"}
		rc.initValue(&m.valueNode, e.Span, dc, typ)
		operand := rc.recognizeValue(e.Expr, dc)
		m.Operands = appendOperand(m.Operands, operand)
		m.addChild(operand)
		return m

	case *ast.InExpr:
		m := &OperatorModel{Op: "in"}
		rc.initValue(&m.valueNode, e.Span, dc, BooleanType)
		operand := rc.recognizeValue(e.Expr, dc)
		m.Operands = appendOperand(m.Operands, operand)
		m.addChild(operand)
		for _, v := range e.Values {
			vv := rc.recognizeValue(v, dc)
			m.Operands = appendOperand(m.Operands, vv)
			m.addChild(vv)
		}
		if e.Query != nil {
			sub := rc.subqueryValue(e.Query, e.Query.Span, dc)
			m.Operands = append(m.Operands, sub)
			m.addChild(sub)
		}
		return m

	case *ast.BetweenExpr:
		m := &OperatorModel{Op: "between"}
		rc.initValue(&m.valueNode, e.Span, dc, BooleanType)
		for _, sub := range []ast.Expr{e.Expr, e.Low, e.High} {
			v := rc.recognizeValue(sub, dc)
			m.Operands = appendOperand(m.Operands, v)
			m.addChild(v)
		}
		return m

	case *ast.IsNullExpr:
		m := &OperatorModel{Op: "is null"}
		rc.initValue(&m.valueNode, e.Span, dc, BooleanType)
		v := rc.recognizeValue(e.Expr, dc)
		m.Operands = appendOperand(m.Operands, v)
		m.addChild(v)
		return m

	case *ast.LikeExpr:
		m := &OperatorModel{Op: "like"}
		rc.initValue(&m.valueNode, e.Span, dc, BooleanType)
		expr := rc.recognizeValue(e.Expr, dc)
		pattern := rc.recognizeValue(e.Pattern, dc)
		m.Operands = appendOperand(m.Operands, expr)
		m.Operands = appendOperand(m.Operands, pattern)
		m.addChild(expr)
		m.addChild(pattern)
		return m

	case *ast.ExistsExpr:
		m := &OperatorModel{Op: "exists"}
		rc.initValue(&m.valueNode, e.Span, dc, BooleanType)
		sub := rc.subqueryValue(e.Select, e.Span, dc)
		m.Operands = append(m.Operands, sub)
		m.addChild(sub)
		return m

	case *ast.ParenExpr:
		return rc.recognizeValue(e.Expr, dc)

	case *ast.SubqueryExpr:
		return rc.subqueryValue(e.Select, e.Span, dc)

	case *ast.MemberExpr:
		return rc.recognizeMember(e, dc)

	case *ast.Unexpected:
		rc.log.Debug("expression not recognized, degrading to untyped operator")
		m := &OperatorModel{}
		rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
		return m

	default:
		m := &OperatorModel{}
		rc.initValue(&m.valueNode, e.GetSpan(), dc, UnknownType)
		return m
	}
}

func (rc *recognition) initValue(v *valueNode, span token.Span, dc DataContext, typ *ValueType) {
	v.span = span
	v.given = dc
	v.result = dc
	v.typ = typ
}

func appendOperand(ops []ValueExpr, v ValueExpr) []ValueExpr {
	if v == nil {
		return ops
	}
	return append(ops, v)
}

func literalType(t ast.LiteralType) *ValueType {
	switch t {
	case ast.LiteralNumber:
		return NumberType
	case ast.LiteralString:
		return StringType
	case ast.LiteralBool:
		return BooleanType
	case ast.LiteralNull:
		return NullType
	default:
		return UnknownType
	}
}

// binaryType infers the result type of a binary operator.
func binaryType(op token.TokenType, left ValueExpr) *ValueType {
	switch op {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.AND, token.OR:
		return BooleanType
	case token.DPIPE:
		return StringType
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return NumberType
	default:
		if left != nil {
			return left.ValueType()
		}
		return UnknownType
	}
}

// subqueryValue analyzes a subquery in value position. Its type is the type
// of the first result column.
func (rc *recognition) subqueryValue(s *ast.SelectStmt, span token.Span, dc DataContext) *SubqueryValueModel {
	m := &SubqueryValueModel{}
	rc.initValue(&m.valueNode, span, dc, UnknownType)
	m.Source = rc.recognizeSelect(s, dc)
	m.addChild(m.Source)
	if cols := sourceColumns(m.Source); len(cols) > 0 && cols[0].Type != nil {
		m.typ = cols[0].Type
	}
	return m
}

// recognizeMember resolves (expr).member access against the owner's type.
func (rc *recognition) recognizeMember(e *ast.MemberExpr, dc DataContext) ValueExpr {
	m := &MemberAccessModel{}
	rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
	m.Owner = rc.recognizeValue(e.Owner, dc)
	m.addChild(m.Owner)

	ownerType := UnknownType
	if m.Owner != nil {
		ownerType = m.Owner.ValueType()
	}
	entry := rc.makeEntry(e.Member)
	entry.SetOrigin(&TypeMemberOrigin{Type: ownerType})
	m.MemberEntry = entry
	m.typ = rc.resolveTypeMember(entry, ownerType)
	return m
}

// resolveTypeMember looks one member up in a composite type. Metadata
// failures degrade to a warning and an unknown type; a missing member is an
// error.
func (rc *recognition) resolveTypeMember(entry *SymbolEntry, ownerType *ValueType) *ValueType {
	if ownerType == nil || ownerType.Kind == TypeUnknown {
		return UnknownType
	}
	attr, err := ownerType.FindNamedMember(rc.ctx, entry.Name())
	if err != nil {
		rc.log.Debug("member lookup failed", "error", err.Error())
		rc.appendWarning(entry.Span(), "metadata unavailable: %v", err)
		return UnknownType
	}
	if attr == nil {
		entry.Symbol().SetClass(ClassError)
		rc.appendError(entry.Span(), "type %s has no member %s", ownerType.Name, entry.Raw())
		return UnknownType
	}
	memberType := TypeOfAttribute(attr)
	entry.SetDefinition(&TypeDefinition{Type: memberType})
	return memberType
}

// resolveColumnRef resolves a possibly dotted column reference: the longest
// visible source prefix wins, the next part is a column of that source, and
// any remaining parts read members of composite values.
func (rc *recognition) resolveColumnRef(cr *ast.ColumnRef, dc DataContext, first Origin) *ColumnRefModel {
	entries := make([]*SymbolEntry, 0, len(cr.Name.Parts))
	for _, part := range cr.Name.Parts {
		entries = append(entries, rc.makeEntry(part))
	}
	return rc.resolveColumnRefEntries(cr, entries, dc, first)
}

func (rc *recognition) resolveColumnRefEntries(cr *ast.ColumnRef, entries []*SymbolEntry, dc DataContext, first Origin) *ColumnRefModel {
	m := &ColumnRefModel{Name: cr.Name, Entries: entries}
	rc.initValue(&m.valueNode, cr.Span, dc, UnknownType)
	if len(entries) == 0 {
		return m
	}
	entries[0].SetOrigin(first)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}

	if cr.Name.TrailingDot {
		// mid-typing: classify the written prefix if it names a source, but
		// report nothing
		if res := dc.ResolveSource(names); res != nil {
			rc.classifySourcePrefix(entries, res, dc)
		}
		return m
	}

	n := len(entries)
	if n == 1 {
		if col := ResolveColumn(dc, names[0]); col != nil {
			// chain to the defining occurrence when there is one, so aliases
			// keep their class through references
			if col.Symbol != nil && col.Symbol.Definition() != nil {
				entries[0].SetDefinition(col.Symbol.Definition())
			} else {
				entries[0].SetDefinition(&ColumnDefinition{Column: col})
			}
			m.Column = col
			m.typ = col.Type
			return m
		}
		if res := dc.ResolveSource(names); res != nil {
			// a bare source reference in value position, usable as a
			// composite row
			rc.classifySourcePrefix(entries, res, dc)
			return m
		}
		entries[0].Symbol().SetClass(ClassError)
		rc.appendError(entries[0].Span(), "column %s not found", entries[0].Raw())
		return m
	}

	for k := n - 1; k >= 1; k-- {
		res := dc.ResolveSource(names[:k])
		if res == nil {
			continue
		}
		rc.classifySourcePrefix(entries[:k], res, dc)
		entries[k].SetOrigin(&SourceColumnsOrigin{Source: res, Context: dc})

		col := rc.findSourceColumn(dc, res, names[k])
		if col == nil {
			entries[k].Symbol().SetClass(ClassError)
			rc.appendError(entries[k].Span(), "column %s not known in %s", entries[k].Raw(), rawDotted(entries[:k]))
			return m
		}
		entries[k].SetDefinition(&ColumnDefinition{Column: col})

		cur := col.Type
		for i := k + 1; i < n; i++ {
			entries[i].SetOrigin(&TypeMemberOrigin{Type: cur})
			cur = rc.resolveTypeMember(entries[i], cur)
			if cur == UnknownType {
				break
			}
		}
		if k+1 == n {
			m.Column = col
		}
		m.typ = cur
		return m
	}

	for _, e := range entries {
		e.Symbol().SetClass(ClassError)
	}
	rc.appendError(cr.Span, "unable to resolve %s", rawDotted(entries))
	return m
}

// classifySourcePrefix classifies the parts of a name that resolved to a
// rows source, copying definitions from the query structure.
func (rc *recognition) classifySourcePrefix(entries []*SymbolEntry, res *SourceResolution, dc DataContext) {
	if res.Table != nil {
		rc.classifyEntityParts(entries, res.Table, dc)
		return
	}
	last := entries[len(entries)-1]
	if res.Alias != nil && res.Alias.Definition() != nil {
		last.SetDefinition(res.Alias.Definition())
		return
	}
	if res.IsCTE {
		last.Symbol().SetClass(ClassTable)
	} else {
		last.Symbol().SetClass(ClassTableAlias)
	}
}

// findSourceColumn finds a named column of one resolved source, falling
// back to the source's table metadata when the column is not in the visible
// tuple.
func (rc *recognition) findSourceColumn(dc DataContext, res *SourceResolution, name string) *ResultColumn {
	for _, col := range dc.Columns() {
		if col.Source == res.Source && col.Symbol != nil && col.Symbol.Name() == name {
			return col
		}
	}
	if res.Table == nil {
		return nil
	}
	attrs, err := res.Table.Attributes(rc.ctx)
	if err != nil {
		rc.downgrade(token.Span{}, err)
		return nil
	}
	for _, attr := range attrs {
		if rc.d.EqualNames(attr.Name, name) {
			return rc.columnOfAttr(res.Table, attr, res.Source)
		}
	}
	return nil
}

// resolveTupleRef resolves a qualified asterisk and expands the source's
// tuple. An unresolvable prefix is a hard error.
func (rc *recognition) resolveTupleRef(e *ast.TupleRef, dc DataContext) *TupleRefModel {
	m := &TupleRefModel{Table: e.Table}
	rc.initValue(&m.valueNode, e.Span, dc, UnknownType)
	for _, part := range e.Table.Parts {
		m.Entries = append(m.Entries, rc.makeEntry(part))
	}
	if len(m.Entries) == 0 {
		return m
	}
	m.Entries[0].SetOrigin(&RowsSourceRefOrigin{Context: dc})

	names := make([]string, len(m.Entries))
	for i, en := range m.Entries {
		names[i] = en.Name()
	}
	res := dc.ResolveSource(names)
	if res == nil {
		for _, en := range m.Entries {
			en.Symbol().SetClass(ClassError)
		}
		rc.appendError(e.Span, "unable to resolve %s", rawDotted(m.Entries))
		return m
	}
	rc.classifySourcePrefix(m.Entries, res, dc)
	m.Resolution = res

	for _, col := range dc.Columns() {
		if col.Source == res.Source {
			m.Columns = append(m.Columns, col)
		}
	}
	if len(m.Columns) == 0 && res.Table != nil {
		attrs, err := res.Table.Attributes(rc.ctx)
		if err != nil {
			rc.downgrade(e.Span, err)
			return m
		}
		for _, attr := range attrs {
			m.Columns = append(m.Columns, rc.columnOfAttr(res.Table, attr, res.Source))
		}
	}
	return m
}
