package sem

import (
	"context"
	"log/slog"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
)

// Analyzer builds query models from parsed statements. The zero value is
// not usable; Dialect and Catalog are required.
type Analyzer struct {
	Dialect *dialect.Dialect
	Catalog catalog.Catalog
	Logger  *slog.Logger
}

// Analyze resolves one statement in a single pass and returns its query
// model. Metadata failures and unresolved names never fail the analysis;
// they surface as diagnostics on the model. The error reports misuse only.
func (a *Analyzer) Analyze(ctx context.Context, stmt ast.Statement) (*QueryModel, error) {
	if a.Dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	if a.Catalog == nil {
		return nil, catalog.ErrCatalogRequired
	}

	root := NewRootContext(a.Dialect, a.Catalog)
	model := &QueryModel{given: root, result: root}
	if stmt == nil {
		return model, nil
	}

	rc := newRecognition(ctx, a.Dialect, a.Catalog, a.Logger)
	model.statement = rc.recognizeStatement(stmt, root)
	rc.closePendingJoinScopes(ScopeTail)

	model.scopes = rc.scopes
	model.entries = rc.entries
	model.diags = rc.diags
	if result := model.statement.ResultContext(); result != nil {
		model.result = result
	}
	return model, nil
}
