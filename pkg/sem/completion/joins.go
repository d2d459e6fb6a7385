package completion

import (
	"context"
	"fmt"

	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/sem"
)

// joinConditions proposes complete "a.col = b.col" conditions from the
// single-column foreign keys between the join's right side and the sources
// already in scope. Association lookups are cached per request. The typed
// prefix filters against either side's column name, not the rendered
// condition, so "ON dep" still surfaces conditions over dept_id.
func (e *Engine) joinConditions(ctx context.Context, model *sem.QueryModel, lc *sem.LexicalContext, offset int, prefix string) []Proposal {
	join := innermostJoin(model.Statement(), offset)
	if join == nil || join.Right == nil || lc.Context == nil {
		return nil
	}
	rightInfo := sem.KnownSources(join.Right.ResultContext())
	allInfo := sem.KnownSources(lc.Context)

	cache := make(map[catalog.Entity][]*catalog.ForeignKey)
	var out []Proposal
	for _, right := range rightInfo.Resolutions {
		if right.Table == nil {
			continue
		}
		for _, other := range allInfo.Resolutions {
			if other.Table == nil || other.Source == right.Source {
				continue
			}
			for _, fk := range e.foreignKeys(ctx, cache, right.Table) {
				out = append(out, e.fkProposals(fk, right, other, prefix)...)
			}
		}
	}
	return out
}

// foreignKeys returns both directions of a table's foreign keys, cached.
func (e *Engine) foreignKeys(ctx context.Context, cache map[catalog.Entity][]*catalog.ForeignKey, table catalog.Entity) []*catalog.ForeignKey {
	if fks, ok := cache[table]; ok {
		return fks
	}
	var fks []*catalog.ForeignKey
	assocs, err := table.Associations(ctx)
	if err == nil {
		fks = append(fks, assocs...)
	}
	refs, err := table.References(ctx)
	if err == nil {
		fks = append(fks, refs...)
	}
	cache[table] = fks
	return fks
}

// fkProposals renders a single-column foreign key linking the two
// resolutions, in either direction. The proposal's score is the better of
// the two side columns matched against the prefix.
func (e *Engine) fkProposals(fk *catalog.ForeignKey, right, other *sem.SourceResolution, prefix string) []Proposal {
	if len(fk.FromColumns) != 1 || len(fk.ToColumns) != 1 {
		return nil
	}
	var text string
	switch {
	case fk.From == right.Table && fk.To == other.Table:
		text = fmt.Sprintf("%s.%s = %s.%s",
			qualifier(right), fk.FromColumns[0], qualifier(other), fk.ToColumns[0])
	case fk.To == right.Table && fk.From == other.Table:
		text = fmt.Sprintf("%s.%s = %s.%s",
			qualifier(right), fk.ToColumns[0], qualifier(other), fk.FromColumns[0])
	default:
		return nil
	}
	score := matchScore(prefix, fk.FromColumns[0], e.SearchInsideWords)
	if s := matchScore(prefix, fk.ToColumns[0], e.SearchInsideWords); s > score {
		score = s
	}
	if score <= 0 {
		return nil
	}
	return []Proposal{{Text: text, Kind: KindJoinCondition, Score: score, Description: fk.Name}}
}

func qualifier(res *sem.SourceResolution) string {
	if res.Alias != nil {
		return res.Alias.Name()
	}
	if res.Table != nil {
		return res.Table.Name()
	}
	return ""
}

// innermostJoin walks the model tree to the deepest join whose span
// contains the offset. A join at the tail of the text still owns trailing
// offsets, so a condition being typed past the last token counts.
func innermostJoin(node sem.ModelNode, offset int) *sem.JoinModel {
	if node == nil {
		return nil
	}
	var best *sem.JoinModel
	if jm, ok := node.(*sem.JoinModel); ok {
		if jm.Span().Contains(offset) || offset >= jm.Span().End.Offset {
			best = jm
		}
	}
	for _, child := range node.Children() {
		if deep := innermostJoin(child, offset); deep != nil {
			best = deep
		}
	}
	return best
}
