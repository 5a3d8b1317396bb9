package finder

import (
	"context"

	"gitlab.com/tablefinder/tablek"
)

// Query is a lookup described as data. Index is signed for Row and Col, as in FindByRow and
// FindByCol, and ignored otherwise.
type Query struct {
	Locator string
	Intent  tablek.Intent
	Index   string
	Content tablek.Content
}

func (q Query) resolve() (tablek.Intent, string) {
	switch q.Intent {
	case tablek.Row:
		return signedIndex(q.Index, tablek.Row, tablek.LastRow)
	case tablek.Col:
		return signedIndex(q.Index, tablek.Col, tablek.LastCol)
	}
	return q.Intent, q.Index
}

// QueryCandidates returns the selectors Query would try, in order
func (f *TableElementFinder) QueryCandidates(q Query) []string {
	intent, index := q.resolve()
	return f.Candidates(q.Locator, intent, index)
}

// Query runs q, returning nil when no candidate matched
func (f *TableElementFinder) Query(ctx context.Context, q Query) (tablek.Element, error) {
	intent, index := q.resolve()
	return f.lookup(ctx, q.Locator, intent, index, q.Content)
}
