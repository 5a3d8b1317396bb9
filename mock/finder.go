package mock

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/tablefinder/tablek"
)

// Query received by the ElementFinder
type Query struct {
	Locator   string
	FirstOnly bool
	Required  bool
}

// ElementFinder answers queries from canned results and keeps every query it was sent
type ElementFinder struct {
	lock     sync.Mutex
	elements map[string][]tablek.Element
	errs     map[string]error
	queries  []Query
}

// NewElementFinder with no results
func NewElementFinder() *ElementFinder {
	return &ElementFinder{
		elements: make(map[string][]tablek.Element),
		errs:     make(map[string]error),
		queries:  make([]Query, 0),
	}
}

// Add elements returned for locator
func (m *ElementFinder) Add(locator string, elements ...*Element) *ElementFinder {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, ele := range elements {
		m.elements[locator] = append(m.elements[locator], ele)
	}
	return m
}

// AddText adds one element per text for locator
func (m *ElementFinder) AddText(locator string, texts ...string) *ElementFinder {
	return m.Add(locator, MakeElements(texts...)...)
}

// Fail queries for locator with err
func (m *ElementFinder) Fail(locator string, err error) *ElementFinder {
	m.lock.Lock()
	m.errs[locator] = err
	m.lock.Unlock()
	return m
}

// Find implements tablek.ElementFinder
func (m *ElementFinder) Find(ctx context.Context, locator string, firstOnly, required bool) ([]tablek.Element, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.queries = append(m.queries, Query{Locator: locator, FirstOnly: firstOnly, Required: required})
	if err, ok := m.errs[locator]; ok {
		return nil, err
	}

	elements := m.elements[locator]
	if len(elements) == 0 && required {
		return nil, errors.Wrap(tablek.ErrElementNotFound, locator)
	}
	if firstOnly && len(elements) > 1 {
		elements = elements[:1]
	}
	return append([]tablek.Element(nil), elements...), nil
}

// Queries received so far
func (m *ElementFinder) Queries() []Query {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Query(nil), m.queries...)
}

// Locators queried so far, in order
func (m *ElementFinder) Locators() []string {
	queries := m.Queries()
	locators := make([]string, len(queries))
	for i, q := range queries {
		locators[i] = q.Locator
	}
	return locators
}
