package finder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/tablefinder/tablek"
)

// TableElementFinder finds elements of html tables
type TableElementFinder struct {
	elements tablek.ElementFinder
	suffixes map[suffixKey][]string
	recorder tablek.LookupRecorder
}

// Option for the TableElementFinder
type Option func(f *TableElementFinder)

// WithRecorder journals every lookup to recorder
func WithRecorder(recorder tablek.LookupRecorder) Option {
	return func(f *TableElementFinder) {
		f.recorder = recorder
	}
}

// New table element finder querying elements
func New(elements tablek.ElementFinder, opts ...Option) *TableElementFinder {
	f := &TableElementFinder{
		elements: elements,
		suffixes: locatorSuffixes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find the table itself
func (f *TableElementFinder) Find(ctx context.Context, locator string) (tablek.Element, error) {
	return f.lookup(ctx, locator, tablek.Default, "", tablek.NoContent)
}

// FindByContent finds any element in the table containing content
func (f *TableElementFinder) FindByContent(ctx context.Context, locator, content string) (tablek.Element, error) {
	return f.lookup(ctx, locator, tablek.InTable, "", tablek.Contains(content))
}

// FindByHeader finds a header cell
func (f *TableElementFinder) FindByHeader(ctx context.Context, locator string, content tablek.Content) (tablek.Element, error) {
	return f.lookup(ctx, locator, tablek.Header, "", content)
}

// FindByFooter finds a footer cell
func (f *TableElementFinder) FindByFooter(ctx context.Context, locator string, content tablek.Content) (tablek.Element, error) {
	return f.lookup(ctx, locator, tablek.Footer, "", content)
}

// FindByRow finds an element in the 1-based row, a leading - counts from the last row
func (f *TableElementFinder) FindByRow(ctx context.Context, locator, row string, content tablek.Content) (tablek.Element, error) {
	intent, index := signedIndex(row, tablek.Row, tablek.LastRow)
	return f.lookup(ctx, locator, intent, index, content)
}

// FindByCol finds a cell in the 1-based column, a leading - counts from the last column
func (f *TableElementFinder) FindByCol(ctx context.Context, locator, col string, content tablek.Content) (tablek.Element, error) {
	intent, index := signedIndex(col, tablek.Col, tablek.LastCol)
	return f.lookup(ctx, locator, intent, index, content)
}

// signedIndex strips a leading - and switches to the counting-from-the-end intent
func signedIndex(index string, forward, backward tablek.Intent) (tablek.Intent, string) {
	if strings.HasPrefix(index, "-") {
		return backward, index[1:]
	}
	return forward, index
}

// Candidates returns the selectors tried, in order, for locator and intent. index is ignored
// for intents that are not indexed. Panics with ErrConfigurationDefect if the suffix table has
// no entry for the pair.
func (f *TableElementFinder) Candidates(locator string, intent tablek.Intent, index string) []string {
	table := ParseTableLocator(locator)
	suffixes, ok := f.suffixes[suffixKey{table.Engine, intent}]
	if !ok {
		panic(errors.Wrapf(tablek.ErrConfigurationDefect, "no suffixes for (%s, %s)", table.Engine, intent))
	}

	candidates := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		if intent.Indexed() {
			suffix = fmt.Sprintf(suffix, index)
		}
		candidates[i] = table.Base + suffix
	}
	return candidates
}

func (f *TableElementFinder) lookup(ctx context.Context, locator string, intent tablek.Intent, index string, content tablek.Content) (tablek.Element, error) {
	candidates := f.Candidates(locator, intent, index)
	log.Ctx(ctx).Debug().Str("locator", locator).Str("intent", intent.String()).Strs("candidates", candidates).Msg("resolved table locator")

	ele, matched, err := f.search(ctx, candidates, content)
	if f.recorder != nil {
		f.record(ctx, locator, intent, index, content, candidates, ele, matched, err)
	}
	return ele, err
}

// search tries each candidate in order and returns the first element satisfying content, the
// candidate it came from, or a nil element if none did.
func (f *TableElementFinder) search(ctx context.Context, candidates []string, content tablek.Content) (tablek.Element, string, error) {
	_, filtered := content.Text()
	for _, candidate := range candidates {
		elements, err := f.elements.Find(ctx, candidate, false, false)
		if err != nil {
			return nil, "", errors.Wrapf(err, "searching %s", candidate)
		}

		for _, ele := range elements {
			if !filtered {
				return ele, candidate, nil
			}
			text, err := ele.Text()
			if err != nil {
				return nil, "", errors.Wrapf(err, "reading text of %s", candidate)
			}
			if content.Matches(text) {
				return ele, candidate, nil
			}
		}
	}
	return nil, "", nil
}

func (f *TableElementFinder) record(ctx context.Context, locator string, intent tablek.Intent, index string, content tablek.Content, candidates []string, ele tablek.Element, matched string, err error) {
	text, hasContent := content.Text()
	rec := &tablek.LookupRecord{
		Time:       time.Now(),
		Locator:    locator,
		Intent:     intent,
		Index:      index,
		Content:    text,
		HasContent: hasContent,
		Candidates: candidates,
		Matched:    matched,
		Found:      ele != nil,
	}
	if err != nil {
		rec.Err = err.Error()
	}
	if ele != nil {
		text, textErr := ele.Text()
		if textErr != nil {
			// the lookup already succeeded, only the journal loses the text
			log.Ctx(ctx).Debug().Err(textErr).Str("locator", locator).Msg("failed to read text for journal")
			if rec.Err == "" {
				rec.Err = "reading text: " + textErr.Error()
			}
		}
		rec.Text = text
	}

	if err := f.recorder.Record(ctx, rec); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("locator", locator).Msg("failed to record lookup")
	}
}
