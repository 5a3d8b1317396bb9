package tablek

import (
	"context"
	"time"
)

// LookupRecord is the journal entry of a single table lookup
type LookupRecord struct {
	ID         []byte    `graph:"id"`
	Time       time.Time `graph:"time"`
	Locator    string    `graph:"locator"`
	Intent     Intent    `graph:"intent"`
	Index      string    `graph:"index"`
	Content    string    `graph:"content"`
	HasContent bool      `graph:"has_content"`
	Candidates []string  `graph:"candidates"`
	Matched    string    `graph:"matched"` // candidate that produced the element
	Found      bool      `graph:"found"`
	Text       string    `graph:"text"`
	Err        string    `graph:"err"`
}

// LookupRecorder persists lookups for later inspection
type LookupRecorder interface {
	Record(ctx context.Context, rec *LookupRecord) error
}
