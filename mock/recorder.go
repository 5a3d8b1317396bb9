package mock

import (
	"context"
	"sync"

	"gitlab.com/tablefinder/tablek"
)

// Recorder keeps lookup records in memory
type Recorder struct {
	lock    sync.Mutex
	records []*tablek.LookupRecord
	Err     error
}

func (r *Recorder) Record(ctx context.Context, rec *tablek.LookupRecord) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.records = append(r.records, rec)
	return nil
}

// Records recorded so far
func (r *Recorder) Records() []*tablek.LookupRecord {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]*tablek.LookupRecord(nil), r.records...)
}
