package store

import (
	"context"
	"os"
	"reflect"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/tablefinder/tablek"
)

// GraphField is a struct field persisted under its graph tag
type GraphField struct {
	index int
	name  string
}

// LookupStore journals table lookups in badger
type LookupStore struct {
	Store      *badger.DB
	filepath   string
	predicates []*GraphField
}

// NewLookupStore keeping its files under filepath
func NewLookupStore(filepath string) *LookupStore {
	return &LookupStore{filepath: filepath}
}

// Init opens the store, truncating a value log left corrupt by a crash
func (s *LookupStore) Init() error {
	var err error

	if err = os.MkdirAll(s.filepath, 0700); err != nil {
		return err
	}

	opts := badger.DefaultOptions(s.filepath)
	opts.Logger = &badgerLogger{}
	s.Store, err = badger.Open(opts)
	if errors.Is(err, badger.ErrTruncateNeeded) {
		log.Warn().Str("path", s.filepath).Msg("value log truncated, recovering")
		opts.Truncate = true
		s.Store, err = badger.Open(opts)
	}
	if err != nil {
		return errors.Wrapf(err, "opening lookup store %s", s.filepath)
	}

	s.predicates = discoverPredicates(&tablek.LookupRecord{})
	return nil
}

func discoverPredicates(f interface{}) []*GraphField {
	predicates := make([]*GraphField, 0)
	rt := reflect.TypeOf(f).Elem()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		fname := f.Tag.Get("graph")
		if fname != "" {
			predicates = append(predicates, &GraphField{
				index: i,
				name:  fname,
			})
		}
	}
	return predicates
}

// Record a lookup, assigning an ID and time when unset
func (s *LookupStore) Record(ctx context.Context, rec *tablek.LookupRecord) error {
	if len(rec.ID) == 0 {
		rec.ID = []byte(uuid.NewV4().String())
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	err := s.Store.Update(func(txn *badger.Txn) error {
		rv := reflect.ValueOf(*rec)
		for _, pred := range s.predicates {
			bytez, err := Encode(rv, pred.index)
			if err != nil {
				return errors.Wrapf(err, "encoding %s", pred.name)
			}
			// key = <predicate>:<id>, value = msgpack'd bytes
			if err := txn.Set(MakeKey(rec.ID, pred.name), bytez); err != nil {
				return err
			}
		}
		return txn.Set(MakeTimeKey(rec.ID, rec.Time), []byte{})
	})
	if err != nil {
		return err
	}

	log.Ctx(ctx).Debug().Str("id", string(rec.ID)).Str("locator", rec.Locator).Msg("lookup recorded")
	return nil
}

// Get the lookup recorded under id
func (s *LookupStore) Get(id []byte) (*tablek.LookupRecord, error) {
	rec := &tablek.LookupRecord{}
	err := s.Store.View(func(txn *badger.Txn) error {
		return DecodeRecord(txn, s.predicates, id, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Recent lookups, newest first
func (s *LookupStore) Recent(limit int) ([]*tablek.LookupRecord, error) {
	// make sure limit is sane
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	records := make([]*tablek.LookupRecord, 0)
	err := s.Store.View(func(txn *badger.Txn) error {
		ids := TimeIterator(txn, limit)
		for _, id := range ids {
			rec := &tablek.LookupRecord{}
			if err := DecodeRecord(txn, s.predicates, id, rec); err != nil {
				return errors.Wrapf(err, "lookup %s", string(id))
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// Close the store
func (s *LookupStore) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// TimeIterator returns up to limit ids from the time index, newest first
func TimeIterator(txn *badger.Txn, limit int) [][]byte {
	ids := make([][]byte, 0, limit)
	prefix := MakeKey(nil, timePrefix)

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(append(MakeKey(nil, timePrefix), 0xff)); it.ValidForPrefix(prefix); it.Next() {
		if len(ids) == limit {
			break
		}
		ids = append(ids, GetTimeKeyID(it.Item().KeyCopy(nil)))
	}
	return ids
}

// badgerLogger routes badger's own logging through zerolog
type badgerLogger struct{}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	log.Error().Str("component", "badger").Msgf(f, v...)
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	log.Warn().Str("component", "badger").Msgf(f, v...)
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	log.Debug().Str("component", "badger").Msgf(f, v...)
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	log.Trace().Str("component", "badger").Msgf(f, v...)
}
