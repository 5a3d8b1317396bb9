package store

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v4"
)

const timePrefix = "ts"

// MakeKey of a predicate and id
func MakeKey(id []byte, predicate string) []byte {
	key := []byte(predicate)
	key = append(key, byte(':'))
	key = append(key, id...)
	return key
}

// GetID of key from a pred:key
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:key
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// MakeTimeKey orders ids by when they were recorded: ts:<big endian unix nanos><id>
func MakeTimeKey(id []byte, t time.Time) []byte {
	var nanos [8]byte
	binary.BigEndian.PutUint64(nanos[:], uint64(t.UnixNano()))
	return MakeKey(append(nanos[:], id...), timePrefix)
}

// GetTimeKeyID returns the id part of a time key
func GetTimeKeyID(key []byte) []byte {
	start := len(timePrefix) + 1 + 8
	if len(key) < start {
		return []byte{}
	}
	return key[start:]
}

// Encode a struct reflect.Value denoted by index into a msgpack []byte slice
func Encode(val reflect.Value, index int) ([]byte, error) {
	return msgpack.Marshal(val.Field(index).Interface())
}

// Decode a msgpack value into the field denoted by index of the struct val points to
func Decode(val reflect.Value, index int, data []byte) error {
	field := val.Elem().Field(index)
	ptr := reflect.New(field.Type())
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return err
	}
	field.Set(ptr.Elem())
	return nil
}

// DecodeRecord reads every predicate of id into out, which must be a pointer to a struct
func DecodeRecord(txn *badger.Txn, predicates []*GraphField, id []byte, out interface{}) error {
	rv := reflect.ValueOf(out)
	for _, pred := range predicates {
		item, err := txn.Get(MakeKey(id, pred.name))
		if err != nil {
			return errors.Wrapf(err, "reading %s", pred.name)
		}

		err = item.Value(func(val []byte) error {
			return Decode(rv, pred.index, val)
		})
		if err != nil {
			return errors.Wrapf(err, "decoding %s", pred.name)
		}
	}
	return nil
}
