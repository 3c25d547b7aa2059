package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"rental-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 100

// update runs fn in a read-write transaction and replays it when badger
// reports a serializable conflict. fn must be free of side effects outside txn.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", errors.ErrStorageConflict, err)
}

// keyPart hex-encodes a caller supplied id so it can never contain the ':'
// separator and one id is never a key prefix of another.
func keyPart(id string) string {
	return hex.EncodeToString([]byte(id))
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(key), data)
}

// scan walks every key under prefix, newest first when reverse is set.
// Returning false from fn stops the walk.
func scan(txn *badger.Txn, prefix string, reverse bool, fn func(item *badger.Item) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := []byte(prefix)
	if reverse {
		seek = append([]byte(prefix), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
		next, err := fn(it.Item())
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	return nil
}

func decode(item *badger.Item, v any) error {
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
