package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
)

const (
	// Key prefixes for different entity types. Ids are zero padded so that a
	// prefix scan returns records in id order.
	UserKeyPrefix    = "user:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

func userKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", UserKeyPrefix, id))
}

func postKey(userID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", PostKeyPrefix, userID, id))
}

func postsOfUserPrefix(userID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", PostKeyPrefix, userID))
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}

func commentsOfPostPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	id, err := currentID(txn, seqKey)
	if err != nil {
		return 0, err
	}
	id++
	return id, setID(txn, seqKey, id)
}

// bumpID raises the sequence so that explicitly numbered records are never
// handed out again.
func bumpID(txn *badger.Txn, seqKey string, id int) error {
	current, err := currentID(txn, seqKey)
	if err != nil {
		return err
	}
	if id <= current {
		return nil
	}
	return setID(txn, seqKey, id)
}

func currentID(txn *badger.Txn, seqKey string) (int, error) {
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		if len(val) != 4 {
			return fmt.Errorf("corrupt sequence %s", seqKey)
		}
		id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
		return nil
	})
	return id, err
}

func setID(txn *badger.Txn, seqKey string, id int) error {
	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return txn.Set([]byte(seqKey), idBytes)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// scan visits every record under prefix in key order until visit returns false.
func scan[T any](txn *badger.Txn, prefix []byte, visit func(key []byte, record *T) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var record T
		err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &record)
		})
		if err != nil {
			return err
		}
		if !visit(item.KeyCopy(nil), &record) {
			break
		}
	}
	return nil
}

// list collects every record under prefix.
func list[T any](db *badger.DB, prefix []byte) ([]*T, error) {
	records := []*T{}
	err := db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(_ []byte, record *T) bool {
			records = append(records, record)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// findKey returns the key of the record under prefix whose id matches.
func findKey[T any](txn *badger.Txn, prefix []byte, id int, idOf func(*T) int) ([]byte, *T, error) {
	var key []byte
	var found *T
	err := scan(txn, prefix, func(k []byte, record *T) bool {
		if idOf(record) == id {
			key, found = k, record
			return false
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if key == nil {
		return nil, nil, ErrNotFound
	}
	return key, found, nil
}
