package store

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store is a key-value substrate that hands out exclusive write transactions.
// At most one Txn is open at a time; Begin blocks until the previous one is
// committed or discarded.
type Store interface {
	Begin() (Txn, error)
	Get(key []byte) ([]byte, error)
	Close() error
}

// Txn observes its own writes. Nothing is visible to other readers before
// Commit. Discard is a no-op after Commit.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// CreateIfAbsent writes value under key, or fails with ErrAlreadyExists.
	CreateIfAbsent(key, value []byte) error
	Commit() error
	Discard()
}

const (
	DriverLevelDB = "leveldb"
	DriverPebble  = "pebble"
	DriverMemory  = "memory"
)

// Open opens a store for the given driver. The memory driver ignores path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverLevelDB:
		return NewLevelDB(path)
	case DriverPebble:
		return NewPebbleDB(path)
	case DriverMemory:
		return NewMemLevelDB()
	default:
		return nil, fmt.Errorf("unknown store driver: %q", driver)
	}
}

var (
	treeStateKey    = []byte("merkle_tree")
	globalPolicyKey = []byte("global_config")
	nullifierPrefix = []byte("nullifier")
	eventPrefix     = []byte("event")
)

func TreeStateKey() []byte {
	return treeStateKey
}

func GlobalPolicyKey() []byte {
	return globalPolicyKey
}

// NullifierKey derives the storage slot of a nullifier record.
func NullifierKey(nullifier [32]byte) []byte {
	key := make([]byte, 0, len(nullifierPrefix)+len(nullifier))
	key = append(key, nullifierPrefix...)
	return append(key, nullifier[:]...)
}

// EventKey is the slot of the index-th event kept by an indexer. Keys sort in
// index order.
func EventKey(index uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], index)
	return key
}
