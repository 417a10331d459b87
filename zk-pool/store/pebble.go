package store

import (
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
)

type PebbleDB struct {
	db *pebble.DB
	mu sync.Mutex
}

func NewPebbleDB(path string) (*PebbleDB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble")
	}
	return &PebbleDB{db: db}, nil
}

func NewMemPebbleDB() (*PebbleDB, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble")
	}
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) Begin() (Txn, error) {
	p.mu.Lock()
	return &pebbleTxn{b: p.db.NewIndexedBatch(), unlock: p.mu.Unlock}, nil
}

func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	return pebbleGet(p.db.Get(key))
}

func (p *PebbleDB) Close() error {
	return errors.Wrap(p.db.Close(), "close")
}

var _ Store = (*PebbleDB)(nil)

func pebbleGet(v []byte, closer io.Closer, err error) ([]byte, error) {
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get")
	}
	out := append([]byte(nil), v...)
	if err := closer.Close(); err != nil {
		return nil, errors.Wrap(err, "get")
	}
	return out, nil
}

type pebbleTxn struct {
	b      *pebble.Batch
	unlock func()
	done   bool
}

func (t *pebbleTxn) Get(key []byte) ([]byte, error) {
	return pebbleGet(t.b.Get(key))
}

func (t *pebbleTxn) Put(key, value []byte) error {
	return errors.Wrap(t.b.Set(key, value, nil), "put")
}

func (t *pebbleTxn) CreateIfAbsent(key, value []byte) error {
	_, err := t.Get(key)
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return errors.Wrap(err, "create")
	}
	return errors.Wrap(t.b.Set(key, value, nil), "create")
}

func (t *pebbleTxn) Commit() error {
	if t.done {
		return errors.New("commit: transaction closed")
	}
	err := t.b.Commit(pebble.Sync)
	t.close()
	return errors.Wrap(err, "commit")
}

func (t *pebbleTxn) Discard() {
	if !t.done {
		t.close()
	}
}

func (t *pebbleTxn) close() {
	_ = t.b.Close()
	t.done = true
	t.unlock()
}
