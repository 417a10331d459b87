package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type LevelDB struct {
	db *leveldb.DB
}

func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db: db}, nil
}

func NewMemLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Begin() (Txn, error) {
	tr, err := l.db.OpenTransaction()
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	return &levelTxn{tr: tr}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, errors.Wrap(err, "get")
}

func (l *LevelDB) Close() error {
	return errors.Wrap(l.db.Close(), "close")
}

var _ Store = (*LevelDB)(nil)

type levelTxn struct {
	tr *leveldb.Transaction
}

func (t *levelTxn) Get(key []byte) ([]byte, error) {
	v, err := t.tr.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, errors.Wrap(err, "get")
}

func (t *levelTxn) Put(key, value []byte) error {
	return errors.Wrap(t.tr.Put(key, value, nil), "put")
}

// CreateIfAbsent relies on the transaction being the only writer.
func (t *levelTxn) CreateIfAbsent(key, value []byte) error {
	ok, err := t.tr.Has(key, nil)
	if err != nil {
		return errors.Wrap(err, "create")
	}
	if ok {
		return ErrAlreadyExists
	}
	return errors.Wrap(t.tr.Put(key, value, nil), "create")
}

func (t *levelTxn) Commit() error {
	return errors.Wrap(t.tr.Commit(), "commit")
}

func (t *levelTxn) Discard() {
	t.tr.Discard()
}
