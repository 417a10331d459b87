package store

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	ldb, err := NewMemLevelDB()
	require.NoError(t, err)
	pdb, err := NewMemPebbleDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ldb.Close()
		_ = pdb.Close()
	})
	return map[string]Store{DriverLevelDB: ldb, DriverPebble: pdb}
}

func TestTxn_CommitAndDiscard(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			txn, err := st.Begin()
			require.NoError(t, err)
			require.NoError(t, txn.Put([]byte("k1"), []byte("v1")))

			v, err := txn.Get([]byte("k1"))
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), v)

			_, err = st.Get([]byte("k1"))
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, txn.Commit())
			txn.Discard()

			v, err = st.Get([]byte("k1"))
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), v)

			txn, err = st.Begin()
			require.NoError(t, err)
			require.NoError(t, txn.Put([]byte("k2"), []byte("v2")))
			txn.Discard()

			_, err = st.Get([]byte("k2"))
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestTxn_CreateIfAbsent(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := NullifierKey([32]byte{1})

			txn, err := st.Begin()
			require.NoError(t, err)
			require.NoError(t, txn.CreateIfAbsent(key, []byte{1}))
			// a second creation inside the same transaction sees the first
			require.ErrorIs(t, txn.CreateIfAbsent(key, []byte{1}), ErrAlreadyExists)
			require.NoError(t, txn.Commit())

			txn, err = st.Begin()
			require.NoError(t, err)
			require.ErrorIs(t, txn.CreateIfAbsent(key, []byte{1}), ErrAlreadyExists)
			require.NoError(t, txn.CreateIfAbsent(NullifierKey([32]byte{2}), []byte{1}))
			txn.Discard()
		})
	}
}

func TestTxn_ConcurrentCreateHasOneWinner(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := NullifierKey([32]byte{7})
			var wins, collisions int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					txn, err := st.Begin()
					if err != nil {
						return
					}
					defer txn.Discard()
					if err := txn.CreateIfAbsent(key, []byte{1}); err != nil {
						if err == ErrAlreadyExists {
							atomic.AddInt32(&collisions, 1)
						}
						return
					}
					if txn.Commit() == nil {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			require.Equal(t, int32(1), wins)
			require.Equal(t, int32(15), collisions)
		})
	}
}

func TestOpen(t *testing.T) {
	st, err := Open(DriverMemory, "")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Open("bolt", "")
	require.Error(t, err)

	dir := t.TempDir()
	st, err = Open(DriverPebble, dir)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestNullifierKey(t *testing.T) {
	a := NullifierKey([32]byte{1})
	b := NullifierKey([32]byte{1})
	c := NullifierKey([32]byte{2})
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, len("nullifier")+32)
}
