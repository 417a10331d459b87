package indexer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kysee/zkpool/utils"
	"github.com/kysee/zkpool/zk-pool/merkle"
	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/rs/zerolog"
)

var (
	ErrCommitmentNotFound = errors.New("commitment not found")
	ErrOutOfOrder         = errors.New("event out of order")
	ErrRootMismatch       = errors.New("root mismatch")
)

// Path is the authentication path of one leaf. PathIndices[i] is 1 when the
// node at level i is a right child.
type Path struct {
	Index       uint64
	Leaf        [32]byte
	Siblings    [][32]byte
	PathIndices []uint8
	Root        [32]byte
}

func (p *Path) Verify() bool {
	return merkle.VerifyPath(p.Leaf, p.Index, p.Siblings, p.Root)
}

// Indexer mirrors every leaf of the pool tree from CommitmentData events and
// keeps the events for note scanning. Events are persisted to the store when
// one is given and replayed by New.
type Indexer struct {
	mtx    sync.RWMutex
	height uint8
	store  store.Store
	log    zerolog.Logger

	// nodes[0] are the leaves, nodes[height] holds the root once a leaf exists.
	nodes     [][][32]byte
	positions map[[32]byte]uint64
	events    []*types.CommitmentData
	lastErr   error
}

func New(st store.Store, height uint8, log zerolog.Logger) (*Indexer, error) {
	if height == 0 || height > types.MaxTreeHeight {
		return nil, fmt.Errorf("%w: height %d", types.ErrInvalidTreeParams, height)
	}
	idx := &Indexer{
		height:    height,
		store:     st,
		log:       log,
		nodes:     make([][][32]byte, int(height)+1),
		positions: make(map[[32]byte]uint64),
	}
	if st == nil {
		return idx, nil
	}

	for i := uint64(0); ; i += 2 {
		bz, err := st.Get(store.EventKey(i))
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		cd := &types.CommitmentData{}
		if err := cd.UnmarshalBinary(bz); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if err := idx.check(cd); err != nil {
			return nil, err
		}
		if err := idx.insert(cd); err != nil {
			return nil, err
		}
	}
	root := idx.Root()
	log.Info().Int("events", len(idx.events)).Hex("root", root[:]).Msg("indexer restored")
	return idx, nil
}

// Emit implements node.EventSink. A failed event is logged and kept as the
// error reported by Err.
func (idx *Indexer) Emit(cd *types.CommitmentData) {
	if err := idx.Apply(cd); err != nil {
		idx.log.Error().Err(err).Uint64("index", cd.Index).Msg("indexer rejected event")
		idx.mtx.Lock()
		idx.lastErr = err
		idx.mtx.Unlock()
	}
}

// Apply adds the two commitments of cd. cd.Index must be the next leaf index.
func (idx *Indexer) Apply(cd *types.CommitmentData) error {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	if err := idx.check(cd); err != nil {
		return err
	}
	if idx.store != nil {
		if err := idx.persist(cd); err != nil {
			return err
		}
	}
	return idx.insert(cd)
}

func (idx *Indexer) persist(cd *types.CommitmentData) error {
	bz, err := cd.MarshalBinary()
	if err != nil {
		return err
	}
	txn, err := idx.store.Begin()
	if err != nil {
		return err
	}
	defer txn.Discard()
	if err := txn.CreateIfAbsent(store.EventKey(cd.Index), bz); err != nil {
		return fmt.Errorf("event %d: %w", cd.Index, err)
	}
	return txn.Commit()
}

func (idx *Indexer) check(cd *types.CommitmentData) error {
	next := uint64(len(idx.nodes[0]))
	if cd.Index != next {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, cd.Index, next)
	}
	if next+2 > uint64(1)<<idx.height {
		return types.ErrMerkleTreeFull
	}
	if !utils.IsCanonical(cd.Commitment0[:]) || !utils.IsCanonical(cd.Commitment1[:]) {
		return fmt.Errorf("event %d: commitment is not a field element", cd.Index)
	}
	return nil
}

// insert requires a successful check.
func (idx *Indexer) insert(cd *types.CommitmentData) error {
	for _, c := range [][32]byte{cd.Commitment0, cd.Commitment1} {
		if err := idx.appendLeaf(c); err != nil {
			return err
		}
	}
	idx.events = append(idx.events, cd)
	return nil
}

func (idx *Indexer) appendLeaf(leaf [32]byte) error {
	pos := uint64(len(idx.nodes[0]))
	idx.nodes[0] = append(idx.nodes[0], leaf)

	i := pos
	for level := 0; level < int(idx.height); level++ {
		parent := i >> 1
		h, err := utils.PoseidonHash2(idx.node(level, parent<<1), idx.node(level, parent<<1|1))
		if err != nil {
			return err
		}
		if up := idx.nodes[level+1]; uint64(len(up)) == parent {
			idx.nodes[level+1] = append(up, h)
		} else {
			up[parent] = h
		}
		i = parent
	}
	if _, ok := idx.positions[leaf]; !ok {
		idx.positions[leaf] = pos
	}
	return nil
}

func (idx *Indexer) node(level int, i uint64) [32]byte {
	if i < uint64(len(idx.nodes[level])) {
		return idx.nodes[level][i]
	}
	return merkle.ZeroHash(level)
}

// Root returns the root over all mirrored leaves.
func (idx *Indexer) Root() [32]byte {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()
	return idx.node(int(idx.height), 0)
}

// CheckRoot compares the mirrored root with the pool's current root.
func (idx *Indexer) CheckRoot(ts *types.TreeState) error {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	if n := uint64(len(idx.nodes[0])); n != ts.NextIndex {
		return fmt.Errorf("%w: %d leaves mirrored, pool has %d", ErrRootMismatch, n, ts.NextIndex)
	}
	if root := idx.node(int(idx.height), 0); root != ts.Root {
		return fmt.Errorf("%w: %x != %x", ErrRootMismatch, root, ts.Root)
	}
	return nil
}

// Path returns the authentication path of the first leaf equal to commitment.
func (idx *Indexer) Path(commitment [32]byte) (*Path, error) {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	pos, ok := idx.positions[commitment]
	if !ok {
		return nil, ErrCommitmentNotFound
	}
	p := &Path{
		Index:       pos,
		Leaf:        commitment,
		Siblings:    make([][32]byte, idx.height),
		PathIndices: make([]uint8, idx.height),
		Root:        idx.node(int(idx.height), 0),
	}
	i := pos
	for level := 0; level < int(idx.height); level++ {
		p.Siblings[level] = idx.node(level, i^1)
		p.PathIndices[level] = uint8(i & 1)
		i >>= 1
	}
	return p, nil
}

// Events returns the events whose first leaf index is at least from.
func (idx *Indexer) Events(from uint64) []*types.CommitmentData {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	var out []*types.CommitmentData
	for _, cd := range idx.events {
		if cd.Index >= from {
			out = append(out, cd)
		}
	}
	return out
}

func (idx *Indexer) Len() uint64 {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()
	return uint64(len(idx.nodes[0]))
}

// Err returns the last error raised by Emit.
func (idx *Indexer) Err() error {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()
	return idx.lastErr
}
