package wallet

import (
	"fmt"
	"os"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/holiman/uint256"
	"github.com/kysee/zkpool/zk-pool/crypto"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/rs/zerolog"
)

// EventSource lists commitment events from a leaf index on. The indexer is
// one.
type EventSource interface {
	Events(from uint64) []*types.CommitmentData
}

// OwnedNote is a note opened by the wallet. Position is the place of the
// sealed note inside the event payload. Spent is set by MarkSpent once the
// wallet has consumed the note in a transaction.
type OwnedNote struct {
	EventIndex uint64
	Position   int
	Note       *types.OutputNote
	Spent      bool
}

type Wallet struct {
	mtx        sync.RWMutex
	Address    string
	PrivateKey *eddsa.PrivateKey

	notes   []*OwnedNote
	scanned uint64
	log     zerolog.Logger
}

func NewWallet() (*Wallet, error) {
	prvk, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	return FromKey(prvk), nil
}

func FromKey(prvk *eddsa.PrivateKey) *Wallet {
	return &Wallet{
		Address:    types.EncodeAddress(prvk.PublicKey.Bytes()),
		PrivateKey: prvk,
		log:        walletLogger,
	}
}

func (w *Wallet) SetLogger(log zerolog.Logger) {
	w.log = log
}

// Sync opens every sealed note addressed to the wallet in events it has not
// seen yet and returns how many were found.
func (w *Wallet) Sync(src EventSource) (int, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	found := 0
	for _, cd := range src.Events(w.scanned) {
		sealed, err := crypto.DecodePayload(cd.EncryptedOutput)
		if err != nil {
			// not every payload carries sealed notes
			w.log.Debug().Uint64("index", cd.Index).Err(err).Msg("skip payload")
			w.scanned = cd.Index + 2
			continue
		}
		for pos, s := range sealed {
			note, err := crypto.OpenNote(s, w.PrivateKey)
			if err != nil {
				continue
			}
			w.notes = append(w.notes, &OwnedNote{EventIndex: cd.Index, Position: pos, Note: note})
			found++
		}
		w.scanned = cd.Index + 2
	}
	if found > 0 {
		w.log.Info().Str("address", w.Address).Int("notes", found).Msg("notes discovered")
	}
	return found, nil
}

// Notes returns copies of the notes found so far, spent ones included.
func (w *Wallet) Notes() []OwnedNote {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	out := make([]OwnedNote, len(w.notes))
	for i, n := range w.notes {
		out[i] = *n
	}
	return out
}

// Balance sums the unspent notes of one asset.
func (w *Wallet) Balance(mint types.Identity) *uint256.Int {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	ret := uint256.NewInt(0)
	for _, n := range w.notes {
		if !n.Spent && n.Note.Mint == mint && n.Note.Amount != nil {
			ret.Add(ret, n.Note.Amount)
		}
	}
	return ret
}

// MarkSpent flags the note found at position of the given event as spent.
// It reports whether such an unspent note was held.
func (w *Wallet) MarkSpent(eventIndex uint64, position int) bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	for _, n := range w.notes {
		if n.EventIndex == eventIndex && n.Position == position && !n.Spent {
			n.Spent = true
			return true
		}
	}
	return false
}

// SealTo encrypts note to the owner of a shielded address.
func SealTo(address string, note *types.OutputNote) ([]byte, error) {
	pub, err := PublicKeyOf(address)
	if err != nil {
		return nil, err
	}
	return crypto.SealNote(note, pub)
}

func PublicKeyOf(address string) (*eddsa.PublicKey, error) {
	bz, err := types.DecodeAddress(address)
	if err != nil {
		return nil, err
	}
	var pub eddsa.PublicKey
	if _, err := pub.SetBytes(bz); err != nil {
		return nil, fmt.Errorf("address %s: %w", address, err)
	}
	return &pub, nil
}

var walletLogger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
