package crypto

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/zkpool/zk-pool/types"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	epkSize       = 32
	keyStreamSize = chacha20poly1305.KeySize + chacha20poly1305.NonceSize
)

// SealNote encrypts note to recipient under a fresh ephemeral key.
// The result is epk || ciphertext.
func SealNote(note *types.OutputNote, recipient *eddsa.PublicKey) ([]byte, error) {
	eph, err := NewKey()
	if err != nil {
		return nil, err
	}
	key, nonce, err := noteKey(eph, recipient)
	if err != nil {
		return nil, err
	}
	epk := eph.PublicKey.Bytes()
	ct, err := EncryptNote(key, nonce, note.Bytes(), epk)
	if err != nil {
		return nil, err
	}
	return append(epk, ct...), nil
}

// OpenNote decrypts a sealed note with the receiving key. It fails for notes
// sealed to any other key.
func OpenNote(sealed []byte, privateKey *eddsa.PrivateKey) (*types.OutputNote, error) {
	if len(sealed) < epkSize+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("sealed note too short: %d bytes", len(sealed))
	}
	var epk eddsa.PublicKey
	if _, err := epk.SetBytes(sealed[:epkSize]); err != nil {
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}
	key, nonce, err := noteKey(privateKey, &epk)
	if err != nil {
		return nil, err
	}
	pt, err := DecryptNote(key, nonce, sealed[epkSize:], sealed[:epkSize])
	if err != nil {
		return nil, err
	}
	return types.DecodeOutputNote(pt)
}

func noteKey(privateKey *eddsa.PrivateKey, publicKey *eddsa.PublicKey) ([]byte, []byte, error) {
	shared, err := ECDHEComputeSharedSecret(privateKey, publicKey)
	if err != nil {
		return nil, nil, err
	}
	ks, err := DeriveKeyStream(shared, keyStreamSize)
	if err != nil {
		return nil, nil, err
	}
	return ks[:chacha20poly1305.KeySize], ks[chacha20poly1305.KeySize:], nil
}

// EncodePayload packs sealed notes into the opaque encrypted output of a
// transaction.
func EncodePayload(sealed ...[]byte) ([]byte, error) {
	return rlp.EncodeToBytes(sealed)
}

func DecodePayload(payload []byte) ([][]byte, error) {
	var sealed [][]byte
	if err := rlp.DecodeBytes(payload, &sealed); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return sealed, nil
}
