package crypto

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"golang.org/x/crypto/blake2s"
)

// NewKey generates a receiving key on the BN254 twisted Edwards curve.
func NewKey() (*eddsa.PrivateKey, error) {
	return eddsa.GenerateKey(crand.Reader)
}

func scalarOf(privateKey *eddsa.PrivateKey) *big.Int {
	return new(big.Int).SetBytes(privateKey.Bytes()[32:64])
}

// ECDHEComputeSharedSecret returns blake2s(x(privateKey * otherPublicKey)).
func ECDHEComputeSharedSecret(privateKey *eddsa.PrivateKey, otherPublicKey *eddsa.PublicKey) ([]byte, error) {
	if !otherPublicKey.A.IsOnCurve() {
		return nil, errors.New("other public key is not on curve")
	}

	var sharedSecret tedwards.PointAffine
	sharedSecret.ScalarMultiplication(&otherPublicKey.A, scalarOf(privateKey))
	if !sharedSecret.IsOnCurve() {
		return nil, errors.New("computed shared secret is not on curve")
	}

	hasher, err := blake2s.New256(nil)
	if err != nil {
		return nil, err
	}
	ax := sharedSecret.X.Bytes()
	hasher.Write(ax[:])
	return hasher.Sum(nil), nil
}

var kdfKey = []byte("zkpool/note-kdf")

// DeriveKeyStream expands a 32 byte shared secret into outputLen bytes with
// keyed BLAKE2s over secret || counter, counter starting at 1.
func DeriveKeyStream(sharedSecret []byte, outputLen int) ([]byte, error) {
	if len(sharedSecret) != 32 {
		return nil, fmt.Errorf("sharedSecret must be 32 bytes")
	}

	var keyStream []byte
	var counter byte = 1
	for len(keyStream) < outputLen {
		h, err := blake2s.New256(kdfKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create blake2s hash: %w", err)
		}
		h.Write(sharedSecret)
		h.Write([]byte{counter})
		keyStream = append(keyStream, h.Sum(nil)...)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}
	return keyStream[:outputLen], nil
}
