package verifier_test

import (
	"testing"

	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/stretchr/testify/require"
)

func proofFromBytes(t *testing.T, p *types.Proof) *groth16_bn254.Proof {
	var out groth16_bn254.Proof
	_, err := out.Ar.SetBytes(p.A[:])
	require.NoError(t, err)
	_, err = out.Bs.SetBytes(p.B[:])
	require.NoError(t, err)
	_, err = out.Krs.SetBytes(p.C[:])
	require.NoError(t, err)
	return &out
}
