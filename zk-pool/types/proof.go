package types

const (
	ProofASize = 64
	ProofBSize = 128
	ProofCSize = 64
)

// Proof carries the Groth16 proof points and every public input that is
// supplied by the client. The mint identifiers are taken from the context.
type Proof struct {
	A [ProofASize]byte
	B [ProofBSize]byte
	C [ProofCSize]byte

	Root              [32]byte
	PublicAmount0     [32]byte
	PublicAmount1     [32]byte
	ExtDataHash       [32]byte
	InputNullifiers   [2][32]byte
	OutputCommitments [2][32]byte
}
