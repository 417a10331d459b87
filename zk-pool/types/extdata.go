package types

// ExtDataMinified is the wire form of the auxiliary data. Addresses are
// restored from the transaction context before hashing.
type ExtDataMinified struct {
	ExtAmount int64
	Fee       uint64
}

type SwapExtDataMinified struct {
	ExtAmount       int64
	ExtMinAmountOut int64
	Fee             uint64
}

// ExtData is the complete auxiliary data of a deposit or withdrawal.
// Field order defines the serialized layout that the proof binds to.
type ExtData struct {
	Recipient       Identity
	ExtAmount       int64
	EncryptedOutput []byte
	Fee             uint64
	FeeRecipient    Identity
	MintA           Identity
	MintB           Identity
}

// SwapExtData is the complete auxiliary data of a swap. Field order defines
// the serialized layout that the proof binds to.
type SwapExtData struct {
	ExtAmount       int64
	ExtMinAmountOut int64
	EncryptedOutput []byte
	Fee             uint64
	FeeRecipient    Identity
	MintA           Identity
	MintB           Identity
}

func NewExtData(min ExtDataMinified, recipient, feeRecipient, mint Identity, encryptedOutput []byte) *ExtData {
	return &ExtData{
		Recipient:       recipient,
		ExtAmount:       min.ExtAmount,
		EncryptedOutput: encryptedOutput,
		Fee:             min.Fee,
		FeeRecipient:    feeRecipient,
		MintA:           mint,
		MintB:           mint,
	}
}

func NewSwapExtData(min SwapExtDataMinified, feeRecipient, inputMint, outputMint Identity, encryptedOutput []byte) *SwapExtData {
	return &SwapExtData{
		ExtAmount:       min.ExtAmount,
		ExtMinAmountOut: min.ExtMinAmountOut,
		EncryptedOutput: encryptedOutput,
		Fee:             min.Fee,
		FeeRecipient:    feeRecipient,
		MintA:           inputMint,
		MintB:           outputMint,
	}
}
