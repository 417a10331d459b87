package types

import "errors"

// Policy errors are terminal for a transaction and never retried by the pool.
var (
	ErrUnauthorized                   = errors.New("not authorized to perform this action")
	ErrExtDataHashMismatch            = errors.New("external data hash does not match the one in the proof")
	ErrUnknownRoot                    = errors.New("root is not known in the tree")
	ErrInvalidPublicAmountData        = errors.New("public amount is invalid")
	ErrInsufficientFundsForWithdrawal = errors.New("insufficient funds for withdrawal")
	ErrInvalidProof                   = errors.New("proof is invalid")
	ErrInvalidExtAmount               = errors.New("invalid external amount")
	ErrArithmeticOverflow             = errors.New("arithmetic overflow or underflow")
	ErrDepositLimitExceeded           = errors.New("deposit amount exceeds the deposit limit")
	ErrInvalidFeeRate                 = errors.New("invalid fee rate: must be between 0 and 10000 basis points")
	ErrInvalidFeeAmount               = errors.New("fee amount is below the minimum required")
	ErrMerkleTreeFull                 = errors.New("merkle tree is full: cannot add more leaves")
	ErrInvalidSwapData                = errors.New("invalid swap routing data")
	ErrMathOverflow                   = errors.New("math overflow in swap output")
	ErrInsufficientSwapOutput         = errors.New("swap output is below the declared minimum")
	ErrInvalidTreeParams              = errors.New("invalid tree parameters")
	ErrAlreadyInitialized             = errors.New("pool is already initialized")
	ErrNotInitialized                 = errors.New("pool is not initialized")
)
