package models

import "math/big"

// TransferEvent is an ERC-20 Transfer log read from the chain.
// Value is the raw integer amount, scaled by the token decimals.
type TransferEvent struct {
	From        string
	To          string
	Value       *big.Int
	TxHash      string
	BlockNumber uint64
}
