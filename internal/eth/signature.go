package eth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

var ErrInvalidSignature = errors.New("invalid signature")

// NormalizeAddress is the canonical form used for every address key and comparison.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// RecoverPersonalSigner returns the normalized address that signed message
// with personal_sign (EIP-191 "\x19Ethereum Signed Message:\n" prefix).
// Both the 27/28 and 0/1 recovery id conventions are accepted.
func RecoverPersonalSigner(message, signature string) (string, error) {
	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", ErrInvalidSignature)
	}
	if len(sig) != signatureLength {
		return "", fmt.Errorf("signature must be %d bytes: %w", signatureLength, ErrInvalidSignature)
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return "", fmt.Errorf("bad recovery id %d: %w", sig[64], ErrInvalidSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("recover pubkey: %w", ErrInvalidSignature)
	}
	return NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// VerifyPersonalSignature checks that address signed message.
func VerifyPersonalSignature(message, signature, address string) error {
	recovered, err := RecoverPersonalSigner(message, signature)
	if err != nil {
		return err
	}
	if recovered != NormalizeAddress(address) {
		return ErrInvalidSignature
	}
	return nil
}

// IsAddress reports whether s is a 20-byte hex address, with or without 0x.
func IsAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// CanonicalAddress returns s as lowercase 0x-prefixed hex, the form decoded
// transfer events carry. ok is false when s is not a hex address.
func CanonicalAddress(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", false
	}
	return NormalizeAddress(common.HexToAddress(s).Hex()), true
}
