package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// IsValidEVMAddress checks if a string is a valid EVM-style hex address
func IsValidEVMAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeEVMAddress canonicalizes an EVM address to its EIP-55
// checksummed form with 0x prefix
func NormalizeEVMAddress(address string) string {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		address = "0x" + address
	}
	return common.HexToAddress(address).Hex()
}

// IsValidTronAddress checks that a string decodes as a base58 TRON address.
// Mainnet addresses are 25 bytes after base58check decode and start with 0x41.
func IsValidTronAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(raw) == 25 && raw[0] == 0x41
}

// IsValidSolanaAddress checks that a string decodes as a 32-byte base58 key,
// which covers both owner addresses and token mints.
func IsValidSolanaAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(raw) == 32
}

// EqualAddress compares two addresses case-insensitively. None of the three
// supported networks treats letter case as identity-significant in practice,
// so the ledger matches destinations this way.
func EqualAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
