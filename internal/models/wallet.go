package models

import (
	"fmt"
	"strings"
)

// Network identifies one of the supported chain families
type Network string

const (
	NetworkEVM    Network = "EVM"
	NetworkTron   Network = "TRON"
	NetworkSolana Network = "SOLANA"
)

// ParseNetwork parses a network name, accepting the legacy aliases the
// wallet registry still stores (ERC20, TRC20, SOL).
func ParseNetwork(s string) (Network, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EVM", "ERC20", "ETH":
		return NetworkEVM, nil
	case "TRON", "TRC20":
		return NetworkTron, nil
	case "SOLANA", "SOL":
		return NetworkSolana, nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// Wallet is a tracked address owned by the wallet registry. The sync
// subsystem only reads wallets, it never creates or deletes them.
type Wallet struct {
	ID      int64   `json:"id" db:"id"`
	Network Network `json:"network" db:"network"`
	Address string  `json:"address" db:"address"`
	Label   string  `json:"label" db:"label"`
	Active  bool    `json:"is_active" db:"is_active"`
}
