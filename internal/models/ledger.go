package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one recorded inbound transfer. TxHash is globally unique
// across the whole store regardless of network, so a transfer is recorded
// exactly once no matter how many times synchronization runs.
type LedgerEntry struct {
	ID          int64           `json:"id" db:"id"`
	TxHash      string          `json:"tx_hash" db:"tx_hash"`
	WalletID    int64           `json:"wallet_id" db:"wallet_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	TokenSymbol string          `json:"token_symbol" db:"token_symbol"`
	FromAddress string          `json:"from_address" db:"from_address"`
	Timestamp   time.Time       `json:"tx_timestamp" db:"tx_timestamp"`
}

// RawTransfer is a provider-native transfer event before normalization.
// Amounts are integer strings in base units; Decimals is the precision the
// provider reported alongside the transfer, or negative when the provider
// does not carry precision per transfer.
type RawTransfer struct {
	TxHash      string    `json:"tx_hash"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Contract    string    `json:"contract"`
	RawAmount   string    `json:"raw_amount"`
	Decimals    int32     `json:"decimals"`
	Symbol      string    `json:"symbol"`
	Timestamp   time.Time `json:"timestamp"`
}

// DecimalsUnknown marks a RawTransfer whose provider did not report
// per-transfer precision; normalization falls back to the asset catalog.
const DecimalsUnknown int32 = -1

// Report is the date-ranged summary served to the reporting interface.
// TotalAmount is a plain sum: all three networks report amounts already
// denominated in their stablecoin units, so no conversion is applied.
type Report struct {
	WalletID    int64           `json:"wallet_id"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Count       int             `json:"count"`
	Entries     []*LedgerEntry  `json:"transactions"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
