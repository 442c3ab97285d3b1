package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/coconutick512/bot-for-crypt/internal/models"
)

// Adapter is the per-network contract against an external data source.
// Implementations translate one provider's wire format into the canonical
// types; provider error bodies never leak past this boundary.
type Adapter interface {
	// Network returns the chain family this adapter serves
	Network() models.Network

	// FetchBalance returns the current holding of symbol at address. An
	// address with no account or position for the asset yields zero, not
	// an error. A symbol unknown to the asset catalog for this network
	// fails with UNSUPPORTED_TOKEN.
	FetchBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error)

	// FetchIncomingTransfers returns the most recent transfer events the
	// provider exposes for address, bounded by provider-side pagination.
	// A well-formed empty result set is a successful empty batch.
	FetchIncomingTransfers(ctx context.Context, address string) ([]models.RawTransfer, error)
}
