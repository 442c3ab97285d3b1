package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coconutick512/bot-for-crypt/internal/adapter"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// BalanceResolver answers live balance queries. A balance is an on-chain
// read independent of the ledger, so it never triggers synchronization.
type BalanceResolver struct {
	storage  storage.Storage
	registry *adapter.Registry
}

// NewBalanceResolver creates a new balance resolver
func NewBalanceResolver(store storage.Storage, registry *adapter.Registry) *BalanceResolver {
	return &BalanceResolver{
		storage:  store,
		registry: registry,
	}
}

// GetBalance returns the wallet's current holding of symbol
func (r *BalanceResolver) GetBalance(ctx context.Context, walletID int64, symbol string) (decimal.Decimal, error) {
	wallet, err := r.storage.GetWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	if wallet == nil || !wallet.Active {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeWalletNotFound,
			fmt.Sprintf("wallet %d not found or inactive", walletID))
	}

	networkAdapter, err := r.registry.Resolve(wallet.Network)
	if err != nil {
		return decimal.Zero, err
	}

	return networkAdapter.FetchBalance(ctx, wallet.Address, symbol)
}
