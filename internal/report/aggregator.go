package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	syncer "github.com/coconutick512/bot-for-crypt/internal/sync"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// Aggregator builds date-ranged transfer summaries. A report always starts
// with a fresh synchronization so it reflects the provider's latest data
// rather than whatever the ledger last saw.
type Aggregator struct {
	storage storage.Storage
	sync    *syncer.Manager
	logger  *logrus.Entry
}

// NewAggregator creates a new report aggregator
func NewAggregator(store storage.Storage, sync *syncer.Manager) *Aggregator {
	return &Aggregator{
		storage: store,
		sync:    sync,
		logger:  utils.ComponentLogger("report"),
	}
}

// BuildReport synchronizes the wallet and returns its entries and total
// within [from, to]. The total is a plain sum: all tracked assets report in
// their stablecoin units, so no cross-asset conversion is applied.
func (a *Aggregator) BuildReport(ctx context.Context, walletID int64, from, to time.Time) (*models.Report, error) {
	if err := a.sync.Synchronize(ctx, walletID); err != nil {
		return nil, err
	}

	entries, err := a.storage.GetEntriesRange(ctx, walletID, from, to)
	if err != nil {
		return nil, err
	}

	total, err := a.storage.SumRange(ctx, walletID, from, to)
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*models.LedgerEntry{}
	}

	a.logger.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"from":      from,
		"to":        to,
		"count":     len(entries),
		"total":     total.String(),
	}).Debug("Report built")

	return &models.Report{
		WalletID:    walletID,
		From:        from,
		To:          to,
		Count:       len(entries),
		Entries:     entries,
		TotalAmount: total,
	}, nil
}
