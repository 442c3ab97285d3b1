package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/adapter"
	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// Manager orchestrates wallet synchronization: resolve the adapter, fetch
// the provider's recent transfers, normalize, and record them idempotently.
// Different wallets synchronize concurrently; each wallet is serialized
// against itself so two runs never race over the same transfer hashes.
type Manager struct {
	storage  storage.Storage
	registry *adapter.Registry
	catalog  *assets.Catalog
	logger   *logrus.Entry
	metrics  *metrics.Manager

	mu    stdsync.Mutex
	locks map[int64]*stdsync.Mutex
}

// NewManager creates a new synchronization manager
func NewManager(store storage.Storage, registry *adapter.Registry, catalog *assets.Catalog, m *metrics.Manager) *Manager {
	return &Manager{
		storage:  store,
		registry: registry,
		catalog:  catalog,
		logger:   utils.ComponentLogger("sync"),
		metrics:  m,
		locks:    make(map[int64]*stdsync.Mutex),
	}
}

// Synchronize fetches and records new inbound transfers for one wallet.
// The call succeeds once the fetch itself succeeds, even when every raw
// transfer is filtered as noise.
func (m *Manager) Synchronize(ctx context.Context, walletID int64) error {
	lock := m.walletLock(walletID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	wallet, err := m.storage.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if wallet == nil || !wallet.Active {
		return utils.NewAppError(utils.ErrCodeWalletNotFound,
			fmt.Sprintf("wallet %d not found or inactive", walletID))
	}

	networkAdapter, err := m.registry.Resolve(wallet.Network)
	if err != nil {
		m.recordRun(wallet.Network, "error", start)
		return err
	}

	raws, err := networkAdapter.FetchIncomingTransfers(ctx, wallet.Address)
	if err != nil {
		m.recordRun(wallet.Network, "error", start)
		return err
	}

	entries, stats := normalizeTransfers(m.catalog, wallet, raws)
	m.recordFiltered(wallet.Network, stats)

	inserted, duplicates := 0, 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			m.recordRun(wallet.Network, "canceled", start)
			return utils.NewAppError(utils.ErrCodeInternal, "synchronization canceled", ctx.Err().Error())
		default:
		}

		result, err := m.storage.UpsertEntry(ctx, entry)
		if err != nil {
			m.recordRun(wallet.Network, "error", start)
			return err
		}

		switch result {
		case storage.Inserted:
			inserted++
			if m.metrics != nil {
				m.metrics.GetPrometheusMetrics().TransfersIngested.
					WithLabelValues(string(wallet.Network), entry.TokenSymbol).Inc()
			}
		case storage.AlreadyPresent:
			duplicates++
			if m.metrics != nil {
				m.metrics.GetPrometheusMetrics().TransfersDuplicated.
					WithLabelValues(string(wallet.Network)).Inc()
			}
		}
	}

	m.recordRun(wallet.Network, "success", start)
	m.logger.WithFields(logrus.Fields{
		"wallet_id":  wallet.ID,
		"label":      wallet.Label,
		"network":    wallet.Network,
		"fetched":    len(raws),
		"inserted":   inserted,
		"duplicates": duplicates,
	}).Info("Wallet synchronization completed")

	return nil
}

// walletLock returns the per-wallet exclusion lock, creating it on first
// use. Entries live for the life of the process; the map is bounded by the
// wallet registry size since ids are never recycled.
func (m *Manager) walletLock(walletID int64) *stdsync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[walletID]
	if !ok {
		lock = &stdsync.Mutex{}
		m.locks[walletID] = lock
	}
	return lock
}

func (m *Manager) recordRun(network models.Network, status string, start time.Time) {
	if m.metrics != nil {
		m.metrics.GetPrometheusMetrics().RecordSyncRun(string(network), status, time.Since(start))
	}
}

func (m *Manager) recordFiltered(network models.Network, stats normalizeStats) {
	if m.metrics == nil {
		return
	}
	pm := m.metrics.GetPrometheusMetrics()
	if stats.WrongDestination > 0 {
		pm.TransfersFiltered.WithLabelValues(string(network), "wrong_destination").Add(float64(stats.WrongDestination))
	}
	if stats.UnknownAsset > 0 {
		pm.TransfersFiltered.WithLabelValues(string(network), "unknown_asset").Add(float64(stats.UnknownAsset))
	}
	if stats.Malformed > 0 {
		pm.TransfersFiltered.WithLabelValues(string(network), "malformed").Add(float64(stats.Malformed))
	}
}
