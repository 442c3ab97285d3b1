package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coconutick512/bot-for-crypt/internal/models"
)

// UpsertResult reports what an idempotent ledger insert did
type UpsertResult int

const (
	// Inserted means the entry was written for the first time
	Inserted UpsertResult = iota
	// AlreadyPresent means the tx hash was recorded before; the existing
	// row is left untouched, since the source of truth for a given hash
	// never changes
	AlreadyPresent
)

// Storage defines the interface for the wallet registry read model and the
// transfer ledger
type Storage interface {
	// Connection management
	Connect() error
	Close() error
	Ping() error
	Migrate() error

	// Wallet registry reads. Wallet CRUD belongs to the external registry;
	// SaveWallet exists for seeding and tests.
	GetWallet(ctx context.Context, id int64) (*models.Wallet, error)
	GetWallets(ctx context.Context) ([]*models.Wallet, error)
	SaveWallet(ctx context.Context, wallet *models.Wallet) error

	// Ledger operations
	UpsertEntry(ctx context.Context, entry *models.LedgerEntry) (UpsertResult, error)
	GetEntriesRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.LedgerEntry, error)
	SumRange(ctx context.Context, walletID int64, from, to time.Time) (decimal.Decimal, error)

	// Statistics
	GetLedgerStats(ctx context.Context) (*LedgerStats, error)
}

// LedgerStats provides ledger statistics
type LedgerStats struct {
	TotalWallets int64      `json:"total_wallets"`
	TotalEntries int64      `json:"total_entries"`
	OldestEntry  *time.Time `json:"oldest_entry,omitempty"`
	LatestEntry  *time.Time `json:"latest_entry,omitempty"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type             string        `json:"type"`
	ConnectionString string        `json:"connection_string"`
	MaxConnections   int           `json:"max_connections"`
	MaxIdleTime      time.Duration `json:"max_idle_time"`
}
