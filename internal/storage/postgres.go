package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// PostgresStorage implements Storage interface using PostgreSQL
type PostgresStorage struct {
	db         *sql.DB
	config     *StorageConfig
	logger     *logrus.Logger
	migrations []*Migration

	metricsManager *metrics.Manager
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(config *StorageConfig, m *metrics.Manager) *PostgresStorage {
	return &PostgresStorage{
		config:         config,
		logger:         utils.GetLogger(),
		migrations:     GetPostgresMigrations(),
		metricsManager: m,
	}
}

// Connect establishes database connection
func (s *PostgresStorage) Connect() error {
	db, err := sql.Open("postgres", s.config.ConnectionString)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to open PostgreSQL database", err.Error())
	}

	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxLifetime(s.config.MaxIdleTime)

	if err := db.Ping(); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to ping PostgreSQL database", err.Error())
	}

	s.db = db
	s.logger.Info("PostgreSQL database connected")

	return nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("PostgreSQL database connection closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *PostgresStorage) Ping() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}
	return s.db.Ping()
}

// Migrate runs database migrations
func (s *PostgresStorage) Migrate() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}

	s.logger.Info("Starting database migrations")

	for _, migration := range s.migrations {
		s.logger.WithFields(logrus.Fields{
			"version":     migration.Version,
			"description": migration.Description,
		}).Info("Applying migration")

		if _, err := s.db.Exec(migration.SQL); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase,
				fmt.Sprintf("Migration %s failed", migration.Version),
				err.Error())
		}
	}

	s.logger.Info("Database migrations completed")
	return nil
}

// GetWallet retrieves a wallet by id, nil when absent
func (s *PostgresStorage) GetWallet(ctx context.Context, id int64) (*models.Wallet, error) {
	query := `SELECT id, network, address, label, is_active FROM wallets WHERE id = $1`

	var w models.Wallet
	var network string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&w.ID, &network, &w.Address, &w.Label, &w.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to get wallet", err.Error())
	}

	parsed, err := models.ParseNetwork(network)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Wallet has invalid network", err.Error())
	}
	w.Network = parsed

	return &w, nil
}

// GetWallets retrieves all wallets ordered by id
func (s *PostgresStorage) GetWallets(ctx context.Context) ([]*models.Wallet, error) {
	query := `SELECT id, network, address, label, is_active FROM wallets ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to list wallets", err.Error())
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		var w models.Wallet
		var network string
		if err := rows.Scan(&w.ID, &network, &w.Address, &w.Label, &w.Active); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan wallet", err.Error())
		}
		parsed, err := models.ParseNetwork(network)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Wallet has invalid network", err.Error())
		}
		w.Network = parsed
		wallets = append(wallets, &w)
	}

	return wallets, rows.Err()
}

// SaveWallet inserts or updates a wallet row
func (s *PostgresStorage) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == 0 {
		query := `INSERT INTO wallets (network, address, label, is_active) VALUES ($1, $2, $3, $4) RETURNING id`
		err := s.db.QueryRowContext(ctx, query,
			string(wallet.Network), wallet.Address, wallet.Label, wallet.Active).Scan(&wallet.ID)
		if err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save wallet", err.Error())
		}
		return nil
	}

	query := `
		INSERT INTO wallets (id, network, address, label, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			network = EXCLUDED.network,
			address = EXCLUDED.address,
			label = EXCLUDED.label,
			is_active = EXCLUDED.is_active
	`
	_, err := s.db.ExecContext(ctx, query,
		wallet.ID, string(wallet.Network), wallet.Address, wallet.Label, wallet.Active)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save wallet", err.Error())
	}
	return nil
}

// UpsertEntry inserts a ledger entry unless its tx hash is already recorded
func (s *PostgresStorage) UpsertEntry(ctx context.Context, entry *models.LedgerEntry) (UpsertResult, error) {
	start := time.Now()

	query := `
		INSERT INTO transactions (tx_hash, wallet_id, amount, token_symbol, from_address, tx_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tx_hash) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		entry.TxHash, entry.WalletID, entry.Amount.String(),
		entry.TokenSymbol, entry.FromAddress, entry.Timestamp.UTC())

	s.recordOperation("upsert_entry", err, start)
	if err != nil {
		return AlreadyPresent, utils.NewAppError(utils.ErrCodeDatabase, "Failed to upsert ledger entry", err.Error())
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return AlreadyPresent, utils.NewAppError(utils.ErrCodeDatabase, "Failed to read upsert result", err.Error())
	}

	if affected == 0 {
		return AlreadyPresent, nil
	}
	return Inserted, nil
}

// GetEntriesRange returns the wallet's entries within [from, to], newest first
func (s *PostgresStorage) GetEntriesRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.LedgerEntry, error) {
	start := time.Now()

	query := `
		SELECT id, tx_hash, wallet_id, amount::text, token_symbol, from_address, tx_timestamp
		FROM transactions
		WHERE wallet_id = $1 AND tx_timestamp >= $2 AND tx_timestamp <= $3
		ORDER BY tx_timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, walletID, from.UTC(), to.UTC())
	s.recordOperation("query_range", err, start)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query ledger range", err.Error())
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var amount string
		if err := rows.Scan(&e.ID, &e.TxHash, &e.WalletID, &amount, &e.TokenSymbol, &e.FromAddress, &e.Timestamp); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan ledger entry", err.Error())
		}
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Ledger entry amount is not numeric", amount)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// SumRange sums the wallet's amounts within [from, to], zero when no rows match
func (s *PostgresStorage) SumRange(ctx context.Context, walletID int64, from, to time.Time) (decimal.Decimal, error) {
	start := time.Now()

	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM transactions
		WHERE wallet_id = $1 AND tx_timestamp >= $2 AND tx_timestamp <= $3
	`

	var sum string
	err := s.db.QueryRowContext(ctx, query, walletID, from.UTC(), to.UTC()).Scan(&sum)
	s.recordOperation("sum_range", err, start)
	if err != nil {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeDatabase, "Failed to sum ledger range", err.Error())
	}

	total, err := decimal.NewFromString(sum)
	if err != nil {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeDatabase, "Ledger sum is not numeric", sum)
	}

	return total, nil
}

// GetLedgerStats returns ledger statistics
func (s *PostgresStorage) GetLedgerStats(ctx context.Context) (*LedgerStats, error) {
	stats := &LedgerStats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&stats.TotalWallets); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count wallets", err.Error())
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&stats.TotalEntries); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count entries", err.Error())
	}

	var oldest, latest sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MIN(tx_timestamp), MAX(tx_timestamp) FROM transactions`).Scan(&oldest, &latest)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to read entry bounds", err.Error())
	}
	if oldest.Valid {
		stats.OldestEntry = &oldest.Time
	}
	if latest.Valid {
		stats.LatestEntry = &latest.Time
	}

	return stats, nil
}

func (s *PostgresStorage) recordOperation(operation string, err error, start time.Time) {
	if s.metricsManager == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metricsManager.GetPrometheusMetrics().RecordDatabaseOperation(operation, status, time.Since(start))
}
