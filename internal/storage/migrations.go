package storage

// Migration represents a database migration
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// GetSQLiteMigrations returns SQLite migration scripts
func GetSQLiteMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create wallets table",
			SQL: `
				CREATE TABLE IF NOT EXISTS wallets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					network TEXT NOT NULL,
					address TEXT NOT NULL,
					label TEXT NOT NULL UNIQUE,
					is_active BOOLEAN NOT NULL DEFAULT TRUE
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create transactions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					tx_hash TEXT NOT NULL,
					wallet_id INTEGER NOT NULL REFERENCES wallets(id),
					amount TEXT NOT NULL,
					token_symbol TEXT NOT NULL,
					from_address TEXT NOT NULL,
					tx_timestamp DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_tx_hash ON transactions(tx_hash);
				CREATE INDEX IF NOT EXISTS idx_transactions_wallet_ts ON transactions(wallet_id, tx_timestamp);
			`,
		},
	}
}

// GetPostgresMigrations returns PostgreSQL migration scripts
func GetPostgresMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create wallets table",
			SQL: `
				CREATE TABLE IF NOT EXISTS wallets (
					id BIGSERIAL PRIMARY KEY,
					network TEXT NOT NULL,
					address TEXT NOT NULL,
					label TEXT NOT NULL UNIQUE,
					is_active BOOLEAN NOT NULL DEFAULT TRUE
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create transactions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS transactions (
					id BIGSERIAL PRIMARY KEY,
					tx_hash TEXT NOT NULL,
					wallet_id BIGINT NOT NULL REFERENCES wallets(id),
					amount NUMERIC(30, 8) NOT NULL,
					token_symbol TEXT NOT NULL,
					from_address TEXT NOT NULL,
					tx_timestamp TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ DEFAULT NOW()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_tx_hash ON transactions(tx_hash);
				CREATE INDEX IF NOT EXISTS idx_transactions_wallet_ts ON transactions(wallet_id, tx_timestamp);
			`,
		},
	}
}
