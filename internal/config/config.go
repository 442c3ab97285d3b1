package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ProvidersConfig contains the external data source configuration for the
// three network adapters. Timeouts and retry policy are shared.
type ProvidersConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`

	Etherscan EtherscanConfig `mapstructure:"etherscan"`
	Tron      TronConfig      `mapstructure:"tron"`
	Solana    SolanaConfig    `mapstructure:"solana"`
}

// EtherscanConfig contains the EVM transfer/balance source configuration
type EtherscanConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// TronConfig contains the TRON data source configuration
type TronConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	PageSize int    `mapstructure:"page_size"`
}

// SolanaConfig contains the Solana data sources: the node RPC endpoint for
// balance reads and the indexer API for transfer history.
type SolanaConfig struct {
	RPCURL     string `mapstructure:"rpc_url"`
	IndexerURL string `mapstructure:"indexer_url"`
	APIKey     string `mapstructure:"api_key"`
	PageSize   int    `mapstructure:"page_size"`
}

// StorageConfig contains database configuration
type StorageConfig struct {
	Type             string        `mapstructure:"type"` // sqlite, postgres
	ConnectionString string        `mapstructure:"connection_string"`
	MaxConnections   int           `mapstructure:"max_connections"`
	MaxIdleTime      time.Duration `mapstructure:"max_idle_time"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	EnableHealth  bool          `mapstructure:"enable_health"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./internal/config")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("TRACKER")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override secrets with environment variables if present
	if key := os.Getenv("ETHERSCAN_API_KEY"); key != "" {
		config.Providers.Etherscan.APIKey = key
	}
	if key := os.Getenv("TRONGRID_API_KEY"); key != "" {
		config.Providers.Tron.APIKey = key
	}
	if key := os.Getenv("SOLANA_API_KEY"); key != "" {
		config.Providers.Solana.APIKey = key
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Storage.ConnectionString = dbURL
		config.Storage.Type = "postgres"
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "bot-for-crypt")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Provider defaults
	viper.SetDefault("providers.request_timeout", "15s")
	viper.SetDefault("providers.retry_attempts", 3)
	viper.SetDefault("providers.retry_delay", "2s")
	viper.SetDefault("providers.etherscan.base_url", "https://api.etherscan.io/api")
	viper.SetDefault("providers.tron.base_url", "https://api.trongrid.io")
	viper.SetDefault("providers.tron.page_size", 100)
	viper.SetDefault("providers.solana.rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("providers.solana.indexer_url", "https://indexer.mainnet-beta.solana.com")
	viper.SetDefault("providers.solana.page_size", 100)

	// Storage defaults
	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.connection_string", "./data/ledger.db")
	viper.SetDefault("storage.max_connections", 25)
	viper.SetDefault("storage.max_idle_time", "15m")

	// Server defaults
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.enable_metrics", true)
	viper.SetDefault("server.enable_health", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Providers.Etherscan.BaseURL == "" {
		return fmt.Errorf("etherscan base URL is required")
	}
	if c.Providers.Tron.BaseURL == "" {
		return fmt.Errorf("tron base URL is required")
	}
	if c.Providers.Solana.RPCURL == "" {
		return fmt.Errorf("solana RPC URL is required")
	}
	if c.Providers.Solana.IndexerURL == "" {
		return fmt.Errorf("solana indexer URL is required")
	}
	if c.Providers.RequestTimeout <= 0 {
		return fmt.Errorf("provider request timeout must be positive")
	}
	if c.Providers.RetryAttempts < 1 {
		return fmt.Errorf("provider retry attempts must be at least 1")
	}
	if c.Storage.Type != "sqlite" && c.Storage.Type != "postgres" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.ConnectionString == "" {
		return fmt.Errorf("storage connection string is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
