package assets

import (
	"strings"

	"github.com/coconutick512/bot-for-crypt/internal/models"
)

// Asset is one supported token on one network. Identifier is the ERC20/TRC20
// contract address or the SPL mint, depending on the network.
type Asset struct {
	Network    models.Network `json:"network"`
	Symbol     string         `json:"symbol"`
	Identifier string         `json:"identifier"`
	Decimals   int32          `json:"decimals"`
}

// Catalog is the immutable (network, symbol) -> asset mapping. It is built
// once at process start; lookups never allocate or rebuild reverse maps.
type Catalog struct {
	bySymbol     map[models.Network]map[string]Asset
	byIdentifier map[models.Network]map[string]Asset
}

// NewCatalog builds a catalog from a static asset list. Symbol and
// identifier lookups are case-insensitive.
func NewCatalog(assets []Asset) *Catalog {
	c := &Catalog{
		bySymbol:     make(map[models.Network]map[string]Asset),
		byIdentifier: make(map[models.Network]map[string]Asset),
	}

	for _, a := range assets {
		if c.bySymbol[a.Network] == nil {
			c.bySymbol[a.Network] = make(map[string]Asset)
			c.byIdentifier[a.Network] = make(map[string]Asset)
		}
		c.bySymbol[a.Network][strings.ToUpper(a.Symbol)] = a
		c.byIdentifier[a.Network][strings.ToLower(a.Identifier)] = a
	}

	return c
}

// BySymbol resolves a token symbol on a network
func (c *Catalog) BySymbol(network models.Network, symbol string) (Asset, bool) {
	a, ok := c.bySymbol[network][strings.ToUpper(strings.TrimSpace(symbol))]
	return a, ok
}

// ByIdentifier resolves a contract or mint identifier on a network
func (c *Catalog) ByIdentifier(network models.Network, identifier string) (Asset, bool) {
	a, ok := c.byIdentifier[network][strings.ToLower(strings.TrimSpace(identifier))]
	return a, ok
}

// Symbols returns the supported symbols for a network
func (c *Catalog) Symbols(network models.Network) []string {
	symbols := make([]string, 0, len(c.bySymbol[network]))
	for s := range c.bySymbol[network] {
		symbols = append(symbols, s)
	}
	return symbols
}

// DefaultAssets returns the tracked stablecoin contracts and mints
func DefaultAssets() []Asset {
	return []Asset{
		{Network: models.NetworkEVM, Symbol: "USDT", Identifier: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
		{Network: models.NetworkEVM, Symbol: "USDC", Identifier: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
		{Network: models.NetworkTron, Symbol: "USDT", Identifier: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", Decimals: 6},
		{Network: models.NetworkTron, Symbol: "USDC", Identifier: "TEkxiTehnzSmSe2XqrBj4w32RUN966rdz8", Decimals: 6},
		{Network: models.NetworkSolana, Symbol: "USDT", Identifier: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
		{Network: models.NetworkSolana, Symbol: "USDC", Identifier: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	}
}
