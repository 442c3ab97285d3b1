package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coconutick512/bot-for-crypt/internal/models"
)

func TestCatalogBySymbol(t *testing.T) {
	catalog := NewCatalog(DefaultAssets())

	asset, ok := catalog.BySymbol(models.NetworkEVM, "USDT")
	require.True(t, ok)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", asset.Identifier)
	assert.Equal(t, int32(6), asset.Decimals)

	// Same symbol resolves to a different contract on another network
	asset, ok = catalog.BySymbol(models.NetworkTron, "USDT")
	require.True(t, ok)
	assert.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", asset.Identifier)
}

func TestCatalogLookupsAreCaseInsensitive(t *testing.T) {
	catalog := NewCatalog(DefaultAssets())

	_, ok := catalog.BySymbol(models.NetworkEVM, "usdt")
	assert.True(t, ok)

	_, ok = catalog.BySymbol(models.NetworkEVM, " USDC ")
	assert.True(t, ok)

	_, ok = catalog.ByIdentifier(models.NetworkEVM, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	assert.True(t, ok)
}

func TestCatalogUnknownLookups(t *testing.T) {
	catalog := NewCatalog(DefaultAssets())

	_, ok := catalog.BySymbol(models.NetworkEVM, "DOGE")
	assert.False(t, ok)

	_, ok = catalog.ByIdentifier(models.NetworkSolana, "NotARealMint11111111111111111111111111111111")
	assert.False(t, ok)

	// Identifier from the wrong network does not leak across
	_, ok = catalog.ByIdentifier(models.NetworkTron, "0xdAC17F958D2ee523a2206206994597C13D831ec7")
	assert.False(t, ok)
}

func TestCatalogSymbols(t *testing.T) {
	catalog := NewCatalog(DefaultAssets())

	symbols := catalog.Symbols(models.NetworkSolana)
	assert.ElementsMatch(t, []string{"USDT", "USDC"}, symbols)
}
