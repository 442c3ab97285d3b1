package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input string
		want  Network
	}{
		{"EVM", NetworkEVM},
		{"evm", NetworkEVM},
		{"ERC20", NetworkEVM},
		{"eth", NetworkEVM},
		{"TRON", NetworkTron},
		{"trc20", NetworkTron},
		{"SOLANA", NetworkSolana},
		{"sol", NetworkSolana},
		{" solana ", NetworkSolana},
	}

	for _, tt := range tests {
		got, err := ParseNetwork(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseNetworkUnknown(t *testing.T) {
	_, err := ParseNetwork("bitcoin")
	assert.Error(t, err)

	_, err = ParseNetwork("")
	assert.Error(t, err)
}
