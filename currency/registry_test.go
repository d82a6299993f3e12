package currency

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fauTokenAddress = "0x370DE27fdb7D1Ff1e1BaA7D11c5820a324Cf623C"

func TestChainID(t *testing.T) {
	assert.Equal(t, "1", ChainID("mainnet"))
	assert.Equal(t, "137", ChainID("matic"))
	assert.Equal(t, "11155111", ChainID("sepolia"))
	assert.Equal(t, "11155111", ChainID("Sepolia"))
}

func TestChainIDUnknownNetworkDefaultsToMainnet(t *testing.T) {
	assert.Equal(t, "1", ChainID("gnosis"))
	assert.Equal(t, "1", ChainID(""))
}

func TestSymbolKnownToken(t *testing.T) {
	assert.Equal(t, "FAU", Symbol("sepolia", fauTokenAddress))
	assert.Equal(t, "DAI", Symbol("mainnet", "0x6B175474E89094C44Da98b954EedeAC495271d0F"))
}

func TestSymbolUnknownTokenIsEmpty(t *testing.T) {
	assert.Equal(t, "", Symbol("sepolia", "0x0000000000000000000000000000000000000001"))
}

func TestSymbolUnknownNetworkIsEmpty(t *testing.T) {
	// unknown network resolves to mainnet, where the FAU token does not exist
	assert.Equal(t, "", Symbol("gnosis", fauTokenAddress))
}

func TestDecimalsKnownToken(t *testing.T) {
	assert.Equal(t, 18, Decimals("sepolia", fauTokenAddress))
	assert.Equal(t, 6, Decimals("mainnet", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"))
}

func TestDecimalsUnknownTokenDefaultsTo18(t *testing.T) {
	assert.Equal(t, 18, Decimals("sepolia", "0x0000000000000000000000000000000000000001"))
}

func TestDecimalsUnknownNetworkDefaultsTo18(t *testing.T) {
	assert.Equal(t, 18, Decimals("gnosis", fauTokenAddress))
}

func TestFormatUnits(t *testing.T) {
	amount, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.5", FormatUnits(amount, 18))
	assert.Equal(t, "0", FormatUnits(nil, 18))
	assert.Equal(t, "12.5", FormatUnits(big.NewInt(12500000), 6))
}

func TestParseUnits(t *testing.T) {
	amount, err := ParseUnits("1.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", amount.String())

	amount, err = ParseUnits("500", 6)
	require.NoError(t, err)
	assert.Equal(t, "500000000", amount.String())
}

func TestParseUnitsInvalid(t *testing.T) {
	_, err := ParseUnits("not-a-number", 18)
	assert.Error(t, err)
}
