package currency

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is assumed for any token the registry does not know about.
const DefaultDecimals = 18

// Token describes an ERC-20 token known to the registry.
type Token struct {
	Symbol   string
	Decimals int
}

// The registry is static: it maps "<chain id>_<lowercased token address>" to
// token metadata. It only needs to cover the tokens the dashboard offers for
// invoicing; everything else falls back to the defaults.
var registry = map[string]Token{
	// sepolia
	"11155111_0x370de27fdb7d1ff1e1baa7d11c5820a324cf623c": {Symbol: "FAU", Decimals: 18},
	"11155111_0x1c7d4b196cb0c7b01d743fbc6116a902379c7238": {Symbol: "USDC", Decimals: 6},
	// mainnet
	"1_0x6b175474e89094c44da98b954eedeac495271d0f": {Symbol: "DAI", Decimals: 18},
	"1_0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {Symbol: "USDC", Decimals: 6},
	// matic
	"137_0x2791bca1f2de4661ed88a30c99a7a9449aa84174": {Symbol: "USDC", Decimals: 6},
	"137_0x8f3cf7ad23cd3cadbd9735aff958023239c6a063": {Symbol: "DAI", Decimals: 18},
}

// ChainID resolves a network name (case-insensitive) to its chain id. Unknown
// networks resolve to mainnet.
func ChainID(network string) string {
	switch strings.ToLower(network) {
	case "mainnet":
		return "1"
	case "matic":
		return "137"
	case "sepolia":
		return "11155111"
	default:
		return "1"
	}
}

// Symbol returns the token symbol for a (network, token address) pair, or the
// empty string when the token is unknown.
func Symbol(network, tokenAddress string) string {
	return lookup(network, tokenAddress).Symbol
}

// Decimals returns the decimal precision for a (network, token address) pair.
// Unknown networks and unknown tokens default to 18.
func Decimals(network, tokenAddress string) int {
	token := lookup(network, tokenAddress)
	if token.Decimals == 0 {
		return DefaultDecimals
	}
	return token.Decimals
}

func lookup(network, tokenAddress string) Token {
	key := fmt.Sprintf("%s_%s", ChainID(network), strings.ToLower(tokenAddress))
	return registry[key]
}

// FormatUnits converts an amount in the token's smallest unit to its display
// representation, e.g. 1500000000000000000 with 18 decimals -> "1.5".
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// ParseUnits converts a display amount to the token's smallest unit,
// truncating anything below the token's precision.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}
