package config

import (
	"fmt"
	"strconv"
	"strings"

	"swapLogger/internal/model"
)

// maxDecimals keeps 10^decimals inside a 256-bit word.
const maxDecimals = 77

// ParseToken parses a "SYMBOL:DECIMALS" token spec, e.g. "DAI:18".
func ParseToken(input string) (model.TokenMeta, error) {
	symbol, decimals, ok := strings.Cut(strings.TrimSpace(input), ":")
	symbol = strings.TrimSpace(symbol)
	if !ok || symbol == "" {
		return model.TokenMeta{}, fmt.Errorf("invalid token %q: expected SYMBOL:DECIMALS", input)
	}

	n, err := strconv.ParseUint(strings.TrimSpace(decimals), 10, 8)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("invalid token decimals %q: %w", decimals, err)
	}
	if n > maxDecimals {
		return model.TokenMeta{}, fmt.Errorf("invalid token decimals %d: at most %d", n, maxDecimals)
	}
	return model.TokenMeta{Symbol: symbol, Decimals: uint8(n)}, nil
}
