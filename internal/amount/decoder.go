package amount

import (
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// Radix is the base the digit string is written in.
type Radix int

// Base16 is the radix of ABI-decoded integer words.
const Base16 Radix = 16

const wordBits = 256

// MaxExponent is the largest scale Decode accepts, the limit of a decimal.Decimal exponent.
const MaxExponent uint = math.MaxInt32

// Decode parses digits as an unsigned 256-bit two's-complement word and scales it
// down by 10^exponent. The result is exact: no floating point is involved.
func Decode(digits string, radix Radix, exponent uint) (Decoded, error) {
	if exponent > MaxExponent {
		return Decoded{}, fmt.Errorf("exponent %d exceeds %d", exponent, MaxExponent)
	}
	if !validDigits(digits, radix) {
		return Decoded{}, &DecodeError{Kind: ErrInvalidDigits, Digits: digits, Radix: radix}
	}

	raw, ok := new(big.Int).SetString(digits, int(radix))
	if !ok {
		return Decoded{}, &DecodeError{Kind: ErrInvalidDigits, Digits: digits, Radix: radix}
	}
	if raw.BitLen() > wordBits {
		return Decoded{}, &DecodeError{Kind: ErrOverflow, Digits: digits, Radix: radix}
	}

	word, overflow := uint256.FromBig(raw)
	if overflow {
		return Decoded{}, &DecodeError{Kind: ErrOverflow, Digits: digits, Radix: radix}
	}

	negative := word.Sign() < 0
	if negative {
		// two's complement over the fixed width: (^raw mod 2^256) + 1
		word.Not(word)
		word.AddUint64(word, 1)
	}

	return Decoded{
		negative:  negative,
		magnitude: word.ToBig(),
		exponent:  exponent,
	}, nil
}

// validDigits accepts only [0-9a-zA-Z] characters below the radix. Signs, prefixes,
// underscores and whitespace are rejected, which big.Int.SetString alone would not do.
func validDigits(digits string, radix Radix) bool {
	if digits == "" || radix < 2 || radix > 36 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		v, ok := digitValue(digits[i])
		if !ok || v >= int(radix) {
			return false
		}
	}
	return true
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
