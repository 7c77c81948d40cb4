package amount

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decoded is a signed fixed-point token amount: magnitude / 10^exponent.
// The zero value is 0 with exponent 0.
type Decoded struct {
	negative  bool
	magnitude *big.Int
	exponent  uint
}

// Negative reports whether the sign bit of the original word was set.
func (d Decoded) Negative() bool {
	return d.negative
}

// Exponent returns the number of decimal places the amount was scaled by.
func (d Decoded) Exponent() uint {
	return d.exponent
}

// Magnitude returns a copy of the unscaled absolute value.
func (d Decoded) Magnitude() *big.Int {
	if d.magnitude == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(d.magnitude)
}

// Signed returns the unscaled signed integer.
func (d Decoded) Signed() *big.Int {
	v := d.Magnitude()
	if d.negative {
		v.Neg(v)
	}
	return v
}

// Word re-encodes the amount as the unsigned 256-bit two's-complement word it was decoded from.
func (d Decoded) Word() *uint256.Int {
	word, _ := uint256.FromBig(d.Signed())
	return word
}

// Decimal returns the scaled value as an arbitrary-precision decimal. Decode caps
// the exponent at MaxExponent so the conversion is lossless.
func (d Decoded) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(d.Signed(), -int32(d.exponent))
}

// String renders the exact decimal. The fractional part is omitted when it is all
// zeros and otherwise printed with exactly Exponent() digits.
func (d Decoded) String() string {
	text := formatScaled(d.Magnitude(), d.exponent)
	if d.negative {
		return "-" + text
	}
	return text
}

func formatScaled(magnitude *big.Int, exponent uint) string {
	if exponent == 0 {
		return magnitude.String()
	}

	denom := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(uint64(exponent)), nil)
	quo, rem := new(big.Int).QuoRem(magnitude, denom, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := rem.String()
	var b strings.Builder
	b.Grow(len(quo.String()) + 1 + int(exponent))
	b.WriteString(quo.String())
	b.WriteByte('.')
	b.WriteString(strings.Repeat("0", int(exponent)-len(frac)))
	b.WriteString(frac)
	return b.String()
}
