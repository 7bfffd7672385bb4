/*
   axx - IEEE-754 literal encoding for dbl{}/flt{}/qad{}.

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// floatWidth identifies which dbl{}/flt{}/qad{} literal is being encoded.
type floatWidth int

const (
	width32  floatWidth = 32
	width64  floatWidth = 64
	width128 floatWidth = 128
)

// parseRestrictedFloat turns the body text of a dbl{}/flt{}/qad{} literal
// into a *big.Int holding its IEEE-754 bit pattern at the given width.
// This is a restricted numeric parser (digits, sign, '.', exponent, and
// the nan/inf/-inf specials) - never a host-language eval (REDESIGN
// FLAGS §9).
func parseRestrictedFloat(body string, w floatWidth) (*big.Int, error) {
	s := strings.TrimSpace(body)
	lower := strings.ToLower(s)

	switch lower {
	case "nan":
		return floatBits(math.NaN(), w), nil
	case "inf":
		return floatBits(math.Inf(1), w), nil
	case "-inf":
		return floatBits(math.Inf(-1), w), nil
	}

	if !isRestrictedNumeric(s) {
		return nil, errBadFloat("malformed float literal " + body)
	}

	if w == width128 {
		bits, err := decimalToQuadBits(s)
		if err != nil {
			return nil, errBadFloat("malformed float literal " + body)
		}
		return bits, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errBadFloat("malformed float literal " + body)
	}
	return floatBits(f, w), nil
}

// isRestrictedNumeric rejects anything that isn't a plain decimal/exponent
// number: no hex floats, no host-language syntax of any kind.
func isRestrictedNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	sawDigit := false
	for i < len(s) && containsByte(digitChars, s[i]) {
		i++
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && containsByte(digitChars, s[i]) {
			i++
			sawDigit = true
		}
	}
	if !sawDigit {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigit := false
		for i < len(s) && containsByte(digitChars, s[i]) {
			i++
			expDigit = true
		}
		if !expDigit {
			return false
		}
	}
	return i == len(s)
}

// floatBits encodes f as an unsigned bit pattern at width w. Only used for
// the nan/inf/-inf specials and the 32/64-bit literals, where float64's own
// 52-bit mantissa is the target precision anyway; general qad{} literals go
// through decimalToQuadBits instead, which normalizes the decimal text
// directly to binary128 without round-tripping through float64.
func floatBits(f float64, w floatWidth) *big.Int {
	switch w {
	case width32:
		return new(big.Int).SetUint64(uint64(math.Float32bits(float32(f))))
	case width64:
		return new(big.Int).SetUint64(math.Float64bits(f))
	default:
		return float64To128Bits(f)
	}
}

// float64To128Bits widens a float64's sign/exponent/mantissa into a
// binary128 bit pattern (sign:1 exp:15 frac:112), re-biasing the exponent
// and left-justifying the 52-bit double mantissa into the top of the
// 112-bit quad mantissa field. Subnormals and NaN payload bits are not
// preserved beyond sign and the quiet-NaN pattern.
func float64To128Bits(f float64) *big.Int {
	bits := math.Float64bits(f)
	sign := bits >> 63
	exp := int64((bits >> 52) & 0x7FF)
	frac := bits & ((1 << 52) - 1)

	result := new(big.Int)
	result.SetUint64(sign)
	result.Lsh(result, 15)

	var exp128 uint64
	switch {
	case exp == 0x7FF && frac == 0:
		exp128 = 0x7FFF
	case exp == 0x7FF:
		exp128 = 0x7FFF
	case exp == 0 && frac == 0:
		exp128 = 0
	default:
		exp128 = uint64(exp-1023+16383) & 0x7FFF
	}
	result.Or(result, new(big.Int).SetUint64(exp128))
	result.Lsh(result, 112)

	fracField := new(big.Int).SetUint64(frac)
	fracField.Lsh(fracField, 112-52)
	result.Or(result, fracField)

	return result
}

// quadWorkPrec is the binary working precision used to normalize a decimal
// qad{} literal: comfortably more than the 112 mantissa bits actually kept,
// so the rounding step below sees a value that is exact to well past the
// last bit binary128 can represent.
const quadWorkPrec = 200

// decimalToQuadBits normalizes the decimal text of a qad{} literal straight
// to a binary128 bit pattern (sign:1 exp:15 frac:112), the way the original
// assembler's decimal_to_ieee754_128bit_hex used arbitrary-precision decimal
// arithmetic rather than a float64 intermediate: routing a literal like
// qad{0.1} through float64 first would bake in float64's rounding error 60
// bits before it ever reaches the quad mantissa.
func decimalToQuadBits(s string) (*big.Int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	f, _, err := big.ParseFloat(s, 10, quadWorkPrec, big.ToNearestEven)
	if err != nil {
		return nil, err
	}

	result := new(big.Int)
	if neg {
		result.SetUint64(1)
	}
	result.Lsh(result, 15)

	if f.Sign() == 0 {
		result.Lsh(result, 112)
		return result, nil
	}

	mant := new(big.Float).SetPrec(quadWorkPrec)
	rawExp := f.MantExp(mant) // f == mant * 2**rawExp, 0.5 <= mant < 1
	exp2 := int64(rawExp) - 1 // normalize to m in [1,2): f == m * 2**exp2

	m := new(big.Float).SetPrec(quadWorkPrec).Mul(mant, big.NewFloat(2))
	frac := new(big.Float).SetPrec(quadWorkPrec).Sub(m, big.NewFloat(1)) // in [0,1)

	scale := new(big.Float).SetPrec(quadWorkPrec).SetMantExp(big.NewFloat(1), 112)
	frac.Mul(frac, scale)
	frac.Add(frac, big.NewFloat(0.5)) // round to nearest
	fracInt, _ := frac.Int(nil)

	if fracInt.BitLen() > 112 {
		fracInt = new(big.Int)
		exp2++
	}

	exp128 := exp2 + 16383
	switch {
	case exp128 >= 0x7FFF:
		exp128 = 0x7FFF
		fracInt = new(big.Int)
	case exp128 <= 0:
		exp128 = 0
	}

	result.Or(result, big.NewInt(exp128))
	result.Lsh(result, 112)
	result.Or(result, fracInt)

	return result, nil
}
