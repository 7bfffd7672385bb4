/*
   axx - Arbitrary-precision integer helpers.

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import "math/big"

var bigOne = big.NewInt(1)

// floorDivMod returns (q, r) such that q*y + r == x and r has the same
// sign as y (or is zero) - Python's floor // and % semantics. big.Int's
// own QuoRem truncates toward zero, so when the remainder is non-zero
// and its sign differs from y's, adjust q down by one and r by y.
func floorDivMod(x, y *big.Int) (*big.Int, *big.Int, bool) {
	if y.Sign() == 0 {
		return nil, nil, false
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(x, y, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, bigOne)
		r.Add(r, y)
	}
	return q, r, true
}

// signExtend sign-extends x as if it were an n-bit two's-complement value:
// if bit n-1 is set, subtract 2^n. Matches the x'n postfix operator.
func signExtend(x *big.Int, n int64) *big.Int {
	if n <= 0 {
		return new(big.Int).Set(x)
	}
	mask := new(big.Int).Lsh(bigOne, uint(n))
	mask.Sub(mask, bigOne)
	v := new(big.Int).And(x, mask)
	signBit := new(big.Int).Lsh(bigOne, uint(n-1))
	if v.Cmp(signBit) >= 0 {
		full := new(big.Int).Lsh(bigOne, uint(n))
		v.Sub(v, full)
	}
	return v
}

// maskBits truncates x to its low n bits, treated as unsigned.
func maskBits(x *big.Int, n int64) *big.Int {
	if n <= 0 {
		return big.NewInt(0)
	}
	mask := new(big.Int).Lsh(bigOne, uint(n))
	mask.Sub(mask, bigOne)
	return new(big.Int).And(x, mask)
}

