package bits

import "lukechampine.com/uint128"

// Uint128 is an unsigned 128 bit integer. It is the widest value the codec can move in one call.
type Uint128 = uint128.Uint128

// FromUint64 returns v as a Uint128.
func FromUint64(v uint64) Uint128 {
	return uint128.From64(v)
}

// Mask128 returns a Uint128 with the low width bits set. width >= 128 sets every bit.
func Mask128(width int) Uint128 {
	switch {
	case width <= 0:
		return uint128.Zero
	case width >= 128:
		return uint128.Max
	}
	return uint128.From64(1).Lsh(uint(width)).Sub64(1)
}

// Truncate returns u mod 2^width.
func Truncate(u Uint128, width int) Uint128 {
	return u.And(Mask128(width))
}
