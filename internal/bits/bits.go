// Package bits provides bit manipulation utilities and the bit-range codec that reads and
// writes packed fields. This is not a replacement for math/bits.
package bits

import (
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/exp/constraints"
)

// SetValue stores "val" in unsigned number "store" starting at bit "start" and
// ending at bit "end" (exclusive). If start >= end, this panics.
// This clears the existing bits in the range before setting the new value. Bits
// of val above end-start are not masked, callers must truncate val first.
func SetValue[I, U constraints.Unsigned](val I, store U, start, end uint64) U {
	if start >= end {
		panic("start cannot be >= end")
	}

	store = ClearBits(store, uint8(start), uint8(end))
	return store | U(val)<<start
}

// GetValue retrieves a value we stored with SetValue. store is the unsigned number we
// stored the value in. bitMask is the mask to apply to retrieve the value, made with
// Mask(start, end). start tells us how far the value must be shifted down.
func GetValue[U, U1 constraints.Unsigned](store U, bitMask U, start uint64) U1 {
	return U1((store & bitMask) >> start)
}

// GetBit gets a single bit value from "store" in position "pos", where position 0 is the
// least significant bit. true if set, false if not.
func GetBit[U constraints.Unsigned](store U, pos uint8) bool {
	if uint64(pos) >= sizeOf(store) {
		panic(fmt.Sprintf("can't GetBit() a %T position %d", store, pos))
	}
	return store&(1<<pos) != 0
}

// SetBit sets a single bit in "store" at position "pos" to value "val". If val is true,
// the bit is set to 1, if false, it is set to 0.
func SetBit[U constraints.Unsigned](store U, pos uint8, val bool) U {
	if uint64(pos) >= sizeOf(store) {
		panic(fmt.Sprintf("can't SetBit() a %T position %d", store, pos))
	}
	if val {
		return store | (1 << pos)
	}
	return store &^ (1 << pos)
}

// ClearBits clears all bits from "from" until "to".
func ClearBits[U constraints.Unsigned](store U, from, to uint8) U {
	if from >= to {
		return store
	}

	width := to - from

	var m uint64
	if width == 64 {
		// Avoid shifting by 64 (illegal in Go)
		m = ^uint64(0)
	} else {
		m = (uint64(1)<<width - 1) << from
	}

	return store &^ U(m)
}

// Mask creates a mask for setting, getting and clearing a set of bits.
// start is the bit location you wish to start at and end is the bit you wish to end at (exclusive).
// Index starts at 0.  So Mask(1, 4) will create a mask that includes bits at location 1 to 3.
// If start >= end, this will panic.
func Mask[U constraints.Unsigned](start, end uint64) U {
	var u U
	return setBits(u, start, end)
}

// setBits sets all bits to 1 from start (inclusive) to end(exclusive).
// If start >= end or end is past the width of I, this will panic.
func setBits[I constraints.Unsigned](n I, start, end uint64) I {
	size := sizeOf(n)

	if start >= end {
		panic("start cannot be >= end")
	}
	if end > size {
		panic(fmt.Sprintf("end %d exceeds width %d", end, size))
	}

	width := end - start

	var mask uint64
	if width == 64 {
		// Special case: shifting by 64 is illegal
		mask = ^uint64(0)
	} else {
		mask = (uint64(1)<<width - 1) << start
	}

	return n | I(mask)
}

// sizeOf returns the number of bits in the type of n.
func sizeOf[I constraints.Unsigned](n I) uint64 {
	switch any(n).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	case uint64:
		return 64
	case uint:
		return bits.UintSize
	}
	panic(fmt.Sprintf("n must be uint8/16/32/64, got %T", n))
}

// Binary returns each byte of bs as an 8 character binary string, most significant bit first.
func Binary(bs []byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = fmt.Sprintf("%08b", b)
	}
	return out
}

// BytesInBinary returns bs in binary with each byte separated by " | ".
func BytesInBinary(bs []byte) string {
	return strings.Join(Binary(bs), " | ")
}
