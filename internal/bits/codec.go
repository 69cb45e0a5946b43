package bits

import (
	"github.com/bearlytools/bitpack/languages/go/errors"
)

// MaxRange is the widest bit range ReadBits() and WriteBits() will handle.
const MaxRange = 128

// The codec addresses a []byte as a sequence of bits where bit 0 is the most significant
// bit of byte 0, bit 7 the least significant bit of byte 0, bit 8 the most significant bit
// of byte 1 and so on. A range [start, end) is read so that the bit at start becomes the
// highest order bit of the result.
//
// A range covers three kinds of bytes: a head byte that is only covered from some offset to
// its end, whole interior bytes, and a tail byte that is only covered up to some offset.
// When start and end are in the same byte, that byte is both head and tail. Interior bytes
// are copied whole, head and tail bytes are masked so that bits outside the range are
// never read and never changed.

// ReadBits returns the bits in [start, end) of buf.
func ReadBits(buf []byte, start, end int) (Uint128, error) {
	if err := checkRange(buf, start, end); err != nil {
		return Uint128{}, err
	}

	first, last := start/8, (end-1)/8

	var v Uint128
	for i := first; i <= last; i++ {
		lo, hi := chunk(i, first, last, start, end)
		n := hi - lo

		var b uint8
		if n == 8 {
			b = buf[i]
		} else {
			// The chunk occupies byte bits [8-hi, 8-lo) when counting from the least significant bit.
			shift := uint64(8 - hi)
			b = GetValue[uint8, uint8](buf[i], Mask[uint8](shift, uint64(8-lo)), shift)
		}
		v = v.Lsh(uint(n)).Or(FromUint64(uint64(b)))
	}
	return v, nil
}

// WriteBits writes the low end-start bits of v into [start, end) of buf. Bits of v above
// end-start are ignored. Bits of buf outside the range are not changed. If an error is
// returned, buf has not been modified.
func WriteBits(buf []byte, start, end int, v Uint128) error {
	if err := checkRange(buf, start, end); err != nil {
		return err
	}

	v = Truncate(v, end-start)
	first, last := start/8, (end-1)/8

	// Walk backwards so that each chunk is always the low bits of what is left of v.
	for i := last; i >= first; i-- {
		lo, hi := chunk(i, first, last, start, end)
		n := hi - lo

		b := uint8(v.Lo & (uint64(1)<<n - 1))
		if n == 8 {
			buf[i] = b
		} else {
			buf[i] = SetValue(b, buf[i], uint64(8-hi), uint64(8-lo))
		}
		v = v.Rsh(uint(n))
	}
	return nil
}

// ReadUint64 is ReadBits() for ranges of at most 64 bits.
func ReadUint64(buf []byte, start, end int) (uint64, error) {
	if end-start > 64 {
		return 0, errors.Errorf(errors.KindUnsupportedWidth, "", "range [%d, %d) is wider than 64 bits", start, end)
	}
	v, err := ReadBits(buf, start, end)
	if err != nil {
		return 0, err
	}
	return v.Lo, nil
}

// WriteUint64 is WriteBits() for values held in a uint64. Bits of v above end-start are ignored.
func WriteUint64(buf []byte, start, end int, v uint64) error {
	return WriteBits(buf, start, end, FromUint64(v))
}

// chunk returns the part of byte i that is inside [start, end) as bit offsets [lo, hi)
// counted from the most significant bit of the byte.
func chunk(i, first, last, start, end int) (lo, hi int) {
	lo, hi = 0, 8
	if i == first {
		lo = start - first*8
	}
	if i == last {
		hi = end - last*8
	}
	return lo, hi
}

func checkRange(buf []byte, start, end int) error {
	switch {
	case start >= end:
		return errors.Errorf(errors.KindEmptyRange, "", "range [%d, %d)", start, end)
	case start < 0 || end > len(buf)*8:
		return errors.Errorf(errors.KindOutOfBounds, "", "range [%d, %d) with a %d bit buffer", start, end, len(buf)*8)
	case end-start > MaxRange:
		return errors.Errorf(errors.KindUnsupportedWidth, "", "range [%d, %d) is wider than %d bits", start, end, MaxRange)
	}
	return nil
}
