// Package field details the field types and native container widths used by bitpack.
package field

import (
	"github.com/bearlytools/bitpack/languages/go/errors"
)

//go:generate stringer -type=Type -linecomment

// Type represents the kind of value a field's bits are interpreted as.
type Type uint8

const (
	FTUnknown Type = 0 // Unknown
	FTUint    Type = 1 // uint
	FTBool    Type = 2 // bool
	FTEnum    Type = 3 // enum
)

//go:generate stringer -type=NativeWidth -linecomment

// NativeWidth is an unsigned integer width that Go (or, for W128, a pair of uint64s)
// can hold natively. NativeWidth values are ordered: W8 < W16 < W32 < W64 < W128.
type NativeWidth uint8

const (
	WUnknown NativeWidth = 0 // unknown
	W8       NativeWidth = 1 // uint8
	W16      NativeWidth = 2 // uint16
	W32      NativeWidth = 3 // uint32
	W64      NativeWidth = 4 // uint64
	W128     NativeWidth = 5 // uint128
)

// NativeWidths is every valid NativeWidth in ascending order.
var NativeWidths = []NativeWidth{W8, W16, W32, W64, W128}

var nativeBits = [...]int{0, 8, 16, 32, 64, 128}

// MaxBits is the largest width BestFit() will accept.
const MaxBits = 128

// Bits is the number of bits in the width.
func (w NativeWidth) Bits() int {
	if int(w) >= len(nativeBits) {
		return 0
	}
	return nativeBits[w]
}

// BestFit returns the smallest NativeWidth that can hold widthBits bits.
func BestFit(widthBits int) (NativeWidth, error) {
	if widthBits < 0 {
		return WUnknown, errors.Errorf(errors.KindUnsupportedWidth, "", "width %d is negative", widthBits)
	}
	for _, w := range NativeWidths {
		if w.Bits() >= widthBits {
			return w, nil
		}
	}
	return WUnknown, errors.Errorf(errors.KindUnsupportedWidth, "", "width %d exceeds %d bits", widthBits, MaxBits)
}

// MustBestFit is BestFit() that panics on error.
func MustBestFit(widthBits int) NativeWidth {
	w, err := BestFit(widthBits)
	if err != nil {
		panic(err)
	}
	return w
}
