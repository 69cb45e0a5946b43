package field

import (
	"testing"

	"github.com/bearlytools/bitpack/languages/go/errors"
)

func TestBestFit(t *testing.T) {
	tests := []struct {
		width int
		want  NativeWidth
	}{
		{0, W8},
		{1, W8},
		{8, W8},
		{9, W16},
		{16, W16},
		{17, W32},
		{24, W32},
		{32, W32},
		{33, W64},
		{64, W64},
		{65, W128},
		{128, W128},
	}

	for _, test := range tests {
		got, err := BestFit(test.width)
		if err != nil {
			t.Errorf("TestBestFit(%d): got err == %s, want err == nil", test.width, err)
			continue
		}
		if got != test.want {
			t.Errorf("TestBestFit(%d): got %s, want %s", test.width, got, test.want)
		}
		if got.Bits() < test.width {
			t.Errorf("TestBestFit(%d): %s has only %d bits", test.width, got, got.Bits())
		}
	}
}

func TestBestFitUnsupported(t *testing.T) {
	for _, width := range []int{-1, 129, 256} {
		_, err := BestFit(width)
		if !errors.Is(err, errors.KindUnsupportedWidth) {
			t.Errorf("TestBestFitUnsupported(%d): got err == %v, want KindUnsupportedWidth", width, err)
		}
	}
}

func TestBestFitMonotonic(t *testing.T) {
	for w1 := 0; w1 <= MaxBits; w1++ {
		for w2 := w1; w2 <= MaxBits; w2++ {
			if MustBestFit(w1) > MustBestFit(w2) {
				t.Fatalf("TestBestFitMonotonic: BestFit(%d) == %s > BestFit(%d) == %s", w1, MustBestFit(w1), w2, MustBestFit(w2))
			}
		}
	}
}

func TestBestFitMinimal(t *testing.T) {
	for w := 0; w <= MaxBits; w++ {
		got := MustBestFit(w)
		for _, smaller := range NativeWidths {
			if smaller >= got {
				break
			}
			if smaller.Bits() >= w {
				t.Fatalf("TestBestFitMinimal(%d): got %s, but %s also fits", w, got, smaller)
			}
		}
	}
}
