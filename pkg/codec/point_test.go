package codec

import (
	"math/big"
	"testing"

	"github.com/zksanta/engine/pkg/curve"
)

func samplePoints(t *testing.T) []curve.Point {
	t.Helper()
	base := curve.Base()
	pts := []curve.Point{curve.Identity(), base}
	for _, s := range []int64{2, 3, 17, 12345, 999999937} {
		pts = append(pts, curve.ScalarMul(base, big.NewInt(s)))
	}
	return pts
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for i, p := range samplePoints(t) {
		enc := Encode(p)
		got, err := Decode(enc[:])
		if err != nil {
			t.Fatalf("point %d: decode failed: %v", i, err)
		}
		if !got.Equal(p) {
			t.Fatalf("point %d: round-trip mismatch: got %+v want %+v", i, got, p)
		}
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	pts := samplePoints(t)
	for i := range pts {
		for j := range pts {
			if i == j {
				continue
			}
			if pts[i].Equal(pts[j]) {
				continue
			}
			a, b := Encode(pts[i]), Encode(pts[j])
			if a == b {
				t.Fatalf("distinct points %d,%d encoded identically", i, j)
			}
		}
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestDecodeRejectsOffCurve(t *testing.T) {
	var junk [64]byte
	for i := range junk {
		junk[i] = 0xAB
	}
	if _, err := Decode(junk[:]); err == nil {
		t.Fatal("expected error for off-curve bytes")
	}
}

func TestEncodePaddingBitsAreZero(t *testing.T) {
	// The top two bits of the 512-bit layout (bits 510, 511, i.e. the top
	// two bits of the last byte) must always be zero: the in-circuit
	// encode_point gadget assumes this and would diverge from this encoder
	// otherwise (spec §9, "Padding & bit-length").
	for _, p := range samplePoints(t) {
		enc := Encode(p)
		if enc[63]&0xC0 != 0 {
			t.Fatalf("point %+v: reserved padding bits not zero: last byte = %08b", p, enc[63])
		}
	}
}
