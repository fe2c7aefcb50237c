// Package pedersen implements the two windowed Pedersen collision-resistant
// hashes the engine is built on (spec §4.2): H1 hashes arbitrary byte
// strings to a curve point, and H2/H2c compress two points into one. Both
// are parameterised by independent nothing-up-my-sleeve generator tables
// (params.go).
package pedersen

import (
	"fmt"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/curve"
)

// H1 hashes an arbitrary byte string to a curve point using the windowed
// Pedersen CRH. Inputs longer than config.MaxHashInputBytes are rejected
// per spec §4.2.
func H1(data []byte) (curve.Point, error) {
	if len(data)*8 > config.MaxHashInputBits {
		return curve.Point{}, fmt.Errorf("pedersen: input is %d bits, exceeds cap of %d", len(data)*8, config.MaxHashInputBits)
	}
	return windowedHash(H1Params(), data), nil
}

// H2 hashes two byte strings by pre-hashing each with H1 and compressing
// the results with the two-to-one CRH: H2(l, r) = H2c(H1(l), H1(r)).
func H2(left, right []byte) (curve.Point, error) {
	l, err := H1(left)
	if err != nil {
		return curve.Point{}, fmt.Errorf("pedersen: H2 left operand: %w", err)
	}
	r, err := H1(right)
	if err != nil {
		return curve.Point{}, fmt.Errorf("pedersen: H2 right operand: %w", err)
	}
	return H2c(l, r), nil
}

// H2c compresses two already-hashed points without an H1 pre-hash step. The
// two 64-byte point encodings concatenate to exactly config.MaxHashInputBits
// bits, so no padding is needed.
func H2c(left, right curve.Point) curve.Point {
	lEnc := codec.Encode(left)
	rEnc := codec.Encode(right)

	buf := make([]byte, 0, 2*config.PointSize)
	buf = append(buf, lEnc[:]...)
	buf = append(buf, rEnc[:]...)

	return windowedHash(H2Params(), buf)
}

// windowedHash applies the generic arkworks-style windowed Pedersen
// algorithm: the input is chunked into config.WindowSize-bit groups
// (little-endian bit order, zero-padded to fill every window), and for
// each set bit the corresponding table entry is added into the
// accumulator.
func windowedHash(params *Params, data []byte) curve.Point {
	acc := curve.Identity()

	for w := 0; w < config.NumWindows; w++ {
		for i := 0; i < config.WindowSize; i++ {
			bitIndex := w*config.WindowSize + i
			if bitAt(data, bitIndex) {
				acc = curve.Add(acc, params.Table[w][i])
			}
		}
	}
	return acc
}

// bitAt returns the little-endian bit of data at position idx (bit 0 is the
// LSB of the first byte), or false if idx falls past the end of data — this
// is the zero-padding that fills out a partial final window.
func bitAt(data []byte, idx int) bool {
	byteIdx := idx / 8
	if byteIdx >= len(data) {
		return false
	}
	return data[byteIdx]&(1<<uint(idx%8)) != 0
}
