// Package codec implements the canonical 64-byte encoding of an affine
// point on the embedded curve (spec §4.1): 255 little-endian bits of x,
// 255 little-endian bits of y, two zero padding bits, packed little-endian
// within each byte. Both the out-of-circuit encoder here and the in-circuit
// gadget in pkg/gadgets/codec.go must agree bit-for-bit.
package codec

import (
	"fmt"
	"math/big"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/curve"
)

const coordBits = 255

// PubKey64 is the 64-byte packed encoding of an affine point; it is the
// wire type for pub-keys, nullifiers, dh_pub_keys and signatures (spec §6).
type PubKey64 = [config.PointSize]byte

// Encode packs an affine point into its canonical 64-byte form.
func Encode(p curve.Point) [config.PointSize]byte {
	var bits [2*coordBits + 2]bool

	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)

	writeBits(bits[0:coordBits], &x)
	writeBits(bits[coordBits:2*coordBits], &y)
	// bits[2*coordBits], bits[2*coordBits+1] stay false: the two zero pad bits.

	var out [config.PointSize]byte
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// Decode unpacks bytes produced by Encode back into an affine point. It
// returns an error (wrapping txerr.ErrMalformedInput semantics is the
// caller's responsibility, per spec §7 — this package only reports the
// structural cause) if the bytes don't decode to a point on the curve.
func Decode(data []byte) (curve.Point, error) {
	if len(data) != config.PointSize {
		return curve.Point{}, fmt.Errorf("point codec: expected %d bytes, got %d", config.PointSize, len(data))
	}

	var bits [config.PointSize * 8]bool
	for i := range bits {
		bits[i] = data[i/8]&(1<<uint(i%8)) != 0
	}

	x := readBits(bits[0:coordBits])
	y := readBits(bits[coordBits : 2*coordBits])

	var p curve.Point
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)

	if !p.IsOnCurve() {
		return curve.Point{}, fmt.Errorf("point codec: decoded coordinates are not on the curve")
	}
	return p, nil
}

func writeBits(dst []bool, v *big.Int) {
	for i := range dst {
		dst[i] = v.Bit(i) == 1
	}
}

func readBits(src []bool) *big.Int {
	v := new(big.Int)
	for i, b := range src {
		if b {
			v.SetBit(v, i, 1)
		}
	}
	return v
}
