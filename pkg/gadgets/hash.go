package gadgets

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	tedwards "github.com/consensys/gnark/std/algebra/native/twistededwards"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/pedersen"
)

// Point is an in-circuit affine point on the embedded curve.
type Point = tedwards.Point

type constEntry struct{ X, Y *big.Int }
type constTable [config.NumWindows][config.WindowSize]constEntry

// buildTable converts a pkg/pedersen.Params generator table into circuit
// constants. Since the table is a fixed nothing-up-my-sleeve value
// (DESIGN.md OQ-1) it is embedded as constants, not threaded through as a
// witness — the same way CRHParametersVar treats Pedersen parameters in
// the original implementation.
func buildTable(p *pedersen.Params) constTable {
	var t constTable
	for w := 0; w < config.NumWindows; w++ {
		for i := 0; i < config.WindowSize; i++ {
			var x, y big.Int
			p.Table[w][i].X.BigInt(&x)
			p.Table[w][i].Y.BigInt(&y)
			t[w][i] = constEntry{X: &x, Y: &y}
		}
	}
	return t
}

// Hasher is the in-circuit twin of pkg/pedersen: H1/H2/H2c built from the
// same constant generator tables and the embedded twisted Edwards curve
// gadget.
type Hasher struct {
	api   frontend.API
	curve tedwards.Curve
	h1    constTable
	h2    constTable
}

// NewHasher constructs a Hasher bound to api and curve, deriving the same
// constant generator tables pkg/pedersen computes out of circuit.
func NewHasher(api frontend.API, curve tedwards.Curve) *Hasher {
	return &Hasher{
		api:   api,
		curve: curve,
		h1:    buildTable(pedersen.H1Params()),
		h2:    buildTable(pedersen.H2Params()),
	}
}

// windowedHash is the in-circuit twin of pkg/pedersen.windowedHash: bits
// must already be zero-padded to exactly config.MaxHashInputBits entries.
func (h *Hasher) windowedHash(t constTable, bits []frontend.Variable) Point {
	acc := Point{X: 0, Y: 1} // curve identity (0, 1)

	for w := 0; w < config.NumWindows; w++ {
		for i := 0; i < config.WindowSize; i++ {
			idx := w*config.WindowSize + i
			term := Point{X: t[w][i].X, Y: t[w][i].Y}
			sum := h.curve.Add(acc, term)
			acc = Point{
				X: h.api.Select(bits[idx], sum.X, acc.X),
				Y: h.api.Select(bits[idx], sum.Y, acc.Y),
			}
		}
	}
	return acc
}

// H1 hashes UInt8 witnesses (zero-padded to the full window count) to a
// point.
func (h *Hasher) H1(bytes []frontend.Variable) Point {
	bits := BytesToBits(h.api, bytes)
	bits = PadBits(bits, config.MaxHashInputBits)
	return h.windowedHash(h.h1, bits)
}

// H2c compresses two already-hashed points, matching pkg/pedersen.H2c:
// each point is encoded to config.PointSize bytes in-circuit and the two
// encodings concatenate to exactly config.MaxHashInputBits bits.
func (h *Hasher) H2c(l, r Point) Point {
	lBytes := EncodePoint(h.api, l.X, l.Y)
	rBytes := EncodePoint(h.api, r.X, r.Y)

	bits := make([]frontend.Variable, 0, config.MaxHashInputBits)
	bits = append(bits, BytesToBits(h.api, lBytes[:])...)
	bits = append(bits, BytesToBits(h.api, rBytes[:])...)
	return h.windowedHash(h.h2, bits)
}

// H2 hashes two UInt8 byte slices via H1 pre-hashing, matching
// pkg/pedersen.H2.
func (h *Hasher) H2(left, right []frontend.Variable) Point {
	return h.H2c(h.H1(left), h.H1(right))
}

// EncodePoint exposes the point-to-bytes gadget bound to this Hasher's
// api, for circuits that need a derived point's raw byte encoding (e.g. as
// a public input).
func (h *Hasher) EncodePoint(p Point) [config.PointSize]frontend.Variable {
	return EncodePoint(h.api, p.X, p.Y)
}
