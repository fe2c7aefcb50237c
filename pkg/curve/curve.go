// Package curve wraps the twisted Edwards curve embedded in BN254's scalar
// field — the same curve the teacher demonstrated via EdDSA (tedwards.BN254)
// — giving the rest of the engine a small, protocol-specific point API
// instead of reaching into gnark-crypto directly everywhere.
package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// Point is an affine point on the embedded twisted Edwards curve.
type Point struct {
	X, Y fr.Element
}

// Base returns the curve's base generator point.
func Base() Point {
	params := twistededwards.GetEdwardsCurve()
	return Point{X: params.Base.X, Y: params.Base.Y}
}

// Identity returns the curve's neutral element (0, 1).
func Identity() Point {
	var p Point
	p.Y.SetOne()
	return p
}

func (p Point) toAffine() twistededwards.PointAffine {
	return twistededwards.PointAffine{X: p.X, Y: p.Y}
}

func fromAffine(a twistededwards.PointAffine) Point {
	return Point{X: a.X, Y: a.Y}
}

// Add returns p + q.
func Add(p, q Point) Point {
	pa, qa := p.toAffine(), q.toAffine()
	var res twistededwards.PointAffine
	res.Add(&pa, &qa)
	return fromAffine(res)
}

// ScalarMul returns scalar * p.
func ScalarMul(p Point, scalar *big.Int) Point {
	pa := p.toAffine()
	var res twistededwards.PointAffine
	res.ScalarMultiplication(&pa, scalar)
	return fromAffine(res)
}

// IsOnCurve reports whether p satisfies the curve equation.
func (p Point) IsOnCurve() bool {
	a := p.toAffine()
	return a.IsOnCurve()
}

// Equal reports whether p and q are the same affine point.
func (p Point) Equal(q Point) bool {
	return p.X.Equal(&q.X) && p.Y.Equal(&q.Y)
}

// FieldModulus returns the embedded curve's base field modulus (== BN254's
// scalar field order), used by callers that need the exact bit length of a
// field element (e.g. the point codec's 255-bit packing).
func FieldModulus() *big.Int {
	return fr.Modulus()
}
