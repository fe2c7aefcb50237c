package gadgets

import (
	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/config"
)

// VerifyMembership recomputes a Pedersen-hash Merkle root from leaf (as
// UInt8 witnesses), a fixed-depth sibling path and per-level direction
// bits (0 = leaf/accumulator is the left child, 1 = right), then asserts
// the result equals root. Mirrors pkg/merkle.VerifyMembership, and the
// direction-bit composition the teacher's MerkleProofCircuit used for its
// own fixed-depth authentication path.
func VerifyMembership(api frontend.API, h *Hasher, leaf []frontend.Variable, siblings [config.MerkleDepth]Point, directions [config.MerkleDepth]frontend.Variable, root Point) {
	acc := h.H1(leaf)

	for level := 0; level < config.MerkleDepth; level++ {
		sib := siblings[level]
		dir := directions[level]

		leftX := api.Select(dir, sib.X, acc.X)
		leftY := api.Select(dir, sib.Y, acc.Y)
		rightX := api.Select(dir, acc.X, sib.X)
		rightY := api.Select(dir, acc.Y, sib.Y)

		acc = h.H2c(Point{X: leftX, Y: leftY}, Point{X: rightX, Y: rightY})
	}

	api.AssertIsEqual(acc.X, root.X)
	api.AssertIsEqual(acc.Y, root.Y)
}
