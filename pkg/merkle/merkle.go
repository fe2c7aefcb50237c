// Package merkle implements the fixed-depth leaf-accumulator tree (spec
// §4.3): H1-hashed leaves, H2c-compressed inner nodes, zero-padded to
// config.MerkleMaxLeaves. Structurally this generalizes the teacher's
// pkg/merkle.SparseMerkleTree (same fixed-depth, zero-subtree-hash-chain
// design) from Poseidon2 to the windowed Pedersen hash family.
package merkle

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/curve"
	"github.com/zksanta/engine/pkg/pedersen"
)

// Tree is a fixed-depth-config.MerkleDepth binary Merkle tree of pub-key
// (or other 64-byte) leaves.
type Tree struct {
	levels [][]curve.Point // levels[0] = leaf digests, levels[MerkleDepth] = {root}
}

// zeroLeaf is the canonical padding leaf: 64 zero bytes.
var zeroLeaf [config.PointSize]byte

// Build constructs a tree over leaves, padding up to config.MerkleMaxLeaves
// with the zero leaf. It fails if more leaves are supplied than the tree
// can hold.
func Build(leaves [][]byte) (*Tree, error) {
	if len(leaves) > config.MerkleMaxLeaves {
		return nil, fmt.Errorf("merkle: %d leaves exceeds capacity %d", len(leaves), config.MerkleMaxLeaves)
	}

	padded := make([][]byte, config.MerkleMaxLeaves)
	for i := range padded {
		if i < len(leaves) {
			padded[i] = leaves[i]
		} else {
			padded[i] = zeroLeaf[:]
		}
	}

	digests, err := hashLeaves(padded)
	if err != nil {
		return nil, fmt.Errorf("merkle: hash leaves: %w", err)
	}

	t := &Tree{levels: make([][]curve.Point, config.MerkleDepth+1)}
	t.levels[0] = digests
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		t.levels[lvl+1] = hashLevel(t.levels[lvl])
	}
	return t, nil
}

// hashLeaves computes H1(leaf) for every leaf in parallel, mirroring the
// teacher's worker-channel fan-out in GenerateSparseMerkleTree.
func hashLeaves(leaves [][]byte) ([]curve.Point, error) {
	out := make([]curve.Point, len(leaves))
	errs := make([]error, len(leaves))

	workers := runtime.NumCPU()
	if workers > len(leaves) {
		workers = len(leaves)
	}
	if workers < 1 {
		workers = 1
	}

	work := make(chan int, len(leaves))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				out[i], errs[i] = pedersen.H1(leaves[i])
			}
		}()
	}
	for i := range leaves {
		work <- i
	}
	close(work)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
	}
	return out, nil
}

func hashLevel(level []curve.Point) []curve.Point {
	next := make([]curve.Point, len(level)/2)
	for i := range next {
		next[i] = pedersen.H2c(level[2*i], level[2*i+1])
	}
	return next
}

// Root returns the canonically-encoded root of the tree.
func (t *Tree) Root() [config.PointSize]byte {
	return codec.Encode(t.levels[config.MerkleDepth][0])
}

// Update rehashes the leaf at index and recomputes the config.MerkleDepth
// nodes along its authentication path.
func (t *Tree) Update(index int, leaf []byte) error {
	if index < 0 || index >= config.MerkleMaxLeaves {
		return fmt.Errorf("merkle: index %d out of range", index)
	}
	digest, err := pedersen.H1(leaf)
	if err != nil {
		return fmt.Errorf("merkle: hash leaf: %w", err)
	}

	t.levels[0][index] = digest
	idx := index
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		sibling := idx ^ 1
		left, right := idx, sibling
		if idx%2 == 1 {
			left, right = sibling, idx
		}
		parentIdx := idx / 2
		t.levels[lvl+1][parentIdx] = pedersen.H2c(t.levels[lvl][left], t.levels[lvl][right])
		idx = parentIdx
	}
	return nil
}

// Proof is a deserialized Merkle authentication path (spec §4.3). Siblings
// holds the config.MerkleDepth real sibling hashes, level 0 first; the
// reserved trailing field from the wire format is not modeled here (see
// DESIGN.md OQ-6) since it carries no information. ParseProof rejects a
// proof whose reserved field is not all zero.
type Proof struct {
	Siblings  [config.MerkleDepth]curve.Point
	LeafIndex uint32
}

// Proof returns the serialized authentication path for the leaf at index:
// config.MerkleDepth sibling hashes (level 0 first), one reserved all-zero
// 64-byte field, and a little-endian uint32 leaf index — total
// config.MerkleProofSize bytes.
func (t *Tree) Proof(index int) ([]byte, error) {
	if index < 0 || index >= config.MerkleMaxLeaves {
		return nil, fmt.Errorf("merkle: index %d out of range", index)
	}

	out := make([]byte, 0, config.MerkleProofSize)
	idx := index
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		sibling := idx ^ 1
		enc := codec.Encode(t.levels[lvl][sibling])
		out = append(out, enc[:]...)
		idx /= 2
	}
	var reserved [config.PointSize]byte
	out = append(out, reserved[:]...)

	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], uint32(index))
	out = append(out, idxBuf[:]...)
	return out, nil
}

// ParseProof deserializes bytes produced by Tree.Proof.
func ParseProof(data []byte) (*Proof, error) {
	if len(data) != config.MerkleProofSize {
		return nil, fmt.Errorf("merkle: proof is %d bytes, expected %d", len(data), config.MerkleProofSize)
	}

	p := &Proof{}
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		start := lvl * config.PointSize
		pt, err := codec.Decode(data[start : start+config.PointSize])
		if err != nil {
			return nil, fmt.Errorf("merkle: sibling %d: %w", lvl, err)
		}
		p.Siblings[lvl] = pt
	}
	reservedStart := config.MerkleDepth * config.PointSize
	for _, b := range data[reservedStart : reservedStart+config.PointSize] {
		if b != 0 {
			return nil, fmt.Errorf("merkle: reserved proof field is not zero")
		}
	}
	p.LeafIndex = binary.LittleEndian.Uint32(data[config.MerkleProofSize-4:])
	return p, nil
}

// VerifyMembership recomputes the root from leaf and proof and compares it
// to root. This is the out-of-circuit twin of the in-circuit
// merkle_path.verify_membership gadget.
func VerifyMembership(leaf []byte, proof *Proof, root [config.PointSize]byte) (bool, error) {
	current, err := pedersen.H1(leaf)
	if err != nil {
		return false, fmt.Errorf("merkle: hash leaf: %w", err)
	}

	idx := proof.LeafIndex
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		sibling := proof.Siblings[lvl]
		if idx%2 == 0 {
			current = pedersen.H2c(current, sibling)
		} else {
			current = pedersen.H2c(sibling, current)
		}
		idx /= 2
	}

	return codec.Encode(current) == root, nil
}
