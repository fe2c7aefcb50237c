package merkle

import (
	"bytes"
	"testing"

	"github.com/zksanta/engine/config"
)

func leafBytes(b byte) []byte {
	out := make([]byte, config.PointSize)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestBuildRejectsTooManyLeaves(t *testing.T) {
	leaves := make([][]byte, config.MerkleMaxLeaves+1)
	for i := range leaves {
		leaves[i] = leafBytes(byte(i))
	}
	if _, err := Build(leaves); err == nil {
		t.Fatal("expected error when leaves exceed tree capacity")
	}
}

func TestProofVerifiesAgainstRoot(t *testing.T) {
	leaves := [][]byte{leafBytes(1), leafBytes(2), leafBytes(3)}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()

	for i, leaf := range leaves {
		proofBytes, err := tree.Proof(i)
		if err != nil {
			t.Fatalf("leaf %d: proof: %v", i, err)
		}
		if len(proofBytes) != config.MerkleProofSize {
			t.Fatalf("leaf %d: proof length %d, want %d", i, len(proofBytes), config.MerkleProofSize)
		}
		proof, err := ParseProof(proofBytes)
		if err != nil {
			t.Fatalf("leaf %d: parse: %v", i, err)
		}
		ok, err := VerifyMembership(leaf, proof, root)
		if err != nil {
			t.Fatalf("leaf %d: verify: %v", i, err)
		}
		if !ok {
			t.Fatalf("leaf %d: membership proof did not verify", i)
		}
	}
}

func TestProofFailsForWrongLeaf(t *testing.T) {
	leaves := [][]byte{leafBytes(1), leafBytes(2)}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()

	proofBytes, err := tree.Proof(0)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ParseProof(proofBytes)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyMembership(leafBytes(99), proof, root)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("proof for leaf 0 must not verify against an unrelated leaf")
	}
}

func TestProofRejectsFlippedByte(t *testing.T) {
	leaves := [][]byte{leafBytes(1), leafBytes(2), leafBytes(3), leafBytes(4)}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()

	proofBytes, err := tree.Proof(2)
	if err != nil {
		t.Fatal(err)
	}

	for _, byteIdx := range []int{0, config.PointSize, config.MerkleProofSize - 5} {
		flipped := append([]byte(nil), proofBytes...)
		flipped[byteIdx] ^= 0xFF
		proof, err := ParseProof(flipped)
		if err != nil {
			// A structurally invalid flipped proof is an acceptable failure mode.
			continue
		}
		ok, err := VerifyMembership(leaves[2], proof, root)
		if err == nil && ok {
			t.Fatalf("flipping byte %d of the proof must not still verify", byteIdx)
		}
	}
}

func TestUpdateChangesRootAndProof(t *testing.T) {
	leaves := [][]byte{leafBytes(1), leafBytes(2)}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatal(err)
	}
	rootBefore := tree.Root()

	if err := tree.Update(1, leafBytes(42)); err != nil {
		t.Fatal(err)
	}
	rootAfter := tree.Root()

	if bytes.Equal(rootBefore[:], rootAfter[:]) {
		t.Fatal("updating a leaf must change the root")
	}

	proofBytes, err := tree.Proof(1)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ParseProof(proofBytes)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := VerifyMembership(leafBytes(42), proof, rootAfter)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("updated leaf must verify against the new root")
	}
}

func TestEmptyTreeHasDeterministicRoot(t *testing.T) {
	a, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Root() != b.Root() {
		t.Fatal("two empty trees must share the same zero-padded root")
	}
}
