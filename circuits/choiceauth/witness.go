package choiceauth

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/curve"
	"github.com/zksanta/engine/pkg/gadgets"
	"github.com/zksanta/engine/pkg/merkle"
	"github.com/zksanta/engine/pkg/primitives"
)

// Witness holds a fully populated Circuit assignment together with the
// derived public values a caller typically needs to build a proof request.
type Witness struct {
	Assignment Circuit
	PubKey     codec.PubKey64
	Signature  codec.PubKey64
}

// PrepareWitness derives aux_sk, pub_key, the Merkle authentication path
// and the expected signature from the minimal independent inputs (the
// prover's secret key and nullifier, the tree it entered, the index of the
// prover's own leaf in that tree, the choice and the ephemeral
// Diffie-Hellman public key),
// and returns a ready-to-use circuit assignment.
func PrepareWitness(secretKey, nullifier []byte, tree *merkle.Tree, leafIndex int, choice, dhPubKey []byte) (*Witness, error) {
	pubKey, err := primitives.DerivePubKey(secretKey, nullifier)
	if err != nil {
		return nil, fmt.Errorf("choiceauth: derive pub key: %w", err)
	}

	sig, err := primitives.SignChoice(secretKey, nullifier, choice, dhPubKey)
	if err != nil {
		return nil, fmt.Errorf("choiceauth: sign choice: %w", err)
	}

	proofBytes, err := tree.Proof(leafIndex)
	if err != nil {
		return nil, fmt.Errorf("choiceauth: merkle proof: %w", err)
	}
	proof, err := merkle.ParseProof(proofBytes)
	if err != nil {
		return nil, fmt.Errorf("choiceauth: parse merkle proof: %w", err)
	}

	root := tree.Root()
	rootPoint, err := codec.Decode(root[:])
	if err != nil {
		return nil, fmt.Errorf("choiceauth: decode root: %w", err)
	}

	var assignment Circuit
	assignment.Nullifier = bytesToVars(nullifier)
	assignment.Root = pointToVars(rootPoint)
	assignment.Choice = bytesToVars(choice)
	assignment.DHPubKey = bytesToVars(dhPubKey)
	assignment.Signature = bytesToVars(sig[:])
	assignment.SecretKey = bytesToVars(secretKey)

	idx := leafIndex
	for lvl := 0; lvl < config.MerkleDepth; lvl++ {
		assignment.Siblings[lvl] = pointToVars(proof.Siblings[lvl])
		assignment.Directions[lvl] = idx % 2
		idx /= 2
	}

	return &Witness{Assignment: assignment, PubKey: pubKey, Signature: sig}, nil
}

func bytesToVars(b []byte) [config.PointSize]frontend.Variable {
	var out [config.PointSize]frontend.Variable
	for i := range out {
		if i < len(b) {
			out[i] = b[i]
		} else {
			out[i] = 0
		}
	}
	return out
}

func pointToVars(p curve.Point) gadgets.Point {
	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)
	return gadgets.Point{X: &x, Y: &y}
}
