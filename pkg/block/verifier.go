package block

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/circuits/choiceauth"
	"github.com/zksanta/engine/circuits/revealauth"
	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/gadgets"
	"github.com/zksanta/engine/pkg/txerr"
	"github.com/zksanta/engine/pkg/zkproof"
)

// ChoiceAuthAdapter satisfies txn.ChoiceAuthVerifier by building a
// public-only choiceauth.Circuit assignment from raw 64-byte fields and
// delegating to a *zkproof.Verifier.
type ChoiceAuthAdapter struct {
	verifier *zkproof.Verifier
}

// NewChoiceAuthAdapter wraps verifier for use as a txn.ChoiceAuthVerifier.
func NewChoiceAuthAdapter(verifier *zkproof.Verifier) *ChoiceAuthAdapter {
	return &ChoiceAuthAdapter{verifier: verifier}
}

// VerifyChoice checks proof against the ChoiceAuth circuit's public
// inputs, in the order spec §4.5 fixes: nullifier, root, choice,
// dh_pub_key, signature.
func (a *ChoiceAuthAdapter) VerifyChoice(proof []byte, nullifier, root, choice, dhPubKey, signature [config.PointSize]byte) (bool, error) {
	rootPoint, err := rootToGadgetPoint(root)
	if err != nil {
		return false, fmt.Errorf("%w: decode merkle root: %v", txerr.ErrMalformedInput, err)
	}

	assignment := &choiceauth.Circuit{
		Nullifier: bytesToVars(nullifier),
		Choice:    bytesToVars(choice),
		DHPubKey:  bytesToVars(dhPubKey),
		Signature: bytesToVars(signature),
		Root:      rootPoint,
	}

	ok, err := a.verifier.Verify(proof, assignment)
	if err != nil {
		return false, fmt.Errorf("%w: %v", txerr.ErrProver, err)
	}
	return ok, nil
}

// RevealAuthAdapter satisfies txn.RevealAuthVerifier the same way, for the
// RevealAuth circuit.
type RevealAuthAdapter struct {
	verifier *zkproof.Verifier
}

// NewRevealAuthAdapter wraps verifier for use as a txn.RevealAuthVerifier.
func NewRevealAuthAdapter(verifier *zkproof.Verifier) *RevealAuthAdapter {
	return &RevealAuthAdapter{verifier: verifier}
}

// VerifyReveal checks proof against the RevealAuth circuit's public
// inputs: pub_key, ciphertext_hash, dh_pub_key, signature.
func (a *RevealAuthAdapter) VerifyReveal(proof []byte, pubKey, ciphertextHash, dhPubKey, signature [config.PointSize]byte) (bool, error) {
	assignment := &revealauth.Circuit{
		PubKey:         bytesToVars(pubKey),
		CiphertextHash: bytesToVars(ciphertextHash),
		DHPubKey:       bytesToVars(dhPubKey),
		Signature:      bytesToVars(signature),
	}

	ok, err := a.verifier.Verify(proof, assignment)
	if err != nil {
		return false, fmt.Errorf("%w: %v", txerr.ErrProver, err)
	}
	return ok, nil
}

// bytesToVars lifts a 64-byte field into the per-byte witness shape the
// circuits expect.
func bytesToVars(b [config.PointSize]byte) [config.PointSize]frontend.Variable {
	var out [config.PointSize]frontend.Variable
	for i, by := range b {
		out[i] = int(by)
	}
	return out
}

// rootToGadgetPoint decodes a canonical 64-byte point and lifts its
// coordinates into the witness shape circuits/*/circuit.go's Root field
// expects, mirroring circuits/choiceauth/witness.go's pointToVars helper.
func rootToGadgetPoint(root [config.PointSize]byte) (gadgets.Point, error) {
	p, err := codec.Decode(root[:])
	if err != nil {
		return gadgets.Point{}, err
	}
	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)
	return gadgets.Point{X: &x, Y: &y}, nil
}
