package txn

import (
	"fmt"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/pedersen"
	"github.com/zksanta/engine/pkg/txerr"
)

// StateView exposes the read-only BlockState queries verify needs (spec
// §4.7), independent of pkg/block's concrete State type so this package
// has no dependency on it.
type StateView interface {
	HasLeaf(pubKey [config.PointSize]byte) bool
	IsUnclaimed(pubKey [config.PointSize]byte) bool
	IsNullifierUsed(nullifier [config.PointSize]byte) bool
	IsRevealed(pubKey [config.PointSize]byte) bool
	MerkleRoot() [config.PointSize]byte
}

// StateMutator extends StateView with the mutations update_state applies.
type StateMutator interface {
	StateView
	AddLeaf(pubKey [config.PointSize]byte)
	AddNullifier(nullifier [config.PointSize]byte)
	RemoveUnclaimed(pubKey [config.PointSize]byte)
	AddRevealed(pubKey [config.PointSize]byte, ciphertext []byte)
}

// ChoiceAuthVerifier checks a ChoiceAuth Groth16 proof against its public
// inputs, in the field order spec §4.5 names: nullifier, root, choice,
// dh_pub_key, signature.
type ChoiceAuthVerifier interface {
	VerifyChoice(proof []byte, nullifier, root, choice, dhPubKey, signature [config.PointSize]byte) (bool, error)
}

// RevealAuthVerifier checks a RevealAuth Groth16 proof against its public
// inputs: pub_key, ciphertext_hash, dh_pub_key, signature.
type RevealAuthVerifier interface {
	VerifyReveal(proof []byte, pubKey, ciphertextHash, dhPubKey, signature [config.PointSize]byte) (bool, error)
}

// Verify implements verify(tx, BlockState) -> bool from spec §4.7. An
// unknown kind is simply invalid (not an error); zk-verifier or hashing
// failures are reported as errors distinct from a structurally-valid but
// rejected transaction.
func Verify(tx Transaction, state StateView, ca ChoiceAuthVerifier, ra RevealAuthVerifier) (bool, error) {
	switch tx.Kind {
	case KindGenesis:
		return true, nil

	case KindEnter:
		pubKey := [config.PointSize]byte(tx.Data.A)
		return !state.HasLeaf(pubKey), nil

	case KindChoice:
		choicePubKey := [config.PointSize]byte(tx.Data.A)
		nullifier := [config.PointSize]byte(tx.Data.B)
		dhPubKey := [config.PointSize]byte(tx.Data.C)
		signature := [config.PointSize]byte(tx.Data.D)
		proof := tx.Data.E

		if state.IsNullifierUsed(nullifier) {
			return false, nil
		}
		if !state.IsUnclaimed(choicePubKey) {
			return false, nil
		}

		ok, err := ca.VerifyChoice(proof, nullifier, state.MerkleRoot(), choicePubKey, dhPubKey, signature)
		if err != nil {
			return false, fmt.Errorf("%w: choice auth verify: %v", txerr.ErrProver, err)
		}
		return ok, nil

	case KindReveal:
		pubKey := [config.PointSize]byte(tx.Data.A)
		ctHash := [config.PointSize]byte(tx.Data.B)
		dhPubKey := [config.PointSize]byte(tx.Data.C)
		signature := [config.PointSize]byte(tx.Data.D)
		ciphertext := tx.Data.E

		if !state.HasLeaf(pubKey) {
			return false, nil
		}
		if state.IsRevealed(pubKey) {
			return false, nil
		}

		hashed, err := pedersen.H1(ciphertext)
		if err != nil {
			return false, fmt.Errorf("%w: hash ciphertext: %v", txerr.ErrMalformedInput, err)
		}
		if codec.Encode(hashed) != ctHash {
			return false, nil
		}

		ok, err := ra.VerifyReveal(tx.Data.F, pubKey, ctHash, dhPubKey, signature)
		if err != nil {
			return false, fmt.Errorf("%w: reveal auth verify: %v", txerr.ErrProver, err)
		}
		return ok, nil

	default:
		return false, nil
	}
}

// UpdateState implements update_state(tx, &mut BlockState) from spec
// §4.7. Callers MUST only invoke this after Verify has returned true for
// the same (tx, state) pair.
func UpdateState(tx Transaction, state StateMutator) {
	switch tx.Kind {
	case KindEnter:
		pubKey := [config.PointSize]byte(tx.Data.A)
		state.AddLeaf(pubKey)

	case KindChoice:
		nullifier := [config.PointSize]byte(tx.Data.B)
		choicePubKey := [config.PointSize]byte(tx.Data.A)
		state.AddNullifier(nullifier)
		state.RemoveUnclaimed(choicePubKey)

	case KindReveal:
		pubKey := [config.PointSize]byte(tx.Data.A)
		state.AddRevealed(pubKey, tx.Data.E)
	}
}
