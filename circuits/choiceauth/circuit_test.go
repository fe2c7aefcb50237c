package choiceauth_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/circuits/choiceauth"
	"github.com/zksanta/engine/pkg/merkle"
	"github.com/zksanta/engine/pkg/primitives"
	"github.com/zksanta/engine/pkg/setup"
)

func fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// TestChoiceAuthEndToEnd mirrors spec §8 scenario 1: sk=[1;64], nul=[5;64],
// choice=[3;64], dh=[9;64], over a depth-7 tree holding a single leaf
// (the prover's own derived pub_key). A flipped signature bit must make
// the assignment unsatisfiable.
func TestChoiceAuthEndToEnd(t *testing.T) {
	sk := fill(1, 64)
	nul := fill(5, 64)
	choice := fill(3, 64)
	dh := fill(9, 64)

	pubKey, err := primitives.DerivePubKey(sk, nul)
	if err != nil {
		t.Fatalf("derive pub key: %v", err)
	}
	tree, err := merkle.Build([][]byte{pubKey[:]})
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	wit, err := choiceauth.PrepareWitness(sk, nul, tree, 0, choice, dh)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	ccs, err := setup.CompileCircuit(&choiceauth.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	full, err := frontend.NewWitness(&wit.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	public, err := full.Public()
	if err != nil {
		t.Fatalf("public witness: %v", err)
	}

	proof, err := groth16.Prove(ccs, pk, full)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, public); err != nil {
		t.Fatalf("verify honest proof: %v", err)
	}

	badAssignment := wit.Assignment
	flipped := badAssignment.Signature[0].(byte) ^ 0x01
	badAssignment.Signature[0] = flipped

	badFull, err := frontend.NewWitness(&badAssignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness (bad): %v", err)
	}
	if _, err := groth16.Prove(ccs, pk, badFull); err == nil {
		t.Fatal("expected proving to fail with a flipped signature bit")
	}
}

// TestChoiceAuthRejectsWrongChoice reuses the scenario's tree and witness
// inputs but asserts the circuit rejects when choice does not match the
// signature that was derived for it.
func TestChoiceAuthRejectsWrongChoice(t *testing.T) {
	sk := fill(1, 64)
	nul := fill(5, 64)
	choice := fill(3, 64)
	dh := fill(9, 64)
	otherChoice := fill(7, 64)

	pubKey, err := primitives.DerivePubKey(sk, nul)
	if err != nil {
		t.Fatalf("derive pub key: %v", err)
	}
	tree, err := merkle.Build([][]byte{pubKey[:]})
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	wit, err := choiceauth.PrepareWitness(sk, nul, tree, 0, choice, dh)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	wit.Assignment.Choice = choiceauthBytesToVars(otherChoice)

	ccs, err := setup.CompileCircuit(&choiceauth.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, _, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	full, err := frontend.NewWitness(&wit.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	if _, err := groth16.Prove(ccs, pk, full); err == nil {
		t.Fatal("expected proving to fail when choice does not match signature")
	}
}

func choiceauthBytesToVars(b []byte) [64]frontend.Variable {
	var out [64]frontend.Variable
	for i := range out {
		out[i] = b[i]
	}
	return out
}
