package primitives

import "testing"

func fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestDerivePubKeyDeterministic(t *testing.T) {
	sk, nul := fill(1, 64), fill(5, 64)
	a, err := DerivePubKey(sk, nul)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DerivePubKey(sk, nul)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("derive_pub_key must be deterministic")
	}
}

func TestDerivePubKeyDependsOnBothInputs(t *testing.T) {
	base, err := DerivePubKey(fill(1, 64), fill(5, 64))
	if err != nil {
		t.Fatal(err)
	}
	diffSK, err := DerivePubKey(fill(2, 64), fill(5, 64))
	if err != nil {
		t.Fatal(err)
	}
	diffNul, err := DerivePubKey(fill(1, 64), fill(6, 64))
	if err != nil {
		t.Fatal(err)
	}
	if base == diffSK || base == diffNul {
		t.Fatal("derive_pub_key must depend on both the secret key and the nullifier")
	}
}

func TestSignChoiceRoundTripScenario(t *testing.T) {
	// Mirrors spec §8 scenario 1's fixture values.
	sk := fill(1, 64)
	nul := fill(5, 64)
	choice := fill(3, 64)
	dh := fill(9, 64)

	sig, err := SignChoice(sk, nul, choice, dh)
	if err != nil {
		t.Fatal(err)
	}

	again, err := SignChoice(sk, nul, choice, dh)
	if err != nil {
		t.Fatal(err)
	}
	if sig != again {
		t.Fatal("sign_choice must be deterministic")
	}

	flipped := dh
	flipped = append([]byte(nil), flipped...)
	flipped[0] ^= 0x01
	other, err := SignChoice(sk, nul, choice, flipped)
	if err != nil {
		t.Fatal(err)
	}
	if sig == other {
		t.Fatal("sign_choice must depend on dh_pub_key")
	}
}

func TestSignChoiceAndSignRevealShareConstruction(t *testing.T) {
	sk, nul, middle, dh := fill(1, 64), fill(2, 64), fill(3, 64), fill(4, 64)
	choiceSig, err := SignChoice(sk, nul, middle, dh)
	if err != nil {
		t.Fatal(err)
	}
	revealSig, err := SignReveal(sk, nul, middle, dh)
	if err != nil {
		t.Fatal(err)
	}
	if choiceSig != revealSig {
		t.Fatal("SignChoice and SignReveal share a construction by design; identical inputs must produce identical tags")
	}
}

func TestGenerateKeyPairProducesUsablePubKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	pk, err := kp.PubKey()
	if err != nil {
		t.Fatal(err)
	}
	pk2, err := DerivePubKey(kp.SecretKey[:], kp.Nullifier[:])
	if err != nil {
		t.Fatal(err)
	}
	if pk != pk2 {
		t.Fatal("KeyPair.PubKey must match DerivePubKey over the same secret key and nullifier")
	}
}
