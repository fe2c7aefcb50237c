// Package choiceauth implements ChoiceAuthCircuit (spec §4.5): proof that
// the prover knows a secret key and nullifier whose derived public key sits
// in the Merkle tree rooted at the public root, and that signature is the
// MAC-like tag sign_choice(secret_key, nullifier, choice, dh_pub_key) —
// without revealing which leaf was chosen.
package choiceauth

import (
	"github.com/consensys/gnark/frontend"
	tedwardsgadget "github.com/consensys/gnark/std/algebra/native/twistededwards"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/gadgets"
)

// Circuit is the ChoiceAuthCircuit R1CS. Public inputs in order: Nullifier,
// Root, Choice, DHPubKey, Signature. Private witness: SecretKey, the
// Merkle siblings and per-level direction bits for the prover's leaf.
type Circuit struct {
	Nullifier [config.PointSize]frontend.Variable `gnark:",public"`
	Root      gadgets.Point                       `gnark:",public"`
	Choice    [config.PointSize]frontend.Variable `gnark:",public"`
	DHPubKey  [config.PointSize]frontend.Variable `gnark:",public"`
	Signature [config.PointSize]frontend.Variable `gnark:",public"`

	SecretKey  [config.PointSize]frontend.Variable
	Siblings   [config.MerkleDepth]gadgets.Point
	Directions [config.MerkleDepth]frontend.Variable
}

// Define implements frontend.Circuit, mirroring the six constraints of
// spec §4.5 bit-for-bit against pkg/pedersen and pkg/primitives.
func (c *Circuit) Define(api frontend.API) error {
	curve, err := tedwardsgadget.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}
	h := gadgets.NewHasher(api, curve)

	// 1. aux_sk := H2(secret_key, nullifier)
	auxSK := h.H2(c.SecretKey[:], c.Nullifier[:])

	// 2. pub_key := H1(encode(aux_sk))
	auxSKBytes := h.EncodePoint(auxSK)
	pubKey := h.H1(auxSKBytes[:])

	// 3. merkle_path.verify_membership(root, pub_key)
	pubKeyBytes := h.EncodePoint(pubKey)
	gadgets.VerifyMembership(api, h, pubKeyBytes[:], c.Siblings, c.Directions, c.Root)

	// 4. penult := H2(aux_sk, choice)
	penult := h.H2(auxSKBytes[:], c.Choice[:])

	// 5. expected_sig := H2(penult, dh_pub_key)
	penultEnc := h.EncodePoint(penult)
	expectedSig := h.H2(penultEnc[:], c.DHPubKey[:])

	// 6. expected_sig == signature
	expectedSigBytes := h.EncodePoint(expectedSig)
	for i := range expectedSigBytes {
		api.AssertIsEqual(expectedSigBytes[i], c.Signature[i])
	}

	return nil
}
