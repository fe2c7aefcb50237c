// Package revealauth implements RevealAuthCircuit (spec §4.5): proof that
// the prover knows a secret key and nullifier deriving the public pub_key,
// and that signature is sign_reveal(secret_key, nullifier, ciphertext_hash,
// dh_pub_key) — authorizing pub_key's holder to publish its reveal
// payload without otherwise identifying it.
package revealauth

import (
	"github.com/consensys/gnark/frontend"
	tedwardsgadget "github.com/consensys/gnark/std/algebra/native/twistededwards"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/gadgets"
)

// Circuit is the RevealAuthCircuit R1CS. Public inputs in order: PubKey,
// CiphertextHash, DHPubKey, Signature. Private witness: SecretKey,
// Nullifier.
type Circuit struct {
	PubKey         [config.PointSize]frontend.Variable `gnark:",public"`
	CiphertextHash [config.PointSize]frontend.Variable `gnark:",public"`
	DHPubKey       [config.PointSize]frontend.Variable `gnark:",public"`
	Signature      [config.PointSize]frontend.Variable `gnark:",public"`

	SecretKey [config.PointSize]frontend.Variable
	Nullifier [config.PointSize]frontend.Variable
}

// Define implements frontend.Circuit, mirroring the four constraints of
// spec §4.5 bit-for-bit against pkg/pedersen and pkg/primitives.
func (c *Circuit) Define(api frontend.API) error {
	curve, err := tedwardsgadget.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}
	h := gadgets.NewHasher(api, curve)

	// 1. aux_sk := H2(secret_key, nullifier)
	auxSK := h.H2(c.SecretKey[:], c.Nullifier[:])
	auxSKBytes := h.EncodePoint(auxSK)

	// 2. expected_pub_key := H1(aux_sk); equal to public pub_key
	expectedPubKey := h.H1(auxSKBytes[:])
	expectedPubKeyBytes := h.EncodePoint(expectedPubKey)
	for i := range expectedPubKeyBytes {
		api.AssertIsEqual(expectedPubKeyBytes[i], c.PubKey[i])
	}

	// 3. penult := H2(aux_sk, ciphertext_hash)
	penult := h.H2(auxSKBytes[:], c.CiphertextHash[:])

	// 4. expected_sig := H2(penult, dh_pub_key); equal to public signature
	penultEnc := h.EncodePoint(penult)
	expectedSig := h.H2(penultEnc[:], c.DHPubKey[:])
	expectedSigBytes := h.EncodePoint(expectedSig)
	for i := range expectedSigBytes {
		api.AssertIsEqual(expectedSigBytes[i], c.Signature[i])
	}

	return nil
}
