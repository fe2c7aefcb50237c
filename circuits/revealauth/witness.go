package revealauth

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/primitives"
)

// Witness holds a fully populated Circuit assignment together with the
// derived public values a caller typically needs to build a proof request.
type Witness struct {
	Assignment Circuit
	PubKey     codec.PubKey64
	Signature  codec.PubKey64
}

// PrepareWitness derives pub_key and the expected signature from the
// minimal independent inputs: the revealer's secret key and nullifier, the
// ciphertext hash it is attesting to, and the ephemeral Diffie-Hellman
// public key.
func PrepareWitness(secretKey, nullifier, ciphertextHash, dhPubKey []byte) (*Witness, error) {
	pubKey, err := primitives.DerivePubKey(secretKey, nullifier)
	if err != nil {
		return nil, fmt.Errorf("revealauth: derive pub key: %w", err)
	}

	sig, err := primitives.SignReveal(secretKey, nullifier, ciphertextHash, dhPubKey)
	if err != nil {
		return nil, fmt.Errorf("revealauth: sign reveal: %w", err)
	}

	var assignment Circuit
	assignment.PubKey = bytesToVars(pubKey[:])
	assignment.CiphertextHash = bytesToVars(ciphertextHash)
	assignment.DHPubKey = bytesToVars(dhPubKey)
	assignment.Signature = bytesToVars(sig[:])
	assignment.SecretKey = bytesToVars(secretKey)
	assignment.Nullifier = bytesToVars(nullifier)

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
