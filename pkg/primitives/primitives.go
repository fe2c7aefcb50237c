// Package primitives implements the engine's thin Pedersen-hash
// compositions (spec §4.4): deriving a participant's public key from its
// secret key and nullifier, and the two MAC-like "signature" tags used by
// the choice and reveal transactions. None of these are EUF-CMA
// signatures; their validity is enforced entirely in-circuit
// (circuits/choiceauth, circuits/revealauth).
package primitives

import (
	"crypto/rand"
	"fmt"

	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/pedersen"
)

// auxSecretKey computes aux_sk = H2(secretKey, nullifier), the shared
// building block behind every primitive in this package.
func auxSecretKey(secretKey, nullifier []byte) (codec.PubKey64, error) {
	p, err := pedersen.H2(secretKey, nullifier)
	if err != nil {
		return codec.PubKey64{}, fmt.Errorf("primitives: aux_sk: %w", err)
	}
	return codec.Encode(p), nil
}

// DerivePubKey computes derive_pub_key(secretKey, nullifier) =
// H1(encode(aux_sk)).
func DerivePubKey(secretKey, nullifier []byte) (codec.PubKey64, error) {
	aux, err := auxSecretKey(secretKey, nullifier)
	if err != nil {
		return codec.PubKey64{}, err
	}
	pk, err := pedersen.H1(aux[:])
	if err != nil {
		return codec.PubKey64{}, fmt.Errorf("primitives: derive_pub_key: %w", err)
	}
	return codec.Encode(pk), nil
}

// SignChoice computes sign_choice(sk, nul, choice, dh) =
// H2(H2(aux_sk, choice), dh).
func SignChoice(secretKey, nullifier, choice, dhPubKey []byte) (codec.PubKey64, error) {
	return chainedMAC(secretKey, nullifier, choice, dhPubKey)
}

// SignReveal computes sign_reveal(sk, nul, ctHash, dh) =
// H2(H2(aux_sk, ctHash), dh). Structurally identical to SignChoice; kept
// as a distinct named entry point because the spec treats choice and
// reveal tags as semantically different even though their construction
// coincides.
func SignReveal(secretKey, nullifier, ctHash, dhPubKey []byte) (codec.PubKey64, error) {
	return chainedMAC(secretKey, nullifier, ctHash, dhPubKey)
}

func chainedMAC(secretKey, nullifier, middle, dhPubKey []byte) (codec.PubKey64, error) {
	aux, err := auxSecretKey(secretKey, nullifier)
	if err != nil {
		return codec.PubKey64{}, err
	}
	penult, err := pedersen.H2(aux[:], middle)
	if err != nil {
		return codec.PubKey64{}, fmt.Errorf("primitives: penultimate hash: %w", err)
	}
	penultEnc := codec.Encode(penult)
	sig, err := pedersen.H2(penultEnc[:], dhPubKey)
	if err != nil {
		return codec.PubKey64{}, fmt.Errorf("primitives: signature hash: %w", err)
	}
	return codec.Encode(sig), nil
}

// KeyPair is a participant's secret key and nullifier, the two private
// witnesses behind every derived public key.
type KeyPair struct {
	SecretKey [32]byte
	Nullifier [32]byte
}

// GenerateKeyPair draws a fresh random secret key and nullifier. This
// supplements the distilled spec with the key-generation convenience the
// original zkretctl keygen command offered (SPEC_FULL.md §6); key-file
// management itself remains out of scope.
func GenerateKeyPair() (*KeyPair, error) {
	kp := &KeyPair{}
	if _, err := rand.Read(kp.SecretKey[:]); err != nil {
		return nil, fmt.Errorf("primitives: generate secret key: %w", err)
	}
	if _, err := rand.Read(kp.Nullifier[:]); err != nil {
		return nil, fmt.Errorf("primitives: generate nullifier: %w", err)
	}
	return kp, nil
}

// PubKey returns the public key derived from kp, per DerivePubKey.
func (kp *KeyPair) PubKey() (codec.PubKey64, error) {
	return DerivePubKey(kp.SecretKey[:], kp.Nullifier[:])
}
