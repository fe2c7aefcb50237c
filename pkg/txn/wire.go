// Package txn implements transaction verification and state mutation for
// the four transaction kinds (spec §4.7), operating against any State
// implementing StateView/StateMutator. Grounded on
// original_source/zkretvm/src/block/transaction.rs for the exact
// per-kind checks, re-expressed with the tagged-variant dispatch the
// spec's Design Notes (§9) recommend instead of raw positional-tuple
// field access.
package txn

import (
	"encoding/json"
	"fmt"

	"github.com/zksanta/engine/config"
)

// Kind identifies which of the four transaction shapes Data carries.
type Kind uint8

const (
	KindGenesis Kind = 0
	KindEnter   Kind = 1
	KindChoice  Kind = 2
	KindReveal  Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindGenesis:
		return "genesis"
	case KindEnter:
		return "enter"
	case KindChoice:
		return "choice"
	case KindReveal:
		return "reveal"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Field64 is a 64-byte transaction field (spec §3's A..D), wire-encoded as
// two 32-byte arrays per §6 ("[[b0..b31], [b32..b63]]").
type Field64 [config.PointSize]byte

type wireField64 [2][32]byte

// MarshalJSON encodes f as [[b0..b31],[b32..b63]].
func (f Field64) MarshalJSON() ([]byte, error) {
	var w wireField64
	copy(w[0][:], f[:32])
	copy(w[1][:], f[32:])
	return json.Marshal(w)
}

// UnmarshalJSON decodes the [[b0..b31],[b32..b63]] wire shape.
func (f *Field64) UnmarshalJSON(data []byte) error {
	var w wireField64
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("txn: decode Field64: %w", err)
	}
	copy(f[:32], w[0][:])
	copy(f[32:], w[1][:])
	return nil
}

// Data is the six-field transaction payload (spec §3: "A..D are 64-byte
// fields and E, F are variable-length byte strings"). Field meanings are
// kind-dependent; see the Genesis/Enter/Choice/Reveal constructors below.
type Data struct {
	A, B, C, D Field64
	E, F       []byte
}

// wireData mirrors §6's JSON array shape: {"data": [A, B, C, D, E, F]}.
type wireData struct {
	A, B, C, D Field64
	E, F       []byte
}

func (d Data) MarshalJSON() ([]byte, error) {
	if d.E == nil {
		d.E = []byte{}
	}
	if d.F == nil {
		d.F = []byte{}
	}
	return json.Marshal([]any{d.A, d.B, d.C, d.D, d.E, d.F})
}

func (d *Data) UnmarshalJSON(data []byte) error {
	var raw [6]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("txn: decode Data: %w", err)
	}
	fields := []*Field64{&d.A, &d.B, &d.C, &d.D}
	for i, f := range fields {
		if err := json.Unmarshal(raw[i], f); err != nil {
			return fmt.Errorf("txn: decode Data field %d: %w", i, err)
		}
	}
	if err := json.Unmarshal(raw[4], &d.E); err != nil {
		return fmt.Errorf("txn: decode Data.E: %w", err)
	}
	if err := json.Unmarshal(raw[5], &d.F); err != nil {
		return fmt.Errorf("txn: decode Data.F: %w", err)
	}
	return nil
}

// Transaction is the wire-level transaction envelope (spec §3, §6).
type Transaction struct {
	Kind Kind `json:"transaction_type"`
	Data Data `json:"data"`
}

// Genesis builds the single genesis transaction, carrying arbitrary
// genesis data in Data.E (supplementing the distilled spec with the
// original's Transaction::genesis constructor).
func Genesis(genesisData []byte) Transaction {
	return Transaction{Kind: KindGenesis, Data: Data{E: genesisData}}
}

// Enter builds a kind-1 transaction entering pubKey into the pool.
func Enter(pubKey [config.PointSize]byte) Transaction {
	return Transaction{Kind: KindEnter, Data: Data{A: Field64(pubKey)}}
}

// Choice builds a kind-2 transaction.
func Choice(choicePubKey, nullifier, dhPubKey, signature [config.PointSize]byte, proofBytes []byte) Transaction {
	return Transaction{Kind: KindChoice, Data: Data{
		A: Field64(choicePubKey),
		B: Field64(nullifier),
		C: Field64(dhPubKey),
		D: Field64(signature),
		E: proofBytes,
	}}
}

// Reveal builds a kind-3 transaction.
func Reveal(pubKey, ctHash, dhPubKey, signature [config.PointSize]byte, ciphertext, proofBytes []byte) Transaction {
	return Transaction{Kind: KindReveal, Data: Data{
		A: Field64(pubKey),
		B: Field64(ctHash),
		C: Field64(dhPubKey),
		D: Field64(signature),
		E: ciphertext,
		F: proofBytes,
	}}
}
