package txn_test

import (
	"encoding/json"
	"testing"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/pedersen"
	"github.com/zksanta/engine/pkg/codec"
	"github.com/zksanta/engine/pkg/txn"
)

type fakeState struct {
	leaves     map[[config.PointSize]byte]bool
	unclaimed  map[[config.PointSize]byte]bool
	nullifiers map[[config.PointSize]byte]bool
	revealed   map[[config.PointSize]byte]bool
	revealedCT map[[config.PointSize]byte][]byte
	root       [config.PointSize]byte
}

func newFakeState() *fakeState {
	return &fakeState{
		leaves:     map[[config.PointSize]byte]bool{},
		unclaimed:  map[[config.PointSize]byte]bool{},
		nullifiers: map[[config.PointSize]byte]bool{},
		revealed:   map[[config.PointSize]byte]bool{},
		revealedCT: map[[config.PointSize]byte][]byte{},
	}
}

func (s *fakeState) HasLeaf(pk [config.PointSize]byte) bool         { return s.leaves[pk] }
func (s *fakeState) IsUnclaimed(pk [config.PointSize]byte) bool     { return s.unclaimed[pk] }
func (s *fakeState) IsNullifierUsed(n [config.PointSize]byte) bool  { return s.nullifiers[n] }
func (s *fakeState) IsRevealed(pk [config.PointSize]byte) bool      { return s.revealed[pk] }
func (s *fakeState) MerkleRoot() [config.PointSize]byte             { return s.root }
func (s *fakeState) AddLeaf(pk [config.PointSize]byte) {
	s.leaves[pk] = true
	s.unclaimed[pk] = true
}
func (s *fakeState) AddNullifier(n [config.PointSize]byte)     { s.nullifiers[n] = true }
func (s *fakeState) RemoveUnclaimed(pk [config.PointSize]byte) { delete(s.unclaimed, pk) }
func (s *fakeState) AddRevealed(pk [config.PointSize]byte, ct []byte) {
	s.revealed[pk] = true
	s.revealedCT[pk] = ct
}

type stubVerifier bool

func (v stubVerifier) VerifyChoice(_ []byte, _, _, _, _, _ [config.PointSize]byte) (bool, error) {
	return bool(v), nil
}
func (v stubVerifier) VerifyReveal(_ []byte, _, _, _, _ [config.PointSize]byte) (bool, error) {
	return bool(v), nil
}

func key(b byte) [config.PointSize]byte {
	var k [config.PointSize]byte
	for i := range k {
		k[i] = b
	}
	return k
}

func TestGenesisAlwaysVerifies(t *testing.T) {
	ok, err := txn.Verify(txn.Genesis(nil), newFakeState(), stubVerifier(false), stubVerifier(false))
	if err != nil || !ok {
		t.Fatalf("genesis must always verify, got ok=%v err=%v", ok, err)
	}
}

func TestEnterRejectsDuplicatePubKey(t *testing.T) {
	state := newFakeState()
	pk := key(1)
	tx := txn.Enter(pk)

	ok, err := txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil || !ok {
		t.Fatalf("first enter must verify, got ok=%v err=%v", ok, err)
	}
	txn.UpdateState(tx, state)

	ok, err = txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("second enter of the same pub-key must be rejected")
	}
}

func TestChoiceRequiresUnclaimedAndFreshNullifier(t *testing.T) {
	state := newFakeState()
	choice := key(2)
	nullifier := key(3)
	dh := key(4)
	sig := key(5)

	tx := txn.Choice(choice, nullifier, dh, sig, []byte("proof"))

	ok, err := txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("choice of a pub-key that was never entered must be rejected")
	}

	state.AddLeaf(choice)
	ok, err = txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil || !ok {
		t.Fatalf("choice of an unclaimed, entered pub-key must verify, got ok=%v err=%v", ok, err)
	}

	state.AddNullifier(nullifier)
	ok, err = txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reusing a nullifier must be rejected")
	}
}

func TestChoiceRejectsWhenProofInvalid(t *testing.T) {
	state := newFakeState()
	choice := key(2)
	state.AddLeaf(choice)

	tx := txn.Choice(choice, key(3), key(4), key(5), []byte("proof"))
	ok, err := txn.Verify(tx, state, stubVerifier(false), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("an invalid ChoiceAuth proof must reject the transaction")
	}
}

func TestRevealRequiresMatchingCiphertextHash(t *testing.T) {
	state := newFakeState()
	pk := key(2)
	state.AddLeaf(pk)

	ciphertext := []byte("hello")
	hashPoint, err := pedersen.H1(ciphertext)
	if err != nil {
		t.Fatalf("hash ciphertext: %v", err)
	}
	ctHash := codec.Encode(hashPoint)

	tx := txn.Reveal(pk, ctHash, key(4), key(5), ciphertext, []byte("proof"))
	ok, err := txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil || !ok {
		t.Fatalf("reveal with a correct ciphertext hash must verify, got ok=%v err=%v", ok, err)
	}

	badHash := key(9)
	badTx := txn.Reveal(pk, badHash, key(4), key(5), ciphertext, []byte("proof"))
	ok, err = txn.Verify(badTx, state, stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("a mismatched ciphertext hash must reject the transaction")
	}
}

func TestRevealRejectsDoubleReveal(t *testing.T) {
	state := newFakeState()
	pk := key(2)
	state.AddLeaf(pk)
	state.AddRevealed(pk, []byte("already revealed"))

	tx := txn.Reveal(pk, key(3), key(4), key(5), []byte("hello"), []byte("proof"))
	ok, err := txn.Verify(tx, state, stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("revealing twice must be rejected")
	}
}

func TestUnknownKindIsAlwaysInvalid(t *testing.T) {
	tx := txn.Transaction{Kind: txn.Kind(9)}
	ok, err := txn.Verify(tx, newFakeState(), stubVerifier(true), stubVerifier(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unknown transaction kinds must never verify")
	}
}

func TestTransactionWireRoundTrip(t *testing.T) {
	tx := txn.Choice(key(1), key(2), key(3), key(4), []byte{0xAA, 0xBB})

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded txn.Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Kind != tx.Kind || decoded.Data.A != tx.Data.A || decoded.Data.B != tx.Data.B {
		t.Fatal("transaction did not round-trip through JSON")
	}
	if string(decoded.Data.E) != string(tx.Data.E) {
		t.Fatal("variable-length field E did not round-trip through JSON")
	}
}
