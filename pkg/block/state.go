// Package block implements the BlockState (spec §4.7, §6) and the block
// verify/accept/reject pipeline (§4.8). Grounded directly on
// original_source/zkretvm/src/block/mod.rs's Block::try_new/verify/accept/
// reject, re-architected per the spec's Design Note on ownership cycles:
// State is owned by a Chain and passed by reference to pipeline methods,
// rather than held by each Block via a shared handle.
package block

import (
	"fmt"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/merkle"
)

// State is the engine's BlockState: the Merkle-tree leaves, spent
// nullifiers, unclaimed pub-keys, and revealed messages that transaction
// verification and mutation (pkg/txn) read and write. It implements
// txn.StateView and txn.StateMutator.
type State struct {
	tree           *merkle.Tree
	leaves         [][config.PointSize]byte // raw pub-keys, index order
	leafPresent    map[[config.PointSize]byte]bool
	unclaimedOrder [][config.PointSize]byte // insertion order, entries removed in place
	unclaimed      map[[config.PointSize]byte]bool
	nullifierOrder [][config.PointSize]byte // insertion order; nullifiers are never removed
	nullifiers     map[[config.PointSize]byte]bool
	revealedSet    map[[config.PointSize]byte]bool
	revealedKeys   [][config.PointSize]byte
	revealedCTs    [][]byte
	cachedRoot     [config.PointSize]byte
}

// NewState returns an empty BlockState: a zero-leaf-padded Merkle tree and
// empty nullifier/unclaimed/revealed sets.
func NewState() (*State, error) {
	tree, err := merkle.Build(nil)
	if err != nil {
		return nil, fmt.Errorf("block: build empty tree: %w", err)
	}
	s := &State{
		tree:        tree,
		leafPresent: map[[config.PointSize]byte]bool{},
		unclaimed:   map[[config.PointSize]byte]bool{},
		nullifiers:  map[[config.PointSize]byte]bool{},
		revealedSet: map[[config.PointSize]byte]bool{},
	}
	s.cachedRoot = tree.Root()
	return s, nil
}

// HasLeaf reports whether pubKey has ever been entered into the pool.
func (s *State) HasLeaf(pubKey [config.PointSize]byte) bool { return s.leafPresent[pubKey] }

// IsUnclaimed reports whether pubKey was entered but has not yet been
// chosen.
func (s *State) IsUnclaimed(pubKey [config.PointSize]byte) bool { return s.unclaimed[pubKey] }

// IsNullifierUsed reports whether nullifier has already been spent by a
// choice transaction.
func (s *State) IsNullifierUsed(nullifier [config.PointSize]byte) bool {
	return s.nullifiers[nullifier]
}

// IsRevealed reports whether pubKey already has a recorded revealed
// message.
func (s *State) IsRevealed(pubKey [config.PointSize]byte) bool { return s.revealedSet[pubKey] }

// MerkleRoot returns the tree root as of the last recomputeRoot call
// (OQ-5: cached, refreshed once per Accept rather than on every read).
func (s *State) MerkleRoot() [config.PointSize]byte { return s.cachedRoot }

// MerkleLeaves returns the entered pub-keys in insertion order, the same
// order persisted under the "merkle_leaves" key (spec §6).
func (s *State) MerkleLeaves() [][config.PointSize]byte { return s.leaves }

// Nullifiers returns spent nullifiers in insertion order, the same order
// persisted under the "nullifiers" key (spec §6). Persisting a stable order
// is what makes UpdateState deterministic across equal runs (spec §9).
func (s *State) Nullifiers() [][config.PointSize]byte { return s.nullifierOrder }

// UnclaimedPubKeys returns the currently-unclaimed pub-keys in the order
// they were entered, the same order persisted under the
// "unclaimed_pub_keys" key (spec §6). Keys removed by RemoveUnclaimed are
// filtered out here rather than spliced out of unclaimedOrder in place.
func (s *State) UnclaimedPubKeys() [][config.PointSize]byte {
	out := make([][config.PointSize]byte, 0, len(s.unclaimed))
	for _, k := range s.unclaimedOrder {
		if s.unclaimed[k] {
			out = append(out, k)
		}
	}
	return out
}

// RevealedPubKeys returns revealed pub-keys in insertion order, the same
// order persisted under the "revealed_pub_keys" key (spec §6).
func (s *State) RevealedPubKeys() [][config.PointSize]byte { return s.revealedKeys }

// AddLeaf enters pubKey at the next free leaf slot and marks it unclaimed.
func (s *State) AddLeaf(pubKey [config.PointSize]byte) {
	idx := len(s.leaves)
	if err := s.tree.Update(idx, pubKey[:]); err != nil {
		// The pool exceeding config.MerkleMaxLeaves is a capacity
		// violation the pipeline must catch before calling UpdateState,
		// not something AddLeaf can recover from: txn.StateMutator gives
		// it no error return.
		panic(fmt.Sprintf("block: %v", err))
	}
	s.leaves = append(s.leaves, pubKey)
	s.leafPresent[pubKey] = true
	s.unclaimed[pubKey] = true
	s.unclaimedOrder = append(s.unclaimedOrder, pubKey)
}

// AddNullifier marks nullifier as spent.
func (s *State) AddNullifier(nullifier [config.PointSize]byte) {
	s.nullifiers[nullifier] = true
	s.nullifierOrder = append(s.nullifierOrder, nullifier)
}

// RemoveUnclaimed removes pubKey from the unclaimed set, e.g. once it has
// been chosen. unclaimedOrder keeps the stale entry; UnclaimedPubKeys
// filters it out by membership so persisted order stays deterministic
// without a linear slice delete on every choice transaction.
func (s *State) RemoveUnclaimed(pubKey [config.PointSize]byte) { delete(s.unclaimed, pubKey) }

// AddRevealed records ciphertext as the revealed message for pubKey.
// revealedKeys and revealedCTs are kept as parallel vectors, mirroring the
// BlockState's on-disk layout (spec §6: revealed_pub_keys/revealed_cts as
// separate vectors) rather than collapsing them into a single map.
func (s *State) AddRevealed(pubKey [config.PointSize]byte, ciphertext []byte) {
	s.revealedSet[pubKey] = true
	s.revealedKeys = append(s.revealedKeys, pubKey)
	ct := make([]byte, len(ciphertext))
	copy(ct, ciphertext)
	s.revealedCTs = append(s.revealedCTs, ct)
}

// RevealedMessageFor returns the ciphertext revealed for pubKey, if any.
// revealedKeys and revealedCTs are only ever grown together by
// AddRevealed, so a length mismatch here is a programmer error, not a
// recoverable condition: it panics rather than silently truncating a
// lookup (OQ-4).
func (s *State) RevealedMessageFor(pubKey [config.PointSize]byte) ([]byte, bool) {
	if len(s.revealedKeys) != len(s.revealedCTs) {
		panic("block: revealedKeys/revealedCTs out of sync")
	}
	for i, k := range s.revealedKeys {
		if k == pubKey {
			return s.revealedCTs[i], true
		}
	}
	return nil, false
}

// recomputeRoot refreshes the cached Merkle root from the current tree
// state. Callers invoke this once per accepted block, after UpdateState
// has applied any kind-1 (enter) leaf additions (OQ-5).
func (s *State) recomputeRoot() {
	s.cachedRoot = s.tree.Root()
}

// rebuildState reconstructs a *State from the four persisted vectors,
// mirroring zkret_state.rs's get_merkle_leaves/get_nullifiers/
// get_entered_pub_keys read path. leaves rebuilds the Merkle tree in
// order; nullifiers, unclaimed and revealedKeys restore their insertion
// order directly from their persisted vectors. Ciphertexts are not
// persisted, so revealedCTs is not restored (see below).
func rebuildState(leaves, nullifiers, unclaimed, revealedKeys [][config.PointSize]byte) (*State, error) {
	rawLeaves := make([][]byte, len(leaves))
	for i, l := range leaves {
		rawLeaves[i] = l[:]
	}
	tree, err := merkle.Build(rawLeaves)
	if err != nil {
		return nil, fmt.Errorf("block: rebuild tree: %w", err)
	}

	s := &State{
		tree:        tree,
		leaves:      leaves,
		leafPresent: make(map[[config.PointSize]byte]bool, len(leaves)),
		unclaimed:   make(map[[config.PointSize]byte]bool, len(unclaimed)),
		nullifiers:  make(map[[config.PointSize]byte]bool, len(nullifiers)),
		revealedSet: make(map[[config.PointSize]byte]bool, len(revealedKeys)),
	}
	for _, l := range leaves {
		s.leafPresent[l] = true
	}
	for _, n := range nullifiers {
		s.nullifiers[n] = true
	}
	s.nullifierOrder = nullifiers
	for _, u := range unclaimed {
		s.unclaimed[u] = true
	}
	s.unclaimedOrder = unclaimed
	for _, k := range revealedKeys {
		s.revealedSet[k] = true
	}
	s.revealedKeys = revealedKeys
	// Revealed ciphertexts aren't part of the §6 KV layout reload path.
	// Each restored key gets a nil placeholder so revealedKeys and
	// revealedCTs stay parallel: RevealedMessageFor reports a restored key
	// as revealed with a nil message, and resolves keys revealed after the
	// reload normally.
	s.revealedCTs = make([][]byte, len(revealedKeys))

	s.cachedRoot = tree.Root()
	return s, nil
}
