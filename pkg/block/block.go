package block

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/internal/log"
	"github.com/zksanta/engine/pkg/kvstore"
	"github.com/zksanta/engine/pkg/statecodec"
	"github.com/zksanta/engine/pkg/txerr"
	"github.com/zksanta/engine/pkg/txn"
)

var logger = log.For("block")

// Status mirrors the three-way outcome a block pipeline can reach
// (spec §4.8): pending verification, durably accepted, or rejected.
type Status int

const (
	StatusProcessing Status = iota
	StatusAccepted
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "processing"
	}
}

// wireBlock is the JSON shape a Block's id is derived from: parent_id,
// height, timestamp and transaction, excluding the status/bytes/id fields
// that are computed, not stored (spec §3, mirroring the original's
// `#[serde(skip)]` fields).
type wireBlock struct {
	ParentID    [32]byte        `json:"parent_id"`
	Height      uint64          `json:"height"`
	Timestamp   uint64          `json:"timestamp"`
	Transaction txn.Transaction `json:"transaction"`
}

// Block is a single entry in the chain: a transaction plus the lineage
// metadata (parent, height, timestamp) the pipeline checks before
// admitting it.
type Block struct {
	ParentID    [32]byte
	Height      uint64
	Timestamp   uint64
	Transaction txn.Transaction
	Status      Status

	id    [32]byte
	bytes []byte
}

// NewBlock constructs a block and derives its id by sha256-hashing its
// canonical JSON encoding, mirroring Block::try_new.
func NewBlock(parentID [32]byte, height, timestamp uint64, transaction txn.Transaction) (*Block, error) {
	b := &Block{
		ParentID:    parentID,
		Height:      height,
		Timestamp:   timestamp,
		Transaction: transaction,
		Status:      StatusProcessing,
	}
	raw, err := json.Marshal(wireBlock{ParentID: parentID, Height: height, Timestamp: timestamp, Transaction: transaction})
	if err != nil {
		return nil, fmt.Errorf("block: encode: %w", err)
	}
	b.bytes = raw
	b.id = sha256.Sum256(raw)
	return b, nil
}

// ID returns the block's content-derived identifier.
func (b *Block) ID() [32]byte { return b.id }

// Bytes returns the block's canonical encoding.
func (b *Block) Bytes() []byte { return b.bytes }

// isGenesis reports whether b is the distinguished genesis block: height
// zero with an empty (all-zero) parent id.
func (b *Block) isGenesis() bool {
	return b.Height == 0 && b.ParentID == ([32]byte{})
}

// Chain owns the single BlockState plus the bookkeeping the verify/
// accept/reject pipeline needs: a set of not-yet-decided but verified
// blocks, the decided (accepted or rejected) blocks, and the id of the
// last accepted block. Chain, not Block, owns State — this breaks the
// reference cycle a naive Block-holds-a-State-handle design would create
// (DESIGN.md, Design Note on ownership cycles).
type Chain struct {
	mu sync.Mutex

	state *State
	store kvstore.Store

	ca txn.ChoiceAuthVerifier
	ra txn.RevealAuthVerifier

	decided        map[[32]byte]*Block
	verified       map[[32]byte]*Block
	lastAcceptedID [32]byte
}

// NewChain returns an empty Chain backed by store for persistence and ca/
// ra for ChoiceAuth/RevealAuth proof verification.
func NewChain(store kvstore.Store, ca txn.ChoiceAuthVerifier, ra txn.RevealAuthVerifier) (*Chain, error) {
	state, err := NewState()
	if err != nil {
		return nil, err
	}
	return &Chain{
		state:    state,
		store:    store,
		ca:       ca,
		ra:       ra,
		decided:  map[[32]byte]*Block{},
		verified: map[[32]byte]*Block{},
	}, nil
}

// Verify implements the seven-step admission pipeline spec §4.8
// describes, grounded on Block::verify in
// original_source/zkretvm/src/block/mod.rs.
func (c *Chain) Verify(b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 1. Genesis short-circuits straight to "verified".
	if b.isGenesis() {
		logger.Debug().Msg("genesis block has an empty parent id, skipping lineage checks")
		c.verified[b.id] = b
		return nil
	}

	// 2. Idempotent: a block already decided needs no re-verification.
	if _, ok := c.decided[b.id]; ok {
		logger.Debug().Hex("block_id", b.id[:]).Msg("block already verified")
		return nil
	}

	// 3. Linear chain: parent must be the last accepted block.
	if b.ParentID != c.lastAcceptedID {
		return fmt.Errorf("%w: parent block id %x != last accepted block id %x", txerr.ErrLineage, b.ParentID, c.lastAcceptedID)
	}

	parent, ok := c.decided[b.ParentID]
	if !ok {
		return fmt.Errorf("%w: parent block %x not found", txerr.ErrLineage, b.ParentID)
	}

	// 4. Height must immediately follow the parent's.
	if parent.Height != b.Height-1 {
		return fmt.Errorf("%w: parent block height %d != current block height %d - 1", txerr.ErrLineage, parent.Height, b.Height)
	}

	// 5. Timestamp must not regress.
	if parent.Timestamp > b.Timestamp {
		return fmt.Errorf("%w: parent block timestamp %d > current block timestamp %d", txerr.ErrLineage, parent.Timestamp, b.Timestamp)
	}

	// 6. Timestamp must not be too far ahead of local time.
	skewLimit := uint64(time.Now().Add(time.Duration(config.ClockSkewSeconds) * time.Second).Unix())
	if b.Timestamp >= skewLimit {
		return fmt.Errorf("%w: block timestamp %d is more than %ds ahead of local time", txerr.ErrLineage, b.Timestamp, config.ClockSkewSeconds)
	}

	// 7. Transaction-level verification against the current BlockState. An
	// enter into a full pool is rejected here, before Accept's UpdateState
	// would hit State.AddLeaf's capacity panic.
	if b.Transaction.Kind == txn.KindEnter && len(c.state.MerkleLeaves()) >= config.MerkleMaxLeaves {
		return fmt.Errorf("%w: block %x would exceed the %d-leaf pool capacity", txerr.ErrInvalidTransaction, b.id, config.MerkleMaxLeaves)
	}
	ok, err := txn.Verify(b.Transaction, c.state, c.ca, c.ra)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: block %x transaction is invalid", txerr.ErrInvalidTransaction, b.id)
	}

	c.verified[b.id] = b
	return nil
}

// Accept marks b accepted, applies its transaction to the BlockState,
// refreshes the cached Merkle root, and persists the new state.
func (c *Chain) Accept(ctx context.Context, b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b.Status = StatusAccepted
	txn.UpdateState(b.Transaction, c.state)
	c.state.recomputeRoot()

	c.decided[b.id] = b
	c.lastAcceptedID = b.id
	c.verified = map[[32]byte]*Block{} // clear_verified: only one block is ever accepted per round

	if c.store != nil {
		if err := c.persist(ctx, b); err != nil {
			return fmt.Errorf("%w: %v", txerr.ErrStorage, err)
		}
	}
	return nil
}

// Reject marks b rejected in memory and writes the block's canonical bytes
// under its block key. The stored encoding does not carry the Status
// field, so the rejected status itself is not persisted. Its effects never
// touch BlockState.
func (c *Chain) Reject(ctx context.Context, b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b.Status = StatusRejected
	c.decided[b.id] = b
	delete(c.verified, b.id)

	if c.store == nil {
		return nil
	}
	if err := c.store.Put(ctx, blockKey(b.id), b.bytes); err != nil {
		return fmt.Errorf("%w: %v", txerr.ErrStorage, err)
	}
	return nil
}

// LastAcceptedID returns the id of the most recently accepted block.
func (c *Chain) LastAcceptedID() [32]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAcceptedID
}

// State exposes the chain's BlockState, e.g. for reads outside the
// pipeline such as RevealedMessageFor lookups.
func (c *Chain) State() *State {
	return c.state
}

// KV store layout (spec §6), grounded on zkret_state.rs's
// MERKLE_LEAVES_KEY/NULLIFIERS_KEY/ENTERED_PUB_KEYS_KEY constants: bare,
// unprefixed keys, no codec length prefix (statecodec infers count from
// len/64).
const (
	keyMerkleLeaves        = "merkle_leaves"
	keyNullifiers          = "nullifiers"
	keyUnclaimedPubKeys    = "unclaimed_pub_keys"
	keyRevealedPubKeys     = "revealed_pub_keys"
	keyLastAcceptedBlockID = "last_accepted_block_id"
)

func blockKey(id [32]byte) []byte {
	return append([]byte("block/"), id[:]...)
}

// persist writes the post-accept BlockState vectors and the new block to
// the store concurrently, generalizing the teacher's goroutine fan-out
// (pkg/merkle's worker pool) with golang.org/x/sync/errgroup for a
// bounded, error-propagating set of independent writes.
func (c *Chain) persist(ctx context.Context, b *Block) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.store.Put(ctx, []byte(keyMerkleLeaves), statecodec.Encode(c.state.MerkleLeaves()))
	})
	g.Go(func() error {
		return c.store.Put(ctx, []byte(keyNullifiers), statecodec.Encode(c.state.Nullifiers()))
	})
	g.Go(func() error {
		return c.store.Put(ctx, []byte(keyUnclaimedPubKeys), statecodec.Encode(c.state.UnclaimedPubKeys()))
	})
	g.Go(func() error {
		return c.store.Put(ctx, []byte(keyRevealedPubKeys), statecodec.Encode(c.state.RevealedPubKeys()))
	})
	g.Go(func() error {
		return c.store.Put(ctx, blockKey(b.id), b.bytes)
	})
	g.Go(func() error {
		return c.store.Put(ctx, []byte(keyLastAcceptedBlockID), c.lastAcceptedID[:])
	})

	return g.Wait()
}

// LoadChain reconstructs a Chain from the BlockState vectors and
// last-accepted pointer previously written by persist, mirroring
// zkret_state.rs's get_merkle_leaves/get_nullifiers/get_entered_pub_keys
// read path that parallels every set_*. A store with no prior writes
// yields the same Chain NewChain would: a missing key decodes as an empty
// vector (spec §6), never an error.
func LoadChain(ctx context.Context, store kvstore.Store, ca txn.ChoiceAuthVerifier, ra txn.RevealAuthVerifier) (*Chain, error) {
	leaves, err := getVector(ctx, store, keyMerkleLeaves)
	if err != nil {
		return nil, fmt.Errorf("block: load merkle leaves: %w", err)
	}
	nullifiers, err := getVector(ctx, store, keyNullifiers)
	if err != nil {
		return nil, fmt.Errorf("block: load nullifiers: %w", err)
	}
	unclaimed, err := getVector(ctx, store, keyUnclaimedPubKeys)
	if err != nil {
		return nil, fmt.Errorf("block: load unclaimed pub keys: %w", err)
	}
	revealedKeys, err := getVector(ctx, store, keyRevealedPubKeys)
	if err != nil {
		return nil, fmt.Errorf("block: load revealed pub keys: %w", err)
	}

	state, err := rebuildState(leaves, nullifiers, unclaimed, revealedKeys)
	if err != nil {
		return nil, err
	}

	c := &Chain{
		state:    state,
		store:    store,
		ca:       ca,
		ra:       ra,
		decided:  map[[32]byte]*Block{},
		verified: map[[32]byte]*Block{},
	}

	lastIDBytes, err := store.Get(ctx, []byte(keyLastAcceptedBlockID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return c, nil
		}
		return nil, fmt.Errorf("block: load last accepted block id: %w", err)
	}
	if len(lastIDBytes) != 32 {
		return nil, fmt.Errorf("block: last accepted block id has length %d, want 32", len(lastIDBytes))
	}
	var lastID [32]byte
	copy(lastID[:], lastIDBytes)

	// Verify's lineage check needs the actual last-accepted *Block (for
	// its Height/Timestamp), not just its id, so the next block can be
	// admitted after a restart.
	raw, err := store.Get(ctx, blockKey(lastID))
	if err != nil {
		return nil, fmt.Errorf("block: load last accepted block %x: %w", lastID, err)
	}
	var wire wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("block: decode last accepted block %x: %w", lastID, err)
	}
	last := &Block{
		ParentID:    wire.ParentID,
		Height:      wire.Height,
		Timestamp:   wire.Timestamp,
		Transaction: wire.Transaction,
		Status:      StatusAccepted,
		id:          lastID,
		bytes:       raw,
	}

	c.decided[lastID] = last
	c.lastAcceptedID = lastID
	return c, nil
}

// getVector reads key through store and decodes it with statecodec,
// treating a missing key as an empty vector (spec §6) rather than an
// error.
func getVector(ctx context.Context, store kvstore.Store, key string) ([][config.PointSize]byte, error) {
	raw, err := store.Get(ctx, []byte(key))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return statecodec.Decode(raw)
}
