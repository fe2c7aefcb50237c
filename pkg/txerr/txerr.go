// Package txerr defines the engine's semantic error kinds. Callers
// distinguish them with errors.Is rather than type assertions.
package txerr

import "errors"

var (
	// ErrMalformedInput signals that decoding a point, proof, or
	// transaction failed structurally. Not retryable.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidTransaction signals that a transaction's verify check
	// returned false. The containing block is rejected; not retryable.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrLineage signals a parent/height/timestamp mismatch in the block
	// pipeline. The block is rejected.
	ErrLineage = errors.New("block lineage mismatch")

	// ErrStorage signals a key-value store I/O failure. Surfaced to the
	// caller; the block remains Processing.
	ErrStorage = errors.New("storage error")

	// ErrProver signals that Groth16 proving failed, e.g. an
	// unsatisfiable constraint system from a buggy caller.
	ErrProver = errors.New("prover error")
)
