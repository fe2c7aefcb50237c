// Package zkproof generalizes the teacher's pkg/setup into a pair of
// long-lived Groth16 Prover/Verifier types for the two circuits compiled
// from circuits/choiceauth and circuits/revealauth (spec §4.6): one-time
// key loading from disk, randomized Groth16 proving, and verification against
// a public-only witness (the struct fields tagged `gnark:",public"`,
// already in the exact order §4.5 specifies for marshalling).
package zkproof

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/internal/log"
	"github.com/zksanta/engine/pkg/setup"
)

var logger = log.For("zkproof")

// Prover deserializes a circuit's proving key once and generates Groth16
// proofs from fully populated witnesses.
type Prover struct {
	once sync.Once
	err  error

	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey

	newCircuit func() frontend.Circuit
	keyDir     string
	circuitID  string
}

// NewProver returns a Prover that lazily compiles the circuit and loads
// keyDir/<circuitID>_prover.key on first use. newCircuit must return a
// fresh zero-valued circuit struct (used only to drive compilation).
func NewProver(newCircuit func() frontend.Circuit, keyDir, circuitID string) *Prover {
	return &Prover{newCircuit: newCircuit, keyDir: keyDir, circuitID: circuitID}
}

func (p *Prover) init() {
	p.once.Do(func() {
		ccs, err := setup.CompileCircuit(p.newCircuit())
		if err != nil {
			p.err = fmt.Errorf("zkproof: compile %s: %w", p.circuitID, err)
			return
		}
		pk, _, err := setup.LoadKeys(p.keyDir, p.circuitID)
		if err != nil {
			p.err = fmt.Errorf("zkproof: load %s proving key: %w", p.circuitID, err)
			return
		}
		p.ccs, p.pk = ccs, pk
		logger.Info().Str("circuit", p.circuitID).Msg("proving key loaded")
	})
}

// Prove generates a Groth16 proof for assignment, a fully populated
// (public and private) witness for the circuit this Prover was built for.
func (p *Prover) Prove(assignment frontend.Circuit) ([]byte, error) {
	p.init()
	if p.err != nil {
		return nil, p.err
	}

	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("zkproof: build witness: %w", err)
	}

	proof, err := groth16.Prove(p.ccs, p.pk, full)
	if err != nil {
		return nil, fmt.Errorf("zkproof: prove: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("zkproof: serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// Verifier deserializes a circuit's verifying key once and checks Groth16
// proofs against a public-only circuit assignment.
type Verifier struct {
	once sync.Once
	err  error

	vk groth16.VerifyingKey

	keyDir    string
	circuitID string
}

// NewVerifier returns a Verifier that lazily loads
// keyDir/<circuitID>_verifier.key on its first use.
func NewVerifier(keyDir, circuitID string) *Verifier {
	return &Verifier{keyDir: keyDir, circuitID: circuitID}
}

func (v *Verifier) init() {
	v.once.Do(func() {
		_, vk, err := setup.LoadKeys(v.keyDir, v.circuitID)
		if err != nil {
			v.err = fmt.Errorf("zkproof: load %s verifying key: %w", v.circuitID, err)
			return
		}
		v.vk = vk
		logger.Info().Str("circuit", v.circuitID).Msg("verifying key loaded")
	})
}

// Verify checks proofBytes against publicAssignment, a circuit value with
// only its public fields (`gnark:",public"`) populated — the private
// fields are ignored. Returns false (not an error) for a well-formed but
// invalid proof; an error only for malformed input or an unready
// Verifier.
func (v *Verifier) Verify(proofBytes []byte, publicAssignment frontend.Circuit) (bool, error) {
	v.init()
	if v.err != nil {
		return false, v.err
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("zkproof: deserialize proof: %w", err)
	}

	full, err := frontend.NewWitness(publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("zkproof: build public witness: %w", err)
	}

	if err := groth16.Verify(proof, v.vk, full); err != nil {
		return false, nil
	}
	return true, nil
}
