// Package gadgets holds the in-circuit twins of pkg/codec and
// pkg/pedersen: bit-exact gnark gadgets that circuits/choiceauth and
// circuits/revealauth compose to mirror the out-of-circuit primitives
// (spec §4.5's "MUST match §4.1 bit-for-bit" requirement).
package gadgets

import "github.com/consensys/gnark/frontend"

// BytesToBits decomposes UInt8 witnesses into individual bit witnesses,
// least-significant bit first within each byte and lowest-index byte
// first — the same ordering pkg/pedersen.bitAt uses out of circuit.
func BytesToBits(api frontend.API, bytes []frontend.Variable) []frontend.Variable {
	bits := make([]frontend.Variable, 0, len(bytes)*8)
	for _, b := range bytes {
		bits = append(bits, api.ToBinary(b, 8)...)
	}
	return bits
}

// PadBits zero-pads (or truncates) bits to exactly n entries, mirroring
// pkg/pedersen.windowedHash's implicit zero-padding of short inputs.
func PadBits(bits []frontend.Variable, n int) []frontend.Variable {
	if len(bits) >= n {
		return bits[:n]
	}
	out := make([]frontend.Variable, n)
	copy(out, bits)
	for i := len(bits); i < n; i++ {
		out[i] = 0
	}
	return out
}
