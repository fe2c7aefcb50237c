// Package statecodec implements the length-less fixed-width concatenation
// codec (spec §6, SPEC_FULL.md §5.8): a vector of 64-byte records encoded
// back-to-back with no length prefix, record count inferred from
// len(bytes)/64. Grounded on
// original_source/zkretvm/src/state/zkret_state.rs's encode/decode pair.
package statecodec

import "fmt"

// RecordSize is the fixed width of every encoded record (a PubKey64,
// nullifier, or other 64-byte field).
const RecordSize = 64

// Encode concatenates records with no separator or length prefix.
func Encode(records [][RecordSize]byte) []byte {
	out := make([]byte, 0, len(records)*RecordSize)
	for _, r := range records {
		out = append(out, r[:]...)
	}
	return out
}

// Decode splits data into RecordSize-byte records. It returns an error if
// len(data) is not an exact multiple of RecordSize.
func Decode(data []byte) ([][RecordSize]byte, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("statecodec: length %d is not a multiple of %d", len(data), RecordSize)
	}
	count := len(data) / RecordSize
	out := make([][RecordSize]byte, count)
	for i := 0; i < count; i++ {
		copy(out[i][:], data[i*RecordSize:(i+1)*RecordSize])
	}
	return out, nil
}
