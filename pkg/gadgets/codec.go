package gadgets

import (
	"github.com/consensys/gnark/frontend"

	"github.com/zksanta/engine/config"
)

const coordBits = 255

// EncodePoint is the in-circuit twin of pkg/codec.Encode: 255 little-endian
// bits of x, 255 of y, two zero padding bits, packed little-endian into
// config.PointSize bytes. Must match the out-of-circuit encoder bit-for-bit
// (spec §4.5, "the point-to-bytes gadget").
func EncodePoint(api frontend.API, x, y frontend.Variable) [config.PointSize]frontend.Variable {
	xBits := api.ToBinary(x, coordBits)
	yBits := api.ToBinary(y, coordBits)

	allBits := make([]frontend.Variable, config.PointSize*8)
	copy(allBits[0:coordBits], xBits)
	copy(allBits[coordBits:2*coordBits], yBits)
	for i := 2 * coordBits; i < len(allBits); i++ {
		allBits[i] = 0
	}

	var out [config.PointSize]frontend.Variable
	for byteIdx := range out {
		out[byteIdx] = api.FromBinary(allBits[byteIdx*8 : byteIdx*8+8]...)
	}
	return out
}
