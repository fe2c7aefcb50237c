package pedersen

import (
	"bytes"
	"testing"

	"github.com/zksanta/engine/config"
	"github.com/zksanta/engine/pkg/codec"
)

func TestH1Deterministic(t *testing.T) {
	data := []byte("santa's little helper")
	a, err := H1(data)
	if err != nil {
		t.Fatal(err)
	}
	b, err := H1(data)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatal("H1 must be deterministic for identical input")
	}
}

func TestH1DiffersOnDifferentInput(t *testing.T) {
	a, _ := H1([]byte("alpha"))
	b, _ := H1([]byte("beta"))
	if a.Equal(b) {
		t.Fatal("H1 of distinct inputs collided")
	}
}

func TestH1RejectsOversizedInput(t *testing.T) {
	big := bytes.Repeat([]byte{0xFF}, 129) // 129 bytes > 128-byte cap
	if _, err := H1(big); err == nil {
		t.Fatal("expected H1 to reject an over-cap input")
	}
}

func TestH1AcceptsCapSizedInput(t *testing.T) {
	exact := bytes.Repeat([]byte{0xAB}, 128)
	if _, err := H1(exact); err != nil {
		t.Fatalf("expected 128-byte input to be accepted: %v", err)
	}
}

func TestH2MatchesH2cOfPreHashedOperands(t *testing.T) {
	a := []byte("chooser")
	b := []byte("chosen")

	viaH2, err := H2(a, b)
	if err != nil {
		t.Fatal(err)
	}

	ha, _ := H1(a)
	hb, _ := H1(b)
	viaH2c := H2c(ha, hb)

	if !viaH2.Equal(viaH2c) {
		t.Fatal("H2(a, b) must equal H2c(H1(a), H1(b))")
	}
}

func TestH2cOrderMatters(t *testing.T) {
	a, _ := H1([]byte("left"))
	b, _ := H1([]byte("right"))

	if H2c(a, b).Equal(H2c(b, a)) {
		t.Fatal("H2c should not be symmetric for distinct operands")
	}
}

func TestH1ParamsAndH2ParamsAreIndependent(t *testing.T) {
	h1 := H1Params()
	h2 := H2Params()
	if h1.Table[0][0].Equal(h2.Table[0][0]) {
		t.Fatal("H1 and H2 parameter tables must not share generators")
	}
}

func TestPedersenInputSizeMatchesPointPairEncoding(t *testing.T) {
	// Two point encodings concatenate to exactly the hash's bit cap, so
	// H2c never needs to pad — this pins that relationship down.
	enc := codec.Encode(H1Params().Table[0][0])
	if len(enc)*2*8 != config.MaxHashInputBits {
		t.Fatalf("two point encodings (%d bits) must fill the %d-bit window exactly", len(enc)*2*8, config.MaxHashInputBits)
	}
}
