package convcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	name         string
	k            int
	polys        []uint16
	doTail       bool
	recursive    bool
	decoded      string
	encoded      string
	uncertain100 uint8 // nonzero overrides the decoder's max uncertainty (scenario E)
	numErrs      uint32
}

// scenarios mirrors spec.md 8's "Concrete scenarios" table verbatim.
var scenarios = []scenario{
	{
		name: "A", k: 3, polys: []uint16{5, 7}, doTail: true,
		decoded: "010111001010001",
		encoded: "0011010010011011110100011100110111",
		numErrs: 0,
	},
	{
		name: "B", k: 3, polys: []uint16{5, 7}, doTail: true,
		decoded: "010111001010001",
		encoded: "0011010010011011110000011100110111",
		numErrs: 1,
	},
	{
		name: "C", k: 3, polys: []uint16{3, 7}, doTail: true,
		decoded: "101100",
		encoded: "0111101000110000",
		numErrs: 0,
	},
	{
		name: "D", k: 3, polys: []uint16{5, 3}, doTail: true,
		decoded: "1001101",
		encoded: "100111101110010111",
		numErrs: 0,
	},
	{
		name: "E", k: 7, polys: []uint16{0171, 0133}, doTail: true,
		decoded:      "01011010",
		encoded:      "0011100010011010100111011100",
		uncertain100: 100,
		numErrs:      100,
	},
	{
		name: "F", k: 7, polys: []uint16{0117, 0127, 0155}, doTail: true,
		decoded: "10110111",
		encoded: "111001101011100110011101111111100110001111",
		numErrs: 0,
	},
}

func TestScenarioEncode(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name, func(t *testing.T) {
			var out sinkCollector
			c, err := New(sc.k, sc.polys, 0, sc.doTail, sc.recursive, out.sink, nil)
			require.NoError(t, err)

			in := bitStringToBytes(sc.decoded)
			require.NoError(t, c.EncodeBits(in, len(sc.decoded)))
			total, err := c.EncodeFinish()
			require.NoError(t, err)

			assert.Equal(t, len(sc.encoded), total)
			assert.Equal(t, sc.encoded, out.String())
		})
	}
}

func TestScenarioDecode(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name, func(t *testing.T) {
			var out sinkCollector
			c, err := New(sc.k, sc.polys, len(sc.encoded)+64, sc.doTail, sc.recursive, nil, out.sink)
			require.NoError(t, err)
			if sc.uncertain100 != 0 {
				c.SetDecodeMaxUncertainty(sc.uncertain100)
			}

			in := bitStringToBytes(sc.encoded)

			var uncertainty []uint8
			if sc.name == "E" {
				uncertainty = make([]uint8, len(sc.encoded))
				uncertainty[4] = 100
			}

			require.NoError(t, c.DecodeStream(in, len(sc.encoded), uncertainty))
			total, numErrs, err := c.DecodeFinish()
			require.NoError(t, err)

			assert.Equal(t, sc.numErrs, numErrs)
			assert.Equal(t, len(sc.decoded), total)
			assert.Equal(t, sc.decoded, out.String())
		})
	}
}

func TestScenarioDecodeBlockMatchesStream(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name, func(t *testing.T) {
			c, err := New(sc.k, sc.polys, len(sc.encoded)+64, sc.doTail, sc.recursive, nil, nil)
			require.NoError(t, err)
			if sc.uncertain100 != 0 {
				c.SetDecodeMaxUncertainty(sc.uncertain100)
			}

			in := bitStringToBytes(sc.encoded)

			var uncertainty []uint8
			if sc.name == "E" {
				uncertainty = make([]uint8, len(sc.encoded))
				uncertainty[4] = 100
			}

			out := make([]byte, (len(sc.decoded)+7)/8)
			numErrs, err := c.DecodeBlock(in, len(sc.encoded), uncertainty, out, nil)
			require.NoError(t, err)

			assert.Equal(t, sc.numErrs, numErrs)
			assert.Equal(t, sc.decoded, bytesToBitString(out, len(sc.decoded)))
		})
	}
}
