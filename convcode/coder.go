package convcode

import (
	"math"

	"github.com/cminyard/convcode/internal/bitio"
)

// MaxPolynomials is the largest number of generator polynomials a Coder
// may be configured with.
const MaxPolynomials = 16

// MaxConstraintLength is the largest constraint length k a Coder may be
// configured with.
const MaxConstraintLength = 16

// DefaultStartState is the state encoding and decoding start from unless
// told otherwise.
const DefaultStartState = 0

// DefaultInitOtherStates is the path-metric value given to every state
// but the start state when reinitialising the decoder: large enough to
// dominate any realistic path metric while leaving headroom against
// overflow for several symbols' worth of additions.
const DefaultInitOtherStates = uint32(math.MaxUint32 / 2)

// Sink receives encoded or decoded output a few bits at a time. See
// bitio.Sink for the exact contract (byte mode vs. symbol mode, and what
// a non-nil return does).
type Sink = bitio.Sink

// Coder owns all state for one encode+decode pair sharing a constraint
// length and generator polynomial set. See the package doc comment for
// the concurrency contract.
type Coder struct {
	k         int
	polys     []uint16 // bit-reversed
	numPolys  int
	numStates int
	doTail    bool
	recursive bool

	tables *stateTables

	encState int
	encOut   *bitio.OutputBuffer

	decOut *bitio.OutputBuffer

	trellisSize int
	trellis     [][]int // trellis[column][state], column-major
	ctrellis    int

	currPath []uint32
	nextPath []uint32

	uncertainty100 uint8

	leftoverBits        int
	leftoverData        uint32
	leftoverUncertainty []uint8
}

// New allocates a Coder for the given constraint length k (1..16) and
// generator polynomials (1..16 of them, each a k-bit mask). If
// maxDecodeLenBits is 0, decoding is disabled and only Encode* operations
// may be used. doTail selects whether Encode/DecodeFinish append/strip a
// k-1 bit zero tail; recursive selects a systematic, recursive code with
// polys[0] as the feedback polynomial.
func New(k int, polys []uint16, maxDecodeLenBits int, doTail, recursive bool, encSink, decSink Sink) (*Coder, error) {
	if k < 1 || k > MaxConstraintLength {
		return nil, ErrBadConstraintLength
	}
	if len(polys) < 1 || len(polys) > MaxPolynomials {
		return nil, ErrBadPolynomialCount
	}

	c := &Coder{
		k:              k,
		numPolys:       len(polys),
		numStates:      1 << uint(k-1),
		doTail:         doTail,
		recursive:      recursive,
		uncertainty100: 100,
		encOut:         bitio.NewOutputBuffer(encSink),
		decOut:         bitio.NewOutputBuffer(decSink),
	}

	c.polys = make([]uint16, len(polys))
	for i, p := range polys {
		c.polys[i] = reverseBits(k, p)
	}

	c.tables = buildTables(c.numStates, c.polys, recursive)

	if maxDecodeLenBits > 0 {
		c.trellisSize = maxDecodeLenBits + k*c.numPolys

		c.trellis = make([][]int, c.trellisSize)
		for i := range c.trellis {
			c.trellis[i] = make([]int, c.numStates)
		}
		c.currPath = make([]uint32, c.numStates)
		c.nextPath = make([]uint32, c.numStates)
	}

	c.leftoverUncertainty = make([]uint8, c.numPolys-1+1)

	if err := c.ReinitBoth(); err != nil {
		return nil, err
	}

	return c, nil
}

// K returns the configured constraint length.
func (c *Coder) K() int { return c.k }

// NumPolys returns the configured number of generator polynomials, i.e.
// the number of output bits per symbol.
func (c *Coder) NumPolys() int { return c.numPolys }

// NumStates returns the number of trellis states, 2^(k-1).
func (c *Coder) NumStates() int { return c.numStates }

// SetEncodeOutputPerSymbol switches the encoder's Sink between
// byte-packed output (the default) and symbol mode, where every Sink
// call carries exactly NumPolys bits and nothing is ever buffered.
func (c *Coder) SetEncodeOutputPerSymbol(v bool) {
	c.encOut.SetSymbolMode(v)
}

// SetDecodeMaxUncertainty sets the value that represents "100% uncertain"
// in soft-decision uncertainty arrays. Defaults to 100.
func (c *Coder) SetDecodeMaxUncertainty(u uint8) {
	c.uncertainty100 = u
}

// ReinitEncoder resets the encoder's shift register and output
// accumulator, ready to encode a new frame starting from startState.
func (c *Coder) ReinitEncoder(startState int) error {
	if startState < 0 || startState >= c.numStates {
		return ErrBadStartState
	}
	c.encState = startState
	c.encOut.Reset()
	return nil
}

// ReinitDecoder resets the decoder's path metrics, trellis cursor and
// output accumulator. Every state but startState is seeded with
// initOtherStates so the Viterbi search is biased toward (but not
// locked to) startState; see Coder.DecodeTailBiting for how tail-biting
// uses this.
func (c *Coder) ReinitDecoder(startState int, initOtherStates uint32) error {
	if startState < 0 || startState >= c.numStates {
		return ErrBadStartState
	}

	for i := range c.currPath {
		if i == startState {
			c.currPath[i] = 0
		} else {
			c.currPath[i] = initOtherStates
		}
	}

	c.decOut.Reset()
	c.ctrellis = 0
	c.leftoverBits = 0
	return nil
}

// ReinitBoth reinitialises the encoder and decoder to their default
// start states.
func (c *Coder) ReinitBoth() error {
	if err := c.ReinitEncoder(DefaultStartState); err != nil {
		return err
	}
	if c.trellisSize > 0 {
		if err := c.ReinitDecoder(DefaultStartState, DefaultInitOtherStates); err != nil {
			return err
		}
	}
	return nil
}

// prevBit returns the input bit that drove the transition pstate ->
// cstate. For non-recursive codes this is always the low bit of cstate;
// for recursive codes the feedback bit must be recovered by checking
// which of pstate's two successors is cstate.
func (c *Coder) prevBit(pstate, cstate int) uint32 {
	if !c.recursive {
		return uint32(cstate & 1)
	}
	if c.tables.next[0][pstate] == cstate {
		return 0
	}
	return 1
}
