package convcode

import (
	"math/bits"

	"github.com/cminyard/convcode/internal/bitio"
)

// distance returns the cost of explaining a received symbol v1 as the
// expected symbol v2. With no uncertainty array this is plain Hamming
// distance. With one, each polynomial's bit contributes uncertainty[j]
// when it matched (we were told it was uncertain, yet it matched) or
// uncertainty100-uncertainty[j] when it didn't (we were told it was
// certain, yet it mismatched).
func (c *Coder) distance(v1, v2 uint32, uncertainty []uint8) uint32 {
	if uncertainty == nil {
		return uint32(bits.OnesCount32(v1 ^ v2))
	}

	var rv uint32
	for i := 0; i < c.numPolys; i++ {
		if (v1 & 1) == (v2 & 1) {
			rv += uint32(uncertainty[i])
		} else {
			rv += uint32(c.uncertainty100) - uint32(uncertainty[i])
		}
		v1 >>= 1
		v2 >>= 1
	}
	return rv
}

// predecessors returns the two states that could have transitioned into
// cstate: one with the top bit of the shift clear, one set.
func (c *Coder) predecessors(cstate int) (int, int) {
	p0 := cstate >> 1
	shift := c.k - 2
	if shift < 0 {
		return p0, p0
	}
	return p0, p0 | (1 << uint(shift))
}

// decodeSymbol is one Viterbi trellis step: for every successor state it
// picks the cheaper of its two possible predecessors, strictly
// preferring the low-top-bit predecessor p0 on a tie, and records the
// survivor in the trellis.
func (c *Coder) decodeSymbol(symbol uint32, uncertainty []uint8) error {
	if c.ctrellis+c.numPolys > c.trellisSize {
		return ErrCapacityExceeded
	}

	column := c.trellis[c.ctrellis]

	for s := 0; s < c.numStates; s++ {
		p0, p1 := c.predecessors(s)

		bit0 := c.prevBit(p0, s)
		dist0 := c.currPath[p0] + c.distance(c.tables.out[bit0][p0], symbol, uncertainty)

		bit1 := c.prevBit(p1, s)
		dist1 := c.currPath[p1] + c.distance(c.tables.out[bit1][p1], symbol, uncertainty)

		if dist1 < dist0 {
			column[s] = p1
			c.nextPath[s] = dist1
		} else {
			column[s] = p0
			c.nextPath[s] = dist0
		}
	}

	c.ctrellis++
	c.currPath, c.nextPath = c.nextPath, c.currPath
	return nil
}

// DecodeStream feeds nbits bits of received data (low-bit-first, may
// span multiple calls) into the Viterbi decoder, buffering any trailing
// bits that don't form a full symbol until the next call. uncertainty,
// if non-nil, must have one entry per bit of data/nbits.
func (c *Coder) DecodeStream(data []byte, nbits int, uncertainty []uint8) error {
	curr := 0

	if c.leftoverBits > 0 {
		if nbits+c.leftoverBits < c.numPolys {
			newBits := bitio.ExtractBits(data, 0, nbits)
			c.leftoverData |= newBits << uint(c.leftoverBits)
			if uncertainty != nil {
				for i := 0; i < nbits; i++ {
					c.leftoverUncertainty[c.leftoverBits+i] = uncertainty[i]
				}
			}
			c.leftoverBits += nbits
			return nil
		}

		extractSize := c.numPolys - c.leftoverBits
		newBits := bitio.ExtractBits(data, 0, extractSize)
		curr += extractSize
		nbits -= extractSize
		c.leftoverData |= newBits << uint(c.leftoverBits)

		var u []uint8
		if uncertainty != nil {
			for i := 0; i < extractSize; i++ {
				c.leftoverUncertainty[c.leftoverBits+i] = uncertainty[i]
			}
			u = c.leftoverUncertainty[:c.numPolys]
		}
		if err := c.decodeSymbol(c.leftoverData, u); err != nil {
			return err
		}
		c.leftoverBits = 0
		c.leftoverData = 0
	}

	for nbits >= c.numPolys {
		symbol := bitio.ExtractBits(data, curr, c.numPolys)

		var u []uint8
		if uncertainty != nil {
			u = uncertainty[curr : curr+c.numPolys]
		}
		if err := c.decodeSymbol(symbol, u); err != nil {
			return err
		}
		curr += c.numPolys
		nbits -= c.numPolys
	}

	c.leftoverBits = nbits
	if nbits > 0 {
		c.leftoverData = bitio.ExtractBits(data, curr, nbits)
		if uncertainty != nil {
			for i := 0; i < nbits; i++ {
				c.leftoverUncertainty[i] = uncertainty[curr+i]
			}
		}
	}
	return nil
}

// findMin returns the smallest current path metric and the state it
// belongs to, the lowest-indexed state winning ties.
func (c *Coder) findMin() (uint32, int) {
	minVal := c.currPath[0]
	state := 0
	for i := 1; i < c.numStates; i++ {
		if c.currPath[i] < minVal {
			minVal = c.currPath[i]
			state = i
		}
	}
	return minVal, state
}

// DecodeFinish traces the surviving path back from the best final state,
// strips the k-1 bit tail if doTail is set, and emits the decoded bits
// in forward order through the decoder's Sink. Returns the total number
// of output bits and numErrs: the accumulated Hamming distance in hard
// mode, or accumulated uncertainty in soft mode.
func (c *Coder) DecodeFinish() (int, uint32, error) {
	minVal, cstate := c.findMin()

	for i := c.ctrellis; i > 0; {
		i--
		pstate := c.trellis[i][cstate]
		// Row 0 is no longer needed as a predecessor once visited;
		// reuse it to cache the playback bit for the forward pass.
		c.trellis[i][0] = int(c.prevBit(pstate, cstate))
		cstate = pstate
	}

	extraBits := 0
	if c.doTail {
		extraBits = c.k - 1
	}

	for i := 0; i < c.ctrellis-extraBits; i++ {
		if err := c.decOut.Write(uint32(c.trellis[i][0]), 1); err != nil {
			return 0, 0, err
		}
	}
	if err := c.decOut.Flush(); err != nil {
		return 0, 0, err
	}

	return c.decOut.TotalBits(), minVal, nil
}

// DecodeBlock is the non-streaming equivalent of DecodeStream followed
// by DecodeFinish: it writes the decoded bits directly into out (which
// must be zeroed and large enough for the un-tailed bit count) instead
// of going through the Sink, and optionally fills outUncertainty with the
// cumulative uncertainty up to each output bit position (outUncertainty,
// if non-nil, must be sized to at least the un-tailed bit count).
func (c *Coder) DecodeBlock(data []byte, nbits int, uncertainty []uint8, out []byte, outUncertainty []uint32) (uint32, error) {
	if err := c.DecodeStream(data, nbits, uncertainty); err != nil {
		return 0, err
	}
	return c.decodeBlockTraceback(data, uncertainty, out, outUncertainty), nil
}

// decodeBlockTraceback implements the traceback half of DecodeBlock,
// shared with the second pass of DecodeTailBiting.
func (c *Coder) decodeBlockTraceback(data []byte, uncertainty []uint8, out []byte, outUncertainty []uint32) uint32 {
	minVal, cstate := c.findMin()

	extraBits := 0
	if c.doTail {
		extraBits = c.k - 1
	}

	cuncertainty := minVal
	for i := c.ctrellis; i > 0; {
		i--
		pstate := c.trellis[i][cstate]
		bit := c.prevBit(pstate, cstate)

		if extraBits == 0 {
			bitio.SetBit(out, i, bit)
		}

		if outUncertainty != nil {
			if extraBits == 0 {
				outUncertainty[i] = cuncertainty
			}

			inPos := i * c.numPolys
			symbol := bitio.ExtractBits(data, inPos, c.numPolys)

			var u []uint8
			if uncertainty != nil {
				u = uncertainty[inPos : inPos+c.numPolys]
			}
			cuncertainty -= c.distance(c.tables.out[bit][pstate], symbol, u)
		}

		if extraBits > 0 {
			extraBits--
		}
		cstate = pstate
	}

	return minVal
}

// discoverBoundaryState returns the state the best surviving path ends
// in, i.e. the state named by its last k-1 decoded bits, without writing
// any output. A tail-biting frame ends in the state it started from, so
// the first pass of tail-biting decode uses this as the true start/end
// state.
func (c *Coder) discoverBoundaryState() int {
	_, cstate := c.findMin()
	return cstate
}

// tailBitingBias is the "small" init_other_states value used for the
// first decode pass of tail-biting: it biases the search toward state 0
// without ruling out any other starting state.
const tailBitingBias = uint32(4)

// DecodeTailBiting decodes a tail-biting frame (one encoded with doTail
// false and the encoder's state pre-seeded with the last k-1 bits of the
// plaintext) using the two-pass procedure from spec.md 4.3: an initial
// pass biased toward state 0 discovers the true start/end state from
// the state the surviving path ends in, then a second pass decodes for
// real from that discovered state.
func (c *Coder) DecodeTailBiting(data []byte, nbits int, uncertainty []uint8, out []byte) (uint32, error) {
	if err := c.ReinitDecoder(0, tailBitingBias); err != nil {
		return 0, err
	}
	if err := c.DecodeStream(data, nbits, uncertainty); err != nil {
		return 0, err
	}
	discovered := c.discoverBoundaryState()

	if err := c.ReinitDecoder(discovered, DefaultInitOtherStates); err != nil {
		return 0, err
	}
	if err := c.DecodeStream(data, nbits, uncertainty); err != nil {
		return 0, err
	}

	return c.decodeBlockTraceback(data, uncertainty, out, nil), nil
}
