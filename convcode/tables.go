package convcode

import "math/bits"

// stateTables holds the two lookup tables that reduce per-bit
// encode/decode to a pair of array reads: out[bit][state] is the
// num_polys-bit output symbol for that transition, next[bit][state] is
// the successor state.
type stateTables struct {
	out  [2][]uint32
	next [2][]int
}

// reverseBits reverses the low k bits of val, so bit 0 of the result
// corresponds to the most-recently-shifted input bit. Polynomials are
// given high-bit-first by convention; the state machine below processes
// the low bit first, so they are reversed once at construction time.
func reverseBits(k int, val uint16) uint16 {
	var rv uint16
	for i := 0; i < k; i++ {
		rv <<= 1
		rv |= val & 1
		val >>= 1
	}
	return rv
}

// parity reports whether v has an odd number of set bits.
func parity(v uint32) uint32 {
	return uint32(bits.OnesCount32(v) & 1)
}

// buildTables computes out/next for every (state, input bit) pair, from
// the already bit-reversed polys. See spec.md 4.1: for non-recursive
// codes this is a direct parity/shift computation; for recursive codes
// polynomial 0 is fed back to produce the shifted-in bit and bit 0 of
// every output symbol is the uncoded input.
func buildTables(numStates int, polys []uint16, recursive bool) *stateTables {
	st := &stateTables{}
	for b := 0; b < 2; b++ {
		st.out[b] = make([]uint32, numStates)
		st.next[b] = make([]int, numStates)
	}

	stateMask := numStates - 1

	for s := 0; s < numStates; s++ {
		for _, b := range [2]int{0, 1} {
			r := (s << 1) | b

			if !recursive {
				var out uint32
				for j, p := range polys {
					out |= parity(uint32(r)&uint32(p)) << uint(j)
				}
				st.out[b][s] = out
				st.next[b][s] = r & stateMask
				continue
			}

			fb := parity(uint32(r) & uint32(polys[0]))
			rfb := (s << 1) | int(fb)

			out := uint32(b)
			for j := 1; j < len(polys); j++ {
				out |= parity(uint32(rfb)&uint32(polys[j])) << uint(j)
			}
			st.out[b][s] = out
			st.next[b][s] = rfb & stateMask
		}
	}

	return st
}
