package main

import (
	"fmt"

	"github.com/cminyard/convcode/interleave"
)

// selfTestCase is a small hand-checkable (width, bits) pair exercised by
// -t: interleaving then deinterleaving must recover the original bits.
type selfTestCase struct {
	width int
	bits  string
}

var selfTestCases = []selfTestCase{
	{width: 3, bits: "1011010"},
	{width: 4, bits: "110100101101"},
	{width: 1, bits: "10110"},
	{width: 5, bits: "0"},
	{width: 8, bits: "0101010101010101"},
}

func runSelfTest() int {
	fail := 0
	for _, tc := range selfTestCases {
		nbits := len(tc.bits)
		data := bitStringToBytes(tc.bits)

		out := make([]byte, 0, nbits)
		interleave.Interleave(tc.width, data, nbits, func(bit uint32) {
			if bit != 0 {
				out = append(out, '1')
			} else {
				out = append(out, '0')
			}
		})

		restored := interleave.Deinterleave(tc.width, bitStringToBytes(string(out)), nbits)
		got := bytesToBitString(restored, nbits)

		if got != tc.bits {
			fmt.Printf("FAIL width=%d in=%s interleaved=%s out=%s\n", tc.width, tc.bits, string(out), got)
			fail++
			continue
		}
		fmt.Printf("PASS width=%d bits=%d\n", tc.width, nbits)
	}

	fmt.Printf("%d/%d self-checks passed\n", len(selfTestCases)-fail, len(selfTestCases))
	if fail > 0 {
		return 1
	}
	return 0
}
