// Command interleave is a small test/demo harness around the
// interleave package: interleave or deinterleave a bit string from the
// command line, or run a handful of built-in self-checks with -t.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/cminyard/convcode/interleave"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		decode = pflag.BoolP("decode", "d", false, "deinterleave the given bit string instead of interleaving it")
		encode = pflag.BoolP("encode", "e", false, "interleave the given bit string (default)")
		test   = pflag.BoolP("test", "t", false, "run the built-in self-checks instead of interleaving/deinterleaving")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] width bitstring\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "   or: %s -t\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *decode && *encode {
		fmt.Fprintln(os.Stderr, "-d and -e are mutually exclusive")
		return 1
	}

	if *test {
		return runSelfTest()
	}

	args := pflag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "no interleave width given")
		return 1
	}
	width, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad interleave width %q: %v\n", args[0], err)
		return 1
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no data given")
		return 1
	}
	bitstring := args[1]
	nbits := len(bitstring)

	if *decode {
		restored := interleave.Deinterleave(width, bitStringToBytes(bitstring), nbits)
		fmt.Printf("  %s\n", bytesToBitString(restored, nbits))
	} else {
		data := bitStringToBytes(bitstring)
		out := make([]byte, 0, nbits)
		interleave.Interleave(width, data, nbits, func(bit uint32) {
			if bit != 0 {
				out = append(out, '1')
			} else {
				out = append(out, '0')
			}
		})
		fmt.Printf("  %s\n", string(out))
	}

	fmt.Printf("\n  bits = %d\n", nbits)
	return 0
}

func bitStringToBytes(s string) []byte {
	buf := make([]byte, (len(s)+7)/8)
	for i, c := range s {
		if c == '1' {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	return buf
}

func bytesToBitString(data []byte, n int) string {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if (data[i/8]>>uint(i%8))&1 != 0 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}
