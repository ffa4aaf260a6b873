// Command convcode is a small test/demo harness around the convcode
// package: encode or decode a bit string from the command line, or
// replay the named encode/decode test vectors with -t.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/cminyard/convcode/convcode"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

func main() {
	os.Exit(run())
}

func run() int {
	var (
		decode          = pflag.BoolP("decode", "d", false, "decode the given bit string instead of encoding it")
		encode          = pflag.BoolP("encode", "e", false, "encode the given bit string (default)")
		test            = pflag.BoolP("test", "t", false, "run the built-in test vectors instead of encoding/decoding")
		noTail          = pflag.BoolP("no-tail", "x", false, "do not append/strip a k-1 bit zero tail")
		recursive       = pflag.BoolP("recursive", "r", false, "use a recursive systematic code, polys[0] is the feedback polynomial")
		startState      = pflag.IntP("start-state", "s", 0, "starting trellis state for both encode and decode")
		initOtherStates = pflag.Int64P("init-other-states", "i", int64(convcode.DefaultInitOtherStates), "path metric seeded into every decoder state but the start state")
		polyStrs        = pflag.StringArrayP("poly", "p", nil, "a generator polynomial, in octal/hex/decimal per Go's strconv.ParseInt base-0 rules; repeat for more polynomials")
		vectorsFile     = pflag.String("vectors", "", "YAML file of named test vectors to replay in addition to the built-in ones (implies -t)")
		debug           = pflag.CountP("debug", "D", "enable debug logging of the run's mode and parameters (repeatable)")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] k bitstring\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "   or: %s -t [--vectors file.yaml]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *debug > 0 {
		logger.SetLevel(log.DebugLevel)
	}

	if *test || *vectorsFile != "" {
		return runTests(*vectorsFile)
	}

	if *decode && *encode {
		fmt.Fprintln(os.Stderr, "-d and -e are mutually exclusive")
		return 1
	}

	if len(*polyStrs) == 0 {
		fmt.Fprintln(os.Stderr, "no polynomials (-p) given")
		return 1
	}
	polys := make([]uint16, len(*polyStrs))
	for i, s := range *polyStrs {
		v, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad polynomial %q: %v\n", s, err)
			return 1
		}
		polys[i] = uint16(v)
	}

	args := pflag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "no constraint length (k) given")
		return 1
	}
	k, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad constraint length %q: %v\n", args[0], err)
		return 1
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no data given")
		return 1
	}
	bitstring := args[1]

	maxDecodeLenBits := 0
	if *decode {
		maxDecodeLenBits = len(bitstring) + 64
	}

	var out strings.Builder
	sink := func(b byte, nbits int) error {
		for i := 0; i < nbits; i++ {
			if (b>>uint(i))&1 != 0 {
				out.WriteByte('1')
			} else {
				out.WriteByte('0')
			}
		}
		return nil
	}

	var c *convcode.Coder
	if *decode {
		c, err = convcode.New(k, polys, maxDecodeLenBits, !*noTail, *recursive, nil, sink)
	} else {
		c, err = convcode.New(k, polys, 0, !*noTail, *recursive, sink, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if *startState != 0 {
		if err := c.ReinitEncoder(*startState); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		if err := c.ReinitDecoder(*startState, uint32(*initOtherStates)); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	} else if *initOtherStates != int64(convcode.DefaultInitOtherStates) {
		if err := c.ReinitDecoder(0, uint32(*initOtherStates)); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	data := bitStringToBytes(bitstring)

	logger.Debug("running", "mode", modeName(*decode), "k", k, "polys", polys, "bits", len(bitstring))

	var totalBits int
	var numErrs uint32
	if *decode {
		if err := c.DecodeStream(data, len(bitstring), nil); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		totalBits, numErrs, err = c.DecodeFinish()
	} else {
		if err := c.EncodeBits(data, len(bitstring)); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		totalBits, err = c.EncodeFinish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Printf("  %s\n", out.String())
	if *decode {
		fmt.Printf("  errors = %d\n", numErrs)
	}
	fmt.Printf("  bits = %d\n", totalBits)
	return 0
}

func modeName(decode bool) string {
	if decode {
		return "decode"
	}
	return "encode"
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
