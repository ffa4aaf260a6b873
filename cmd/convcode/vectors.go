package main

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cminyard/convcode/convcode"
)

//go:embed testdata/vectors.yaml
var defaultVectors []byte

// vector is one named encode/decode test case, loaded from YAML. It
// mirrors the "Concrete scenarios" table in spec.md 8: a config, a
// decoded/encoded bit-string pair, and the expected decode error count.
type vector struct {
	Name         string        `yaml:"name"`
	K            int           `yaml:"k"`
	Polys        []string      `yaml:"polys"`
	DoTail       bool          `yaml:"do_tail"`
	Recursive    bool          `yaml:"recursive"`
	Decoded      string        `yaml:"decoded"`
	Encoded      string        `yaml:"encoded"`
	Uncertain100 uint8         `yaml:"uncertain100"`
	Uncertainty  map[int]uint8 `yaml:"uncertainty"` // sparse: bit position -> value, rest are 0
	NumErrs      uint32        `yaml:"num_errs"`
}

func runTests(vectorsFile string) int {
	var vectors []vector
	if err := yaml.Unmarshal(defaultVectors, &vectors); err != nil {
		fmt.Fprintf(os.Stderr, "parsing built-in vectors: %v\n", err)
		return 1
	}

	if vectorsFile != "" {
		data, err := os.ReadFile(vectorsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading vectors file: %v\n", err)
			return 1
		}
		var extra []vector
		if err := yaml.Unmarshal(data, &extra); err != nil {
			fmt.Fprintf(os.Stderr, "parsing vectors file: %v\n", err)
			return 1
		}
		vectors = append(vectors, extra...)
	}

	fail := 0
	for _, v := range vectors {
		if !runVector(v) {
			fail++
		}
	}
	fmt.Printf("%d/%d vectors passed\n", len(vectors)-fail, len(vectors))
	if fail > 0 {
		return 1
	}
	return 0
}

func parsePolys(strs []string) ([]uint16, error) {
	polys := make([]uint16, len(strs))
	for i, s := range strs {
		n, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("polynomial %q: %w", s, err)
		}
		polys[i] = uint16(n)
	}
	return polys, nil
}

func collectSink(out *strings.Builder) convcode.Sink {
	return func(b byte, nbits int) error {
		for i := 0; i < nbits; i++ {
			if (b>>uint(i))&1 != 0 {
				out.WriteByte('1')
			} else {
				out.WriteByte('0')
			}
		}
		return nil
	}
}

func runVector(v vector) bool {
	polys, err := parsePolys(v.Polys)
	if err != nil {
		logger.Error("bad vector", "name", v.Name, "err", err)
		return false
	}

	ok := true

	if v.NumErrs == 0 {
		var out strings.Builder
		c, err := convcode.New(v.K, polys, 0, v.DoTail, v.Recursive, collectSink(&out), nil)
		if err != nil {
			logger.Error("alloc failed", "name", v.Name, "err", err)
			return false
		}

		in := bitStringToBytes(v.Decoded)
		if err := c.EncodeBits(in, len(v.Decoded)); err != nil {
			logger.Error("encode failed", "name", v.Name, "err", err)
			return false
		}
		total, err := c.EncodeFinish()
		if err != nil {
			logger.Error("encode finish failed", "name", v.Name, "err", err)
			return false
		}

		if out.String() != v.Encoded || total != len(v.Encoded) {
			logger.Error("encode mismatch", "name", v.Name, "want", v.Encoded, "got", out.String())
			ok = false
		}
	}

	var uncertainty []uint8
	if len(v.Uncertainty) > 0 {
		uncertainty = make([]uint8, len(v.Encoded))
		for pos, val := range v.Uncertainty {
			uncertainty[pos] = val
		}
	}

	var dout strings.Builder
	dc, err := convcode.New(v.K, polys, len(v.Encoded)+64, v.DoTail, v.Recursive, nil, collectSink(&dout))
	if err != nil {
		logger.Error("alloc failed", "name", v.Name, "err", err)
		return false
	}
	if v.Uncertain100 != 0 {
		dc.SetDecodeMaxUncertainty(v.Uncertain100)
	}

	encData := bitStringToBytes(v.Encoded)
	if err := dc.DecodeStream(encData, len(v.Encoded), uncertainty); err != nil {
		logger.Error("decode failed", "name", v.Name, "err", err)
		return false
	}
	_, numErrs, err := dc.DecodeFinish()
	if err != nil {
		logger.Error("decode finish failed", "name", v.Name, "err", err)
		return false
	}

	if dout.String() != v.Decoded || numErrs != v.NumErrs {
		logger.Error("decode mismatch", "name", v.Name, "want", v.Decoded, "got", dout.String(), "wantErrs", v.NumErrs, "gotErrs", numErrs)
		ok = false
	}

	if ok {
		logger.Info("vector passed", "name", v.Name)
	}
	return ok
}
