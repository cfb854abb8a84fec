package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/execution"
	"github.com/vic/goblc/pkg/reduce"
)

// Scenario is one entry of pkg/execution/testdata/scenarios.yaml.
type Scenario struct {
	Name       string   `yaml:"name"`
	Source     string   `yaml:"source,omitempty"`
	Bits       string   `yaml:"bits,omitempty"`
	Packed     string   `yaml:"packed,omitempty"`
	Input      string   `yaml:"input,omitempty"`
	InputHex   string   `yaml:"input_hex,omitempty"`
	InputBits  string   `yaml:"input_bits,omitempty"`
	Nothing    bool     `yaml:"nothing,omitempty"`
	Mode       string   `yaml:"mode,omitempty"`
	MaxSteps   uint64   `yaml:"max_steps,omitempty"`
	Want       string   `yaml:"want"`
	WantHex    string   `yaml:"want_hex,omitempty"`
	Error      string   `yaml:"error,omitempty"`
	Strategies []string `yaml:"strategies,flow,omitempty"`
}

const header = "# Code generated by gentests. DO NOT EDIT.\n"

var both = []string{"graph", "tree"}

func main() {
	scenarios := []Scenario{
		// Classic programs
		{Name: "identity-packed", Packed: "20", Input: "herp derp", Want: "herp derp", Strategies: both},
		{Name: "identity-hi", Bits: "0010", Input: "hi", Want: "hi", Strategies: both},
		{Name: "identity-empty", Bits: "0010", Want: "", Strategies: both},
		{Name: "repeat", Bits: "000101100100011010000000000001011011110010111100111111011111011010", Input: "hurr", Want: "hurrhurr"},
		{Name: "reverse", Bits: "0001011001000110100000000001011100111110111100001011011110110000010", Input: "herp derp", Want: "pred preh"},
		{Name: "sort", Packed: "154684060546816015fbec2f80015bf97f0b7ef72fec2dfb805605fd85bb76115d505c00be7fc12bff0ffc2c1b72bff0ffc2c16d345040", Input: "3241", Want: "1234"},
		{Name: "inflate", Packed: "4444681601791a00167ffbcbcfdf65fbed0f3ce73cf3c2d820582c0b06c0", InputHex: "017a74", Mode: "auto", Want: "000000010111101001110100"},
		{Name: "deflate", Packed: "446816057e011700be55fff00dc18bb2c1b0f87c2dd8059e097fbfb14839ce81ce80", Input: "00000001011110100111010", WantHex: "017a74"},

		// Failures
		{Name: "lone-one", Bits: "1", Input: "hi", Error: "MalformedEncoding", Strategies: both},
		{Name: "omega", Bits: "010001101000011010", Nothing: true, MaxSteps: 10000, Error: "Diverged", Strategies: both},

		// Output shapes
		{Name: "church-two", Source: "f: x: f (f x)", Nothing: true, Mode: "auto", Want: "(λλ2(21))", Strategies: both},
		{Name: "church-two-bytes", Source: "f: x: f (f x)", Nothing: true, Error: "InvalidOutputShape", Strategies: both},
		{Name: "church-two-binary-input", Source: "x: x", InputBits: "0000011100111010", Mode: "auto", Want: "(λλ2(21))", Strategies: both},
		{Name: "bit-list", Source: "s: s (x: y: x) (s: s (x: y: y) (x: y: y))", Nothing: true, Mode: "auto", Want: "01", Strategies: both},
		{Name: "bit-list-bytes", Source: "s: s (x: y: x) (s: s (x: y: y) (x: y: y))", Nothing: true, Error: "InvalidOutputShape", Strategies: both},
		{Name: "not-a-boolean", Source: "s: s (t: t (x: x) (x: y: y)) (x: y: y)", Nothing: true, Error: "NotABoolean", Strategies: both},

		// List programs
		{Name: "ignore-input", Source: "i: x: y: y", Input: "abc", Want: "", Strategies: both},
		{Name: "head", Source: "l: l (h: t: s: s h (x: y: y))", Input: "hey", Want: "h", Strategies: both},
		{Name: "tail", Source: "l: l (h: t: t)", Input: "hey", Want: "ey", Strategies: both},
	}

	baseDir := "pkg/execution/testdata"
	os.MkdirAll(baseDir, 0755)

	var out []Scenario
	for _, sc := range scenarios {
		if sc.Source != "" {
			prog, err := execution.ProgramFromSource(sc.Source)
			if err != nil {
				fmt.Printf("Error parsing source for %s: %v\n", sc.Name, err)
				continue
			}
			sc.Bits = prog.Bits().String()
		}
		if err := check(sc); err != nil {
			fmt.Printf("Error checking %s: %v\n", sc.Name, err)
			continue
		}
		out = append(out, sc)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}{out}); err != nil {
		fmt.Printf("Error encoding scenarios: %v\n", err)
		os.Exit(1)
	}
	enc.Close()

	path := filepath.Join(baseDir, "scenarios.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		fmt.Printf("Error writing %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d scenarios\n", len(out))
}

// check runs a scenario on the graph machine and compares the result
// with its expectation.
func check(sc Scenario) error {
	var prog execution.Program
	var err error
	if sc.Packed != "" {
		data, herr := hex.DecodeString(sc.Packed)
		if herr != nil {
			return herr
		}
		prog, err = execution.ProgramFromPacked(data)
	} else {
		prog, err = execution.ParseProgram(sc.Bits)
	}

	var got []byte
	if err == nil {
		in := execution.Bytes([]byte(sc.Input))
		switch {
		case sc.Nothing:
			in = execution.Nothing()
		case sc.InputBits != "":
			in = execution.Binary(blc.MustParseBits(sc.InputBits))
		case sc.InputHex != "":
			data, herr := hex.DecodeString(sc.InputHex)
			if herr != nil {
				return herr
			}
			in = execution.Bytes(data)
		}
		mode, merr := execution.ParseMode(sc.Mode)
		if merr != nil {
			return merr
		}
		limits := reduce.DefaultLimits
		if sc.MaxSteps > 0 {
			limits.MaxSteps = sc.MaxSteps
		}
		got, err = execution.Run(context.Background(), prog, in, execution.WithMode(mode), execution.WithLimits(limits))
	}

	if sc.Error != "" {
		var e *execution.Error
		if !errors.As(err, &e) || e.Kind.String() != sc.Error {
			return fmt.Errorf("got %q, %v; want %s", got, err, sc.Error)
		}
		return nil
	}
	if err != nil {
		return err
	}
	want := []byte(sc.Want)
	if sc.WantHex != "" {
		if want, err = hex.DecodeString(sc.WantHex); err != nil {
			return err
		}
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("output %q, want %q", got, want)
	}
	return nil
}
