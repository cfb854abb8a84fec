package execution

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/reduce"
)

// scenario mirrors one entry of testdata/scenarios.yaml, which is
// written by cmd/gentests.
type scenario struct {
	Name       string   `yaml:"name"`
	Source     string   `yaml:"source"`
	Bits       string   `yaml:"bits"`
	Packed     string   `yaml:"packed"`
	Input      string   `yaml:"input"`
	InputHex   string   `yaml:"input_hex"`
	InputBits  string   `yaml:"input_bits"`
	Nothing    bool     `yaml:"nothing"`
	Mode       string   `yaml:"mode"`
	MaxSteps   uint64   `yaml:"max_steps"`
	Want       string   `yaml:"want"`
	WantHex    string   `yaml:"want_hex"`
	Error      string   `yaml:"error"`
	Strategies []string `yaml:"strategies"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	f, err := os.Open("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("open scenarios: %v", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var doc struct {
		Scenarios []scenario `yaml:"scenarios"`
	}
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("decode scenarios: %v", err)
	}
	if len(doc.Scenarios) == 0 {
		t.Fatal("no scenarios")
	}
	return doc.Scenarios
}

func (s scenario) program() (Program, error) {
	if s.Packed != "" {
		data, err := hex.DecodeString(s.Packed)
		if err != nil {
			return Program{}, err
		}
		return ProgramFromPacked(data)
	}
	return ParseProgram(s.Bits)
}

func (s scenario) input() (Input, error) {
	switch {
	case s.Nothing:
		return Nothing(), nil
	case s.InputBits != "":
		bits, err := blc.ParseBits(s.InputBits)
		if err != nil {
			return Input{}, err
		}
		return Binary(bits), nil
	case s.InputHex != "":
		data, err := hex.DecodeString(s.InputHex)
		if err != nil {
			return Input{}, err
		}
		return Bytes(data), nil
	default:
		return Bytes([]byte(s.Input)), nil
	}
}

func (s scenario) want() ([]byte, error) {
	if s.WantHex != "" {
		return hex.DecodeString(s.WantHex)
	}
	return []byte(s.Want), nil
}

func TestScenarios(t *testing.T) {
	for _, s := range loadScenarios(t) {
		strategies := s.Strategies
		if len(strategies) == 0 {
			strategies = []string{"graph"}
		}
		for _, name := range strategies {
			t.Run(s.Name+"/"+name, func(t *testing.T) {
				strategy, err := ParseStrategy(name)
				if err != nil {
					t.Fatal(err)
				}
				mode, err := ParseMode(s.Mode)
				if err != nil {
					t.Fatal(err)
				}
				limits := reduce.DefaultLimits
				if s.MaxSteps > 0 {
					limits.MaxSteps = s.MaxSteps
				}

				var out []byte
				prog, err := s.program()
				if err == nil && s.Source != "" {
					var fromSource Program
					fromSource, err = ProgramFromSource(s.Source)
					if err == nil && fromSource.Bits().String() != prog.Bits().String() {
						t.Fatalf("source %q encodes to %v, fixture has %v", s.Source, fromSource.Bits(), prog.Bits())
					}
				}
				if err == nil {
					var in Input
					in, err = s.input()
					if err != nil {
						t.Fatal(err)
					}
					out, err = Run(context.Background(), prog, in,
						WithStrategy(strategy), WithMode(mode), WithLimits(limits))
				}

				if s.Error != "" {
					var e *Error
					if !errors.As(err, &e) {
						t.Fatalf("got %q, %v; want %s error", out, err, s.Error)
					}
					if e.Kind.String() != s.Error {
						t.Fatalf("error kind %v (%v), want %s", e.Kind, err, s.Error)
					}
					if out != nil {
						t.Errorf("failed run returned output %q", out)
					}
					return
				}
				if err != nil {
					t.Fatalf("run error: %v", err)
				}
				want, err := s.want()
				if err != nil {
					t.Fatal(err)
				}
				if string(out) != string(want) {
					t.Errorf("output %q, want %q", out, want)
				}
			})
		}
	}
}
