package image

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/lambda"
)

const quine = "000101100100011010000000000001011011110010111100111111011111011010"

func TestRoundTrip(t *testing.T) {
	term, err := blc.DecodeString(quine)
	if err != nil {
		t.Fatal(err)
	}
	img := FromTerm("quine", term, []byte("hurr"))
	if img.BitLen != len(quine) || len(img.Code) != 9 {
		t.Fatalf("BitLen %d, %d code bytes", img.BitLen, len(img.Code))
	}

	data, err := Marshal(img)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Marshal(img)
	if err != nil || !bytes.Equal(data, again) {
		t.Fatalf("encoding is not deterministic")
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "quine" || string(got.Input) != "hurr" {
		t.Errorf("got %+v", got)
	}
	back, err := got.Term()
	if err != nil {
		t.Fatal(err)
	}
	if !lambda.Equal(back, term) {
		t.Errorf("term changed: %v", back)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.blcimg")
	id := lambda.Abs{Body: lambda.Var{Index: 0}}
	if err := FromTerm("id", id, nil).Save(path); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	term, err := img.Term()
	if err != nil || !lambda.Equal(term, id) {
		t.Errorf("loaded %v, %v", term, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("Load of a missing file succeeded")
	}
}

func TestRejects(t *testing.T) {
	id := lambda.Abs{Body: lambda.Var{Index: 0}}

	future := FromTerm("id", id, nil)
	future.Version = Version + 1
	data, _ := Marshal(future)
	if _, err := Unmarshal(data); !errors.Is(err, ErrVersion) {
		t.Errorf("future version: %v", err)
	}

	tampered := FromTerm("id", id, nil)
	tampered.Code = []byte{0xff}
	data, _ = Marshal(tampered)
	if _, err := Unmarshal(data); !errors.Is(err, ErrChecksum) {
		t.Errorf("tampered code: %v", err)
	}

	short := FromTerm("id", id, nil)
	short.BitLen = 3
	if _, err := short.Term(); !errors.Is(err, blc.ErrMalformedEncoding) {
		t.Errorf("short BitLen: %v", err)
	}
	short.BitLen = 100
	if _, err := short.Term(); err == nil {
		t.Errorf("BitLen beyond code accepted")
	}

	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Errorf("garbage accepted")
	}
}
