package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vic/goblc/pkg/image"
	"github.com/vic/goblc/pkg/lambda"
)

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	id := lambda.Abs{Body: lambda.Var{Index: 0}}
	imgPath := filepath.Join(dir, "id.blcimg")
	if err := image.FromTerm("id", id, []byte("pre")).Save(imgPath); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name                         string
		expr, bits, packed, img, src string
		wantName                     string
		wantPrefix                   string
	}{
		{name: "expr", expr: "0010", wantName: "expr"},
		{name: "bits", bits: write("id.txt", []byte("00 10\n")), wantName: "id"},
		{name: "packed", packed: write("id.Blc", []byte(" ab")), wantName: "id", wantPrefix: "ab"},
		{name: "image", img: imgPath, wantName: "id", wantPrefix: "pre"},
		{name: "source", src: write("ident.lam", []byte("x: x\n")), wantName: "ident"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, name, err := loadProgram(tt.expr, tt.bits, tt.packed, tt.img, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if !lambda.Equal(p.Term, id) || name != tt.wantName || string(p.Prefix) != tt.wantPrefix {
				t.Errorf("got %v %q prefix %q", p.Term, name, p.Prefix)
			}
		})
	}

	if _, _, err := loadProgram("", "", "", "", ""); err == nil {
		t.Error("no program source accepted")
	}
	if _, _, err := loadProgram("0010", "x", "", "", ""); err == nil {
		t.Error("two program sources accepted")
	}
}
