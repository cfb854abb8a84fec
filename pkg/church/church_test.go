package church

import (
	"errors"
	"io"
	"testing"

	"github.com/vic/goblc/pkg/lambda"
)

func TestBooleans(t *testing.T) {
	if got := True().String(); got != "λλ2" {
		t.Errorf("True = %q", got)
	}
	if got := False().String(); got != "λλ1" {
		t.Errorf("False = %q", got)
	}
	if !lambda.Equal(Nil(), False()) {
		t.Errorf("Nil is not False")
	}
	if !lambda.Equal(EncodeBit(0), True()) || !lambda.Equal(EncodeBit(1), False()) {
		t.Errorf("EncodeBit maps 0 to true and 1 to false")
	}
}

// TestEncodeByteA checks the documented encoding of 'a'.
func TestEncodeByteA(t *testing.T) {
	want := "λ1(λ1(λλ2)(λ1(λλ1)(λ1(λλ1)(λ1(λλ2)(λ1(λλ2)(λ1(λλ2)(λ1(λλ2)(λ1(λλ1)(λλ1)))))))))(λλ1)"
	if got := EncodeBytes([]byte("a")).String(); got != want {
		t.Errorf("EncodeBytes(a)\n got %s\nwant %s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if !lambda.Equal(EncodeBytes(nil), Nil()) {
		t.Errorf("empty input is not nil")
	}
	if !lambda.IsClosed(EncodeBytes([]byte("closed"))) {
		t.Errorf("encoded bytes are open")
	}
}

func TestConsShiftsOpenTerms(t *testing.T) {
	got := Cons(lambda.Var{Index: 0}, Nil())
	want := lambda.Abs{Body: lambda.Apply(lambda.Var{Index: 0}, lambda.Var{Index: 1}, Nil())}
	if !lambda.Equal(got, want) {
		t.Errorf("Cons = %v, want %v", got, want)
	}
}

func TestTermsRoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("herp derp"),
		{0x00, 0xff, 0x80, 0x01},
	}
	for _, in := range inputs {
		got, err := DecodeBytes[lambda.Term](Terms{}, EncodeBytes(in))
		if err != nil {
			t.Errorf("DecodeBytes(%q) error: %v", in, err)
			continue
		}
		if string(got) != string(in) {
			t.Errorf("DecodeBytes(EncodeBytes(%q)) = %q", in, got)
		}
	}
	for b := 0; b < 256; b++ {
		got, err := DecodeByte[lambda.Term](Terms{}, EncodeByte(byte(b)))
		if err != nil || got != byte(b) {
			t.Fatalf("DecodeByte(%d) = %d, %v", b, got, err)
		}
	}
}

func TestDecodeBitsList(t *testing.T) {
	list := EncodeBits([]byte{0, 1, 1})
	d := NewDecoder[lambda.Term](Terms{}, list)
	shape, head, _, err := Terms{}.Uncons(list)
	if err != nil || shape != ShapeCons {
		t.Fatalf("Uncons = %v, %v", shape, err)
	}
	if bit, err := DecodeBit[lambda.Term](Terms{}, head); err != nil || bit != 0 {
		t.Errorf("first bit = %d, %v", bit, err)
	}
	// Single bits are not bytes.
	if _, err := d.Next(); !errors.Is(err, ErrInvalidOutputShape) {
		t.Errorf("Next on a bit list = %v, want ErrInvalidOutputShape", err)
	}
}

func TestShapeErrors(t *testing.T) {
	seven := List(True(), True(), True(), True(), True(), True(), True())
	nine := List(True(), True(), True(), True(), True(), True(), True(), True(), False())
	notBool := List(True(), lambda.Lambdas(1, lambda.Var{Index: 0}), True(), True(), True(), True(), True(), True())

	tests := []struct {
		name  string
		term  lambda.Term
		err   error
		index int
		bit   int
	}{
		{"not a list", lambda.Lambdas(1, lambda.Var{Index: 0}), ErrInvalidOutputShape, 0, -1},
		{"short byte", List(EncodeByte('o'), seven), ErrInvalidOutputShape, 1, 7},
		{"long byte", List(nine), ErrInvalidOutputShape, 0, 8},
		{"not a boolean", List(EncodeByte('k'), EncodeByte('k'), notBool), ErrNotABoolean, 2, 1},
		{"byte not a list", List(True()), ErrInvalidOutputShape, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes[lambda.Term](Terms{}, tt.term)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			var serr *ShapeError
			if !errors.As(err, &serr) {
				t.Fatalf("%v is not a *ShapeError", err)
			}
			if serr.Index != tt.index || serr.Bit != tt.bit {
				t.Errorf("position = (%d, %d), want (%d, %d)", serr.Index, serr.Bit, tt.index, tt.bit)
			}
		})
	}
}

// TestDecoderStopsAtError checks that bytes before a bad element are
// still delivered and that the failure is sticky.
func TestDecoderStopsAtError(t *testing.T) {
	list := List(EncodeByte('o'), EncodeByte('k'), True())
	d := NewDecoder[lambda.Term](Terms{}, list)
	var got []byte
	var err error
	for {
		var b byte
		b, err = d.Next()
		if err != nil {
			break
		}
		got = append(got, b)
	}
	if string(got) != "ok" {
		t.Errorf("decoded %q before error", got)
	}
	if err == io.EOF || !errors.Is(err, ErrInvalidOutputShape) {
		t.Fatalf("error = %v", err)
	}
	if _, again := d.Next(); again != err {
		t.Errorf("error not sticky: %v", again)
	}
	if d.Index() != 2 {
		t.Errorf("Index = %d, want 2", d.Index())
	}
}

func TestUnconsRejectsLeakingBinder(t *testing.T) {
	// λ.0 0 nil uses the cell's own variable as its head.
	leak := lambda.Abs{Body: lambda.Apply(lambda.Var{Index: 0}, lambda.Var{Index: 0}, Nil())}
	shape, _, _, err := Terms{}.Uncons(leak)
	if err != nil || shape != ShapeOther {
		t.Errorf("Uncons = %v, %v, want other", shape, err)
	}
}
