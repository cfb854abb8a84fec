// Package image stores parsed programs as canonical CBOR, so a program
// decoded once can be reloaded without re-reading its bit text.
package image

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/lambda"
)

// Version is the image format written by this package.
const Version = 1

var (
	ErrVersion  = errors.New("unsupported image version")
	ErrChecksum = errors.New("image checksum mismatch")
)

var log = commonlog.GetLogger("blc.image")

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Image is a program in packed form. BitLen is the exact length of the
// program's encoding; Code holds it MSB-first with the last byte padded.
type Image struct {
	Version int      `cbor:"1,keyasint"`
	Name    string   `cbor:"2,keyasint,omitempty"`
	BitLen  int      `cbor:"3,keyasint"`
	Code    []byte   `cbor:"4,keyasint"`
	Hash    [32]byte `cbor:"5,keyasint"` // sha256 of Code
	Input   []byte   `cbor:"6,keyasint,omitempty"`
}

// FromTerm builds the image of t. input, if any, is stored as bytes to
// feed the program ahead of its runtime input.
func FromTerm(name string, t lambda.Term, input []byte) *Image {
	bits := blc.Encode(t)
	code := blc.Pack(bits)
	return &Image{
		Version: Version,
		Name:    name,
		BitLen:  len(bits),
		Code:    code,
		Hash:    sha256.Sum256(code),
		Input:   input,
	}
}

// Term decodes the program, which must occupy exactly BitLen bits.
func (img *Image) Term() (lambda.Term, error) {
	bits := blc.Unpack(img.Code)
	if img.BitLen < 0 || img.BitLen > len(bits) {
		return nil, fmt.Errorf("image: bit length %d out of range for %d code bytes", img.BitLen, len(img.Code))
	}
	t, err := blc.Decode(bits[:img.BitLen])
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", img.Name, err)
	}
	return t, nil
}

func Marshal(img *Image) ([]byte, error) {
	return encMode.Marshal(img)
}

// Unmarshal decodes an image and checks its version and checksum.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, img.Version)
	}
	if sha256.Sum256(img.Code) != img.Hash {
		return nil, fmt.Errorf("image %q: %w", img.Name, ErrChecksum)
	}
	return &img, nil
}

func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	img, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded image %q from %s: %d bits", img.Name, path, img.BitLen)
	return img, nil
}

func (img *Image) Save(path string) error {
	data, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("image: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	log.Debugf("saved image %q to %s: %d bytes", img.Name, path, len(data))
	return nil
}
