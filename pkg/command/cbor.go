package command

import (
	"io"

	cbor "github.com/fxamacker/cbor/v2"
)

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a deterministic CBOR codec (RFC 8949 core profile). Commands
// are concatenated data items with no extra framing.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) Format() string { return "cbor" }

func (c cborCodec) Encode(cmd Command) ([]byte, error) {
	w, err := toWire(cmd)
	if err != nil {
		return nil, err
	}
	return c.enc.Marshal(w)
}

func (c cborCodec) NewDecoder(r io.Reader) Decoder {
	return &cborDecoder{dec: c.dec.NewDecoder(r)}
}

type cborDecoder struct{ dec *cbor.Decoder }

func (d *cborDecoder) Decode() (Command, error) {
	var w wire
	if err := d.dec.Decode(&w); err != nil {
		return Command{}, err
	}
	return fromWire(w)
}
