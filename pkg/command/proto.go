package command

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

type protoCodec struct{}

// Proto returns a codec writing each command as a varint-delimited
// google.protobuf.Struct {cmd, dx, dy}.
func Proto() Codec { return protoCodec{} }

func (protoCodec) Format() string { return "proto" }

func (protoCodec) Encode(c Command) ([]byte, error) {
	w, err := toWire(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"cmd": w.Cmd}
	if c.Kind == KindMove {
		fields["dx"] = w.DX
		fields["dy"] = w.DY
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := protodelim.MarshalTo(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (protoCodec) NewDecoder(r io.Reader) Decoder { return &protoDecoder{r: bufio.NewReader(r)} }

type protoDecoder struct{ r *bufio.Reader }

func (d *protoDecoder) Decode() (Command, error) {
	var s structpb.Struct
	if err := protodelim.UnmarshalFrom(d.r, &s); err != nil {
		return Command{}, err
	}
	w := wire{Cmd: s.GetFields()["cmd"].GetStringValue()}
	if w.Cmd == KindMove.String() {
		dx, dy := s.GetFields()["dx"], s.GetFields()["dy"]
		if dx == nil || dy == nil {
			return Command{}, fmt.Errorf("%w: move without deltas", ErrMalformed)
		}
		w.DX = int(dx.GetNumberValue())
		w.DY = int(dy.GetNumberValue())
	}
	return fromWire(w)
}
