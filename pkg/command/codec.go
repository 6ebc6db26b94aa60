package command

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Codec encodes commands into one wire format and decodes a stream of them.
type Codec interface {
	Format() string
	Encode(c Command) ([]byte, error)
	NewDecoder(r io.Reader) Decoder
}

// Decoder reads successive commands from a stream. An error for which
// Recoverable returns true leaves the decoder usable.
type Decoder interface {
	Decode() (Command, error)
}

// Registry maps format names to codecs.
type Registry struct{ byFormat map[string]Codec }

// NewRegistry constructs a registry preloaded with the codecs that need no
// initialization: text, json and proto. CBOR is added via Register(CBOR()).
func NewRegistry() *Registry {
	r := &Registry{byFormat: make(map[string]Codec)}
	r.Register(Text())
	r.Register(JSON())
	r.Register(Proto())
	return r
}

// DefaultRegistry returns a registry holding every built-in codec.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	c, err := CBOR()
	if err != nil {
		return nil, err
	}
	r.Register(c)
	return r, nil
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byFormat[c.Format()] = c }

// Get returns a codec by format name.
func (r *Registry) Get(format string) (Codec, error) {
	c, ok := r.byFormat[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("command: unknown format %q", format)
	}
	return c, nil
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ---- text ----

type textCodec struct{}

// Text returns the newline-terminated text codec: MOVE:dx,dy, L_CLICK, R_CLICK.
func Text() Codec { return textCodec{} }

func (textCodec) Format() string { return "text" }

func (textCodec) Encode(c Command) ([]byte, error) {
	if c.Kind == KindUnknown {
		return nil, fmt.Errorf("%w: kind %d", ErrUnknown, c.Kind)
	}
	return []byte(c.String() + "\n"), nil
}

func (textCodec) NewDecoder(r io.Reader) Decoder {
	return &textDecoder{sc: bufio.NewScanner(r)}
}

type textDecoder struct{ sc *bufio.Scanner }

func (d *textDecoder) Decode() (Command, error) {
	for d.sc.Scan() {
		line := strings.TrimSpace(d.sc.Text())
		if line == "" {
			continue
		}
		return ParseText(line)
	}
	if err := d.sc.Err(); err != nil {
		return Command{}, err
	}
	return Command{}, io.EOF
}

// ---- json ----

type jsonCodec struct{}

// JSON returns a codec writing one JSON object per line.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Format() string { return "json" }

func (jsonCodec) Encode(c Command) ([]byte, error) {
	w, err := toWire(c)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (jsonCodec) NewDecoder(r io.Reader) Decoder { return &jsonDecoder{dec: json.NewDecoder(r)} }

type jsonDecoder struct{ dec *json.Decoder }

func (d *jsonDecoder) Decode() (Command, error) {
	var w wire
	if err := d.dec.Decode(&w); err != nil {
		return Command{}, err
	}
	return fromWire(w)
}
