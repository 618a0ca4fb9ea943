package formjson

import (
	"fmt"
	"io"
)

// Decoder reads url-encoded form data from an [io.Reader] and decodes it into
// a Go value.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder creates a new [Decoder] that reads from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads all form data from the underlying [io.Reader] and decodes its
// nested encoding into v.
func (d *Decoder) Decode(v any) error {
	body, err := io.ReadAll(d.r)
	if err != nil {
		return fmt.Errorf("form: failed to read body: %w", err)
	}

	return Unmarshal(body, v, d.opts...)
}

// Encoder writes the nested JSON encoding of form values to an [io.Writer].
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder creates a new [Encoder] that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the JSON encoding of values to the underlying [io.Writer].
func (e *Encoder) Encode(values *Values) error {
	data, err := Marshal(values, e.opts...)
	if err != nil {
		return err
	}

	_, err = e.w.Write(data)
	return err
}
