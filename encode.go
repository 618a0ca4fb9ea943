package formjson

import "fmt"

// DefaultMaxIndex is the largest explicit array index honoured when building
// a tree. Larger indices are treated as appends.
const DefaultMaxIndex = 1000

// Option configures encoding.
type Option func(*options)

type options struct {
	flat     bool
	compact  bool
	maxIndex int
}

func newOptions(opts []Option) *options {
	o := &options{compact: true, maxIndex: DefaultMaxIndex}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithoutNesting disables path expansion. Keys are encoded verbatim as a flat
// object.
func WithoutNesting() Option {
	return func(o *options) { o.flat = true }
}

// WithoutCompaction keeps falsy items in top-level arrays.
func WithoutCompaction() Option {
	return func(o *options) { o.compact = false }
}

// WithMaxIndex sets the largest explicit array index honoured by [Build]. A
// negative n is ignored.
func WithMaxIndex(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxIndex = n
		}
	}
}

// Nest expands the keys of values into a nested tree: it infers the shape of
// every path, builds the tree and compacts its top-level arrays.
func Nest(values *Values, opts ...Option) *Object {
	o := newOptions(opts)
	if o.flat {
		return values.Object()
	}

	tree := Build(InferShapes(values.Keys()), values, opts...)
	if o.compact {
		Compact(tree)
	}
	return tree
}

// Marshal returns the JSON encoding of values after nesting.
func Marshal(values *Values, opts ...Option) ([]byte, error) {
	if values == nil {
		values = NewValues()
	}
	b, err := marshalJSON(Nest(values, opts...))
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return b, nil
}

// EncodeToString is a convenience function that returns the JSON encoding of
// values as a string.
func EncodeToString(values *Values, opts ...Option) (string, error) {
	b, err := Marshal(values, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeForm encodes a submission of form. Each value is coerced according to
// the type of the control that produced it, typed hx-vals replace collected
// strings, unchecked checkboxes are added as false and the form's
// ignore-deep-key attribute disables nesting. When values is nil the form's
// own values are collected from its markup. A nil form encodes values as
// [Marshal] does.
func EncodeForm(form *Form, values *Values, opts ...Option) ([]byte, error) {
	if form == nil {
		return Marshal(values, opts...)
	}
	if values == nil {
		values = form.Values()
	}

	out := NewValues()
	for _, key := range values.Keys() {
		val, _ := values.Get(key)
		inputType := form.InputType(key)
		if list, ok := val.([]any); ok {
			for _, item := range list {
				out.Add(key, coerceAny(inputType, item))
			}
			continue
		}
		out.Add(key, coerceAny(inputType, val))
	}

	vals := form.Vals()
	for _, key := range out.Keys() {
		if v, ok := vals[key]; ok {
			out.Set(key, v)
		}
	}

	if falses := form.FalseCheckboxes(); falses != nil {
		out.Merge(falses)
	}

	if form.IgnoreDeepKey() {
		opts = append(opts, WithoutNesting())
	}
	return Marshal(out, opts...)
}

// coerceAny coerces strings only. Values that already carry a type pass
// through, as do values whose control could not be found.
func coerceAny(inputType string, v any) any {
	s, ok := v.(string)
	if !ok || inputType == "" {
		return v
	}
	return Coerce(inputType, s)
}
