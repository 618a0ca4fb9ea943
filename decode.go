package formjson

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// InvalidUnmarshalError describes an invalid argument passed to [Unmarshal].
// (The argument to [Unmarshal] must be a non-nil pointer.)
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}

// Unmarshaler is the interface implemented by types that can unmarshal a
// single form value of themselves. It is the counterpart of [Marshaler].
type Unmarshaler interface {
	UnmarshalForm(string) error
}

// DecodeString is a convenience function that parses the form data in the
// string and stores the result in the value pointed to by v.
func DecodeString(data string, v any, opts ...Option) error {
	return Unmarshal([]byte(data), v, opts...)
}

// Unmarshal parses url-encoded form data, nests it as [Nest] does and stores
// the resulting tree in the value pointed to by v. If v is nil or not a
// pointer, Unmarshal returns an [*InvalidUnmarshalError].
//
// Struct fields are matched by their form tag, as [Flatten] names them. Keys
// without a matching field are skipped. Scalars are converted to the kind of
// their destination, so "36" fills an int and "on" fills a bool.
func Unmarshal(data []byte, v any, opts ...Option) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{reflect.TypeOf(v)}
	}

	// Trim surrounding whitespace so that a trailing newline does not end up
	// inside the last value.
	values, err := ParseQuery(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	return UnmarshalValues(values, v, opts...)
}

// UnmarshalValues nests values and stores the result in the value pointed to
// by v, following the rules of [Unmarshal].
func UnmarshalValues(values *Values, v any, opts ...Option) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{reflect.TypeOf(v)}
	}
	if values == nil {
		values = NewValues()
	}

	if err := decodeValue(rv.Elem(), nil, Nest(values, opts...)); err != nil {
		return fmt.Errorf("form: %w", err)
	}
	return nil
}

// decodeValue stores node, a value of the tree built by [Nest], in v.
func decodeValue(v reflect.Value, path []pathSegment, node any) error {
	if node == nil {
		return nil
	}
	v = deref(v)

	if obj, ok := node.(*Object); !ok {
		if u, ok := asUnmarshaler(v); ok {
			return u.UnmarshalForm(formatScalar(node))
		}
	} else if v.Kind() != reflect.Interface {
		return decodeObject(v, path, obj)
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.Type().NumMethod() != 0 {
			return fmt.Errorf("%s: cannot decode into %v", pathName(path), v.Type())
		}
		v.Set(reflect.ValueOf(plain(node)))
		return nil
	case reflect.Slice, reflect.Array:
		list, ok := node.([]any)
		if !ok {
			// A single value for a list field is a list of one.
			list = []any{node}
		}
		return decodeList(v, path, list)
	case reflect.Struct, reflect.Map:
		return fmt.Errorf("%s: cannot decode %T into %v", pathName(path), node, v.Type())
	default:
		if _, ok := node.([]any); ok {
			return fmt.Errorf("%s: cannot decode a list into %v", pathName(path), v.Type())
		}
		if err := setScalar(v, formatScalar(node)); err != nil {
			return fmt.Errorf("%s: %w", pathName(path), err)
		}
		return nil
	}
}

func decodeObject(v reflect.Value, path []pathSegment, obj *Object) error {
	switch v.Kind() {
	case reflect.Struct:
		for _, f := range structFields(v.Type()) {
			child, ok := obj.Get(f.Name)
			if !ok {
				continue
			}
			if err := decodeValue(v.Field(f.Index), childPath(path, f.Name), child); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		t := v.Type()
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("%s: map keys must be strings", pathName(path))
		}
		if v.IsNil() {
			v.Set(reflect.MakeMapWithSize(t, obj.Len()))
		}
		for _, k := range obj.Keys() {
			child, _ := obj.Get(k)
			key := reflect.ValueOf(k).Convert(t.Key())

			// Decode into a copy so that an existing entry is extended
			// rather than replaced.
			elem := reflect.New(t.Elem()).Elem()
			if existing := v.MapIndex(key); existing.IsValid() {
				elem.Set(existing)
			}
			if err := decodeValue(elem, childPath(path, k), child); err != nil {
				return err
			}
			v.SetMapIndex(key, elem)
		}
		return nil

	default:
		// A degraded leaf keeps its value under the empty key.
		if self, ok := obj.Get(""); ok {
			return decodeValue(v, path, self)
		}
		return fmt.Errorf("%s: cannot decode an object into %v", pathName(path), v.Type())
	}
}

func decodeList(v reflect.Value, path []pathSegment, list []any) error {
	if v.Kind() == reflect.Slice {
		if v.Len() < len(list) {
			grown := reflect.MakeSlice(v.Type(), len(list), len(list))
			reflect.Copy(grown, v)
			v.Set(grown)
		}
	} else if v.Len() < len(list) {
		return fmt.Errorf("%s: %d items do not fit in %v", pathName(path), len(list), v.Type())
	}

	for i, item := range list {
		p := append(path[:len(path):len(path)], pathSegment{Pos: i, Index: true})
		if err := decodeValue(v.Index(i), p, item); err != nil {
			return err
		}
	}
	return nil
}

// deref dereferences a pointer value, allocating a new value if needed.
func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func asUnmarshaler(v reflect.Value) (Unmarshaler, bool) {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Unmarshaler); ok {
			return u, true
		}
	}
	return nil, false
}

func pathName(path []pathSegment) string {
	if len(path) == 0 {
		return "value"
	}
	return strconv.Quote(renderPath(path))
}

func setScalar(v reflect.Value, val string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(val)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(v, val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint(v, val)
	case reflect.Float32, reflect.Float64:
		return setFloat(v, val)
	case reflect.Bool:
		return setBool(v, val)
	default:
		return fmt.Errorf("unsupported type: %v", v.Type())
	}
	return nil
}

func setInt(v reflect.Value, s string) error {
	if s == "" {
		v.SetInt(0)
		return nil
	}
	i, err := strconv.ParseInt(s, 10, v.Type().Bits())
	if err != nil {
		return fmt.Errorf("setInt: %w", err)
	}
	v.SetInt(i)
	return nil
}

func setUint(v reflect.Value, s string) error {
	if s == "" {
		v.SetUint(0)
		return nil
	}
	i, err := strconv.ParseUint(s, 10, v.Type().Bits())
	if err != nil {
		return fmt.Errorf("setUint: %w", err)
	}
	v.SetUint(i)
	return nil
}

func setFloat(v reflect.Value, s string) error {
	if s == "" {
		v.SetFloat(0)
		return nil
	}
	f, err := strconv.ParseFloat(s, v.Type().Bits())
	if err != nil {
		return fmt.Errorf("setFloat: %w", err)
	}
	v.SetFloat(f)
	return nil
}

// setBool accepts "on", the value a checkbox without a value attribute
// submits.
func setBool(v reflect.Value, s string) error {
	switch s {
	case "":
		v.SetBool(false)
		return nil
	case "on":
		v.SetBool(true)
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("setBool: %w", err)
	}
	v.SetBool(b)
	return nil
}
