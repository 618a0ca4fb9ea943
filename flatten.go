package formjson

import (
	"fmt"
	"reflect"
	"sort"
)

// Marshaler is the interface implemented by types that render themselves as
// a single form value.
type Marshaler interface {
	MarshalForm() (string, error)
}

// Flatten is the inverse of [Nest]. It walks v, which must be a struct, a
// map with string keys or an [*Object], and returns one entry per leaf keyed
// by its path in dot and bracket notation ("a.b", "a[0]"). Struct fields are
// named by their form tag. An empty-string key holds the value of its parent
// path.
//
// Some trees do not survive Flatten followed by Nest:
//   - keys containing '.' or '[' are split into several segments;
//   - empty slices, arrays and maps have no leaves, so they produce no entries
//     and are absent after nesting;
//   - falsy items of top-level arrays are removed by compaction unless Nest
//     is given [WithoutCompaction], and the items after them shift down.
func Flatten(v any) (*Values, error) {
	values := NewValues()
	if v == nil {
		return values, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return values, nil
		}
		if _, ok := v.(*Object); !ok {
			rv = rv.Elem()
		}
	}

	switch {
	case rv.Type() == objectType:
	case rv.Kind() == reflect.Struct:
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
	case rv.Kind() == reflect.Map:
		return nil, fmt.Errorf("form: map keys must be strings")
	default:
		return nil, fmt.Errorf("form: top-level value must be struct or map")
	}

	if err := flattenValue(values, nil, rv); err != nil {
		return nil, err
	}
	return values, nil
}

var objectType = reflect.TypeOf((*Object)(nil))

func flattenValue(out *Values, path []pathSegment, v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}

	if v.Type() == objectType {
		return flattenObject(out, path, v.Interface().(*Object))
	}

	if m, ok := asMarshaler(v); ok {
		s, err := m.MarshalForm()
		if err != nil {
			return err
		}
		out.Add(renderPath(path), s)
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return flattenValue(out, path, v.Elem())
	case reflect.Struct:
		return flattenStruct(out, path, v)
	case reflect.Map:
		return flattenMap(out, path, v)
	case reflect.Slice, reflect.Array:
		return flattenSlice(out, path, v)
	default:
		return flattenScalar(out, path, v)
	}
}

func flattenObject(out *Values, path []pathSegment, o *Object) error {
	for _, k := range o.Keys() {
		val, _ := o.Get(k)
		if err := flattenValue(out, childPath(path, k), reflect.ValueOf(val)); err != nil {
			return err
		}
	}
	return nil
}

func flattenStruct(out *Values, path []pathSegment, v reflect.Value) error {
	for _, f := range structFields(v.Type()) {
		fv := v.Field(f.Index)
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := flattenValue(out, childPath(path, f.Name), fv); err != nil {
			return err
		}
	}
	return nil
}

func flattenMap(out *Values, path []pathSegment, v reflect.Value) error {
	if v.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("form: map keys must be strings")
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for _, k := range keys {
		if err := flattenValue(out, childPath(path, k.String()), v.MapIndex(k)); err != nil {
			return err
		}
	}
	return nil
}

func flattenSlice(out *Values, path []pathSegment, v reflect.Value) error {
	if len(path) == 0 {
		return fmt.Errorf("form: top-level value must be struct or map")
	}
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		p := append(path[:len(path):len(path)], pathSegment{Pos: i, Index: true})
		if err := flattenValue(out, p, elem); err != nil {
			return err
		}
	}
	return nil
}

func flattenScalar(out *Values, path []pathSegment, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		out.Add(renderPath(path), v.Interface())
		return nil
	default:
		return fmt.Errorf("form: unsupported type: %v", v.Type())
	}
}

// childPath appends an object key to path. The empty key addresses the
// parent itself, which is where a path used both as a leaf and as a
// container keeps its scalar.
func childPath(path []pathSegment, key string) []pathSegment {
	if key == "" && len(path) > 0 {
		return path
	}
	return append(path[:len(path):len(path)], pathSegment{Key: key})
}

func asMarshaler(v reflect.Value) (Marshaler, bool) {
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	if !v.CanInterface() {
		return nil, false
	}
	m, ok := v.Interface().(Marshaler)
	return m, ok
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
