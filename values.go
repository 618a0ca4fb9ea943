package formjson

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Values is an ordered collection of raw form entries. Keys keep the order in
// which they were first seen.
type Values struct {
	keys   []string
	values map[string]any
}

// NewValues returns an empty [Values].
func NewValues() *Values {
	return &Values{values: make(map[string]any)}
}

// Add records a value for key. The first value is stored as is; repeating the
// key turns the stored value into a []any holding every value in encounter
// order.
func (v *Values) Add(key string, val any) {
	if v.values == nil {
		v.values = make(map[string]any)
	}
	prev, ok := v.values[key]
	if !ok {
		v.keys = append(v.keys, key)
		v.values[key] = val
		return
	}
	if list, ok := prev.([]any); ok {
		v.values[key] = append(list, val)
		return
	}
	v.values[key] = []any{prev, val}
}

// Set replaces the value stored under key. An existing key keeps its
// position, a new key goes last.
func (v *Values) Set(key string, val any) {
	if v.values == nil {
		v.values = make(map[string]any)
	}
	if _, ok := v.values[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.values[key] = val
}

// Get returns the value stored under key.
func (v *Values) Get(key string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.values[key]
	return val, ok
}

// Has reports whether key has been recorded.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the keys in the order they were first recorded.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Len returns the number of distinct keys.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Merge adds the entries of overlay whose keys are not already recorded, in
// overlay order. Recorded values win, so a checkbox group with any box ticked
// keeps the submitted values. This is not an object spread: an overlay entry
// never replaces a submitted value. Use [Values.Set] for that.
func (v *Values) Merge(overlay *Values) {
	for _, k := range overlay.Keys() {
		if v.Has(k) {
			continue
		}
		val, _ := overlay.Get(k)
		v.Set(k, val)
	}
}

// Object returns the entries as a flat [Object] without interpreting keys.
func (v *Values) Object() *Object {
	o := NewObject()
	for _, k := range v.Keys() {
		val, _ := v.Get(k)
		o.Set(k, val)
	}
	return o
}

// ParseQuery parses application/x-www-form-urlencoded data, keeping the order
// of keys. Unlike [url.ParseQuery] semicolons are not separators.
func ParseQuery(query string) (*Values, error) {
	values := NewValues()
	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}

		key, val, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("form: invalid key %q: %w", key, err)
		}
		if k == "" {
			continue
		}
		v, err := url.QueryUnescape(val)
		if err != nil {
			return nil, fmt.Errorf("form: invalid value for %q: %w", k, err)
		}
		values.Add(k, v)
	}
	return values, nil
}

// FromURLValues converts [url.Values] to [Values]. The standard library map
// has no order, so keys are sorted.
func FromURLValues(uv url.Values) *Values {
	keys := make([]string, 0, len(uv))
	for k := range uv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := NewValues()
	for _, k := range keys {
		for _, s := range uv[k] {
			values.Add(k, s)
		}
	}
	return values
}

// Encode renders the entries as application/x-www-form-urlencoded text in
// key order. Values are rendered as strings and []any values repeat their
// key.
func (v *Values) Encode() string {
	var b strings.Builder
	for _, k := range v.Keys() {
		val, _ := v.Get(k)
		items, ok := val.([]any)
		if !ok {
			items = []any{val}
		}
		for _, item := range items {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(formatScalar(item)))
		}
	}
	return b.String()
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
