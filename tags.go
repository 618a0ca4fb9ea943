package formjson

import (
	"reflect"
	"strings"
	"sync"
)

// fieldCache holds the parsed form tags of each struct type seen by
// structFields, keyed by [reflect.Type]. It is safe for concurrent use.
var fieldCache sync.Map

type field struct {
	Index     int
	Name      string
	OmitEmpty bool
}

// structFields returns the exported, non-ignored fields of struct type t in
// declaration order.
func structFields(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}

	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		f, ok := parseTag(sf.Tag.Get("form"))
		if !ok {
			continue
		}
		if f.Name == "" {
			f.Name = sf.Name
		}
		f.Index = i
		fields = append(fields, f)
	}

	fieldCache.Store(t, fields)
	return fields
}

// parseTag parses a form struct tag of the form "name,opt1,opt2". It reports
// false when the field is excluded with "-" or the ignore option.
func parseTag(tag string) (field, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return field{}, false
	}

	parts := strings.Split(tag, ",")
	f := field{Name: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "omitempty":
			f.OmitEmpty = true
		case "ignore":
			return field{}, false
		}
	}
	return f, true
}
