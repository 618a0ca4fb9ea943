package formjson

// Compact removes falsy items ("", 0, false and nil) from the arrays held
// directly by o. Arrays nested deeper are left alone.
//
// Indexed fields such as "tags[2]" keep their index after an earlier item is
// removed from the page, so the built array can contain holes; compacting
// the top level closes them without renumbering the inputs.
func Compact(o *Object) *Object {
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		list, ok := v.([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if truthy(item) {
				kept = append(kept, item)
			}
		}
		o.Set(k, kept)
	}
	return o
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case uint32:
		return v != 0
	default:
		return true
	}
}
