package formjson

// Build constructs the nested tree for values using the shapes computed by
// [InferShapes] over the same keys. Objects in the result are *Object, arrays
// are []any and leaves are the stored values.
func Build(shapes Shapes, values *Values, opts ...Option) *Object {
	o := newOptions(opts)
	root := NewObject()
	for _, key := range values.Keys() {
		val, _ := values.Get(key)
		b := builder{shapes: shapes, maxIndex: o.maxIndex, value: val}
		b.insert(root, nil, splitKey(key))
	}
	return root
}

type builder struct {
	shapes   Shapes
	maxIndex int
	value    any
}

// insert places b.value at segments below node and returns the node to store
// in its parent. Objects are updated in place; arrays may be reallocated, so
// callers must always keep the returned value.
func (b *builder) insert(node any, prefix, segments []string) any {
	seg := segments[0]
	path := append(prefix[:len(prefix):len(prefix)], seg)
	leaf := len(segments) == 1

	switch n := node.(type) {
	case *Object:
		child, ok := n.Get(seg)
		switch {
		case leaf && b.shapes[joinPath(path)] == ShapeObject:
			n.Set(seg, b.wrap(child))
		case leaf:
			n.Set(seg, b.value)
		default:
			if !ok {
				child = b.container(path)
			}
			n.Set(seg, b.insert(child, path, segments[1:]))
		}
		return n

	case []any:
		pos, ok := parseIndex(seg)
		if !ok || pos > b.maxIndex {
			pos = -1
		}
		if leaf && pos < 0 && b.shapes[joinPath(path)] != ShapeObject {
			if list, ok := b.value.([]any); ok {
				return append(n, list...)
			}
			return append(n, b.value)
		}

		var child any
		if pos < 0 {
			pos = len(n)
		}
		for len(n) <= pos {
			n = append(n, nil)
		}
		child = n[pos]

		switch {
		case leaf && b.shapes[joinPath(path)] == ShapeObject:
			n[pos] = b.wrap(child)
		case leaf:
			n[pos] = b.value
		default:
			if child == nil {
				child = b.container(path)
			}
			n[pos] = b.insert(child, path, segments[1:])
		}
		return n

	default:
		// A leaf already occupies this position. Shapes computed over the same
		// keys never lead here.
		return node
	}
}

// container returns an empty array or object for path.
func (b *builder) container(path []string) any {
	if b.shapes[joinPath(path)] == ShapeArray {
		return []any{}
	}
	return NewObject()
}

// wrap stores the value of a path that is both a leaf and a container under
// the empty-string key, keeping any children already present.
func (b *builder) wrap(existing any) *Object {
	o, ok := existing.(*Object)
	if !ok {
		o = NewObject()
	}
	o.Set("", b.value)
	return o
}
