package formjson

// Shape classifies a path prefix in the tree being built.
type Shape int

const (
	// ShapeValue marks a prefix that only ever appears as a leaf.
	ShapeValue Shape = iota
	// ShapeArray marks a container whose children are all array positions.
	ShapeArray
	// ShapeObject marks a container with object keys, or a prefix used both
	// as a leaf and as a container.
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Shapes maps every prefix of every key, joined with dots, to its shape.
type Shapes map[string]Shape

// InferShapes computes the shape of every prefix of the given raw keys. A
// prefix is promoted to [ShapeObject] when it is used both as a leaf and as a
// container, or when any of its children is not an array position. Once a
// prefix is an object it stays one, which makes the result independent of the
// order of keys.
func InferShapes(keys []string) Shapes {
	shapes := make(Shapes)
	for _, key := range keys {
		segments := splitKey(key)
		for i := range segments {
			path := joinPath(segments[:i+1])
			prev, seen := shapes[path]

			// Leaf.
			if i == len(segments)-1 {
				switch {
				case !seen:
					shapes[path] = ShapeValue
				case prev == ShapeArray:
					shapes[path] = ShapeObject
				}
				continue
			}

			// Container.
			nextIsIndex := isIndex(segments[i+1])
			switch {
			case !seen && nextIsIndex:
				shapes[path] = ShapeArray
			case !seen:
				shapes[path] = ShapeObject
			case prev == ShapeValue, prev == ShapeArray && !nextIsIndex:
				shapes[path] = ShapeObject
			}
		}
	}
	return shapes
}
