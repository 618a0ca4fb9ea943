package formjson

import (
	"regexp"
	"strconv"
	"strings"
)

// appendMarker is the segment substituted for empty brackets. It means "the
// next position in this array".
const appendMarker = "-1"

var (
	emptyBrackets = regexp.MustCompile(`\[\s*\]`)
	segmentSep    = regexp.MustCompile(`[\[.]`)
)

// splitKey splits a raw form key into path segments. "a.b[]" becomes
// ["a", "b", "-1"] and "a[0][c]" becomes ["a", "0", "c"]. Indices are written
// in canonical form, so "a[007]" addresses the same path as "a[7]". Unbalanced
// brackets are not reported; the key is split as far as the pattern allows.
func splitKey(key string) []string {
	key = emptyBrackets.ReplaceAllString(key, "["+appendMarker+"]")
	key = strings.ReplaceAll(key, "]", "")
	segments := segmentSep.Split(key, -1)
	for i, seg := range segments {
		if n, ok := parseIndex(seg); ok {
			segments[i] = strconv.Itoa(n)
		}
	}
	return segments
}

// joinPath identifies a prefix of a split key. Segments never contain a dot,
// so the joined form is unambiguous.
func joinPath(segments []string) string {
	return strings.Join(segments, ".")
}

// isIndex reports whether a segment addresses an array position: the append
// marker or a non-negative decimal integer.
func isIndex(seg string) bool {
	if seg == appendMarker {
		return true
	}
	_, ok := parseIndex(seg)
	return ok
}

func parseIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// renderPath is the inverse of splitKey for paths produced by Flatten: object
// keys are joined with dots and array positions are bracketed.
func renderPath(path []pathSegment) string {
	var b strings.Builder
	for i, p := range path {
		switch {
		case p.Index:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(p.Pos))
			b.WriteString("]")
		case i == 0:
			b.WriteString(p.Key)
		default:
			b.WriteString(".")
			b.WriteString(p.Key)
		}
	}
	return b.String()
}

type pathSegment struct {
	Key   string
	Pos   int
	Index bool // true for array positions
}
