package formjson

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitKey(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key  string
		want []string
	}{
		"plain":                {key: "name", want: []string{"name"}},
		"dotted":               {key: "a.b", want: []string{"a", "b"}},
		"consecutive brackets": {key: "a[0][1]", want: []string{"a", "0", "1"}},
		"dot then bracket":     {key: "a.b[0]", want: []string{"a", "b", "0"}},
		"append marker":        {key: "a.b[]", want: []string{"a", "b", "-1"}},
		"spaced brackets":      {key: "a[ ]", want: []string{"a", "-1"}},
		"bracketed name":       {key: "a[b].c", want: []string{"a", "b", "c"}},
		"mixed":                {key: "items[0].tags[]", want: []string{"items", "0", "tags", "-1"}},
		"empty key":            {key: "", want: []string{""}},
		"empty segment":        {key: "a..b", want: []string{"a", "", "b"}},
		"unclosed bracket":     {key: "a[", want: []string{"a", ""}},
		"stray closing":        {key: "a]b", want: []string{"ab"}},
		"leading zeros":        {key: "a[00].b[007]", want: []string{"a", "0", "b", "7"}},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, splitKey(tt.key)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsIndex(t *testing.T) {
	t.Parallel()

	for seg, want := range map[string]bool{
		"0":    true,
		"12":   true,
		"-1":   true,
		"":     false,
		"-2":   false,
		"1.5":  false,
		" 1":   false,
		"a":    false,
		"0x10": false,
	} {
		if got := isIndex(seg); got != want {
			t.Errorf("isIndex(%q) = %v, want %v", seg, got, want)
		}
	}
}

func TestRenderPath(t *testing.T) {
	t.Parallel()

	path := []pathSegment{{Key: "a"}, {Key: "b"}, {Pos: 0, Index: true}, {Key: "c"}, {Pos: 12, Index: true}}
	if got, want := renderPath(path), "a.b[0].c[12]"; got != want {
		t.Errorf("renderPath() = %q, want %q", got, want)
	}
	if got := splitKey(renderPath(path)); !cmp.Equal(got, []string{"a", "b", "0", "c", "12"}) {
		t.Errorf("splitKey(renderPath()) = %q", got)
	}
}
