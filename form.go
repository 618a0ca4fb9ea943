package formjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is the element that triggered a submission, read from parsed HTML.
// It is usually a <form>; any other element names the form it submits with
// its hx-include attribute.
type Form struct {
	elem      *goquery.Selection
	container *goquery.Selection // nil when hx-include resolves to nothing
}

// ErrNoMatch is returned by [ParseForm] when no element matches the selector.
var ErrNoMatch = errors.New("form: no element matches the selector")

// ParseForm parses an HTML document from r and returns the first element
// matching selector. An empty selector selects the first <form>.
func ParseForm(r io.Reader, selector string) (*Form, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("form: failed to parse html: %w", err)
	}
	if selector == "" {
		selector = "form"
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, selector)
	}
	return NewForm(sel), nil
}

// NewForm wraps an element of an already parsed document.
func NewForm(sel *goquery.Selection) *Form {
	f := &Form{elem: sel}
	f.container = resolveContainer(sel)
	return f
}

func resolveContainer(sel *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(sel) == "form" {
		return sel
	}

	include := strings.TrimSpace(attr(sel, "hx-include"))
	var found *goquery.Selection
	switch {
	case include == "":
		return nil
	case include == "this":
		found = sel
	case strings.HasPrefix(include, "closest "):
		found = sel.Closest(strings.TrimSpace(strings.TrimPrefix(include, "closest ")))
	case strings.HasPrefix(include, "find "):
		found = sel.Find(strings.TrimSpace(strings.TrimPrefix(include, "find "))).First()
	default:
		found = documentRoot(sel).Find(include).First()
	}
	if found.Length() == 0 {
		return nil
	}
	return found
}

func documentRoot(sel *goquery.Selection) *goquery.Selection {
	if root := sel.Parents().Last(); root.Length() != 0 {
		return root
	}
	return sel
}

// attr reads an htmx attribute, accepting the data- prefixed spelling too.
func attr(sel *goquery.Selection, name string) string {
	if v, ok := sel.Attr(name); ok {
		return v
	}
	v, _ := sel.Attr("data-" + name)
	return v
}

func hasAttr(sel *goquery.Selection, name string) bool {
	if _, ok := sel.Attr(name); ok {
		return true
	}
	_, ok := sel.Attr("data-" + name)
	return ok
}

// scope is where named controls are looked up.
func (f *Form) scope() *goquery.Selection {
	if f.container != nil {
		return f.container
	}
	return f.elem
}

// IgnoreDeepKey reports whether the element opts out of path expansion.
func (f *Form) IgnoreDeepKey() bool {
	return hasAttr(f.elem, "ignore-deep-key")
}

// FalseCheckboxes returns every unchecked checkbox of the form, by name, with
// the value false, in document order. Browsers omit unchecked boxes from a
// submission; this overlay makes them explicit. It returns nil when the form
// cannot be resolved.
func (f *Form) FalseCheckboxes() *Values {
	if f.container == nil {
		return nil
	}

	falses := NewValues()
	f.container.Find("input").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(s.AttrOr("type", ""), "checkbox") {
			return
		}
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, checked := s.Attr("checked"); checked {
			return
		}
		falses.Set(name, false)
	})
	return falses
}

// InputType returns the type of the first control named name: the type
// attribute of an input ("text" when absent), "textarea", "select-one" or
// "select-multiple". It returns "" when no control has that name.
func (f *Form) InputType(name string) string {
	ctrl := f.control(name)
	if ctrl == nil {
		return ""
	}

	switch goquery.NodeName(ctrl) {
	case "textarea":
		return "textarea"
	case "select":
		if _, multiple := ctrl.Attr("multiple"); multiple {
			return "select-multiple"
		}
		return "select-one"
	default:
		t := strings.ToLower(strings.TrimSpace(ctrl.AttrOr("type", "")))
		if t == "" {
			return "text"
		}
		return t
	}
}

func (f *Form) control(name string) *goquery.Selection {
	ctrl := f.scope().Find("input, select, textarea").FilterFunction(func(_ int, s *goquery.Selection) bool {
		n, _ := s.Attr("name")
		return n == name
	}).First()
	if ctrl.Length() == 0 {
		return nil
	}
	return ctrl
}

// Vals returns the typed values declared with hx-vals on the element and its
// ancestors. Closer declarations win. Expressions prefixed "js:" or
// "javascript:" are not evaluated and are skipped, as is malformed JSON.
func (f *Form) Vals() map[string]any {
	vals := make(map[string]any)
	for sel := f.elem; sel.Length() != 0; sel = sel.Parent() {
		raw := strings.TrimSpace(attr(sel, "hx-vals"))
		if raw == "" || strings.HasPrefix(raw, "js:") || strings.HasPrefix(raw, "javascript:") {
			continue
		}
		if !strings.HasPrefix(raw, "{") {
			raw = "{" + raw + "}"
		}

		var decl map[string]any
		if err := json.Unmarshal([]byte(raw), &decl); err != nil {
			continue
		}
		for k, v := range decl {
			if _, ok := vals[k]; !ok {
				vals[k] = v
			}
		}
	}
	return vals
}

// Values collects the entries a browser would submit for the form in its
// current markup state. File inputs and buttons are not collected.
func (f *Form) Values() *Values {
	values := NewValues()
	f.scope().Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" || disabled(s) {
			return
		}

		switch goquery.NodeName(s) {
		case "textarea":
			values.Add(name, s.Text())
		case "select":
			for _, v := range selected(s) {
				values.Add(name, v)
			}
		default:
			collectInput(values, name, s)
		}
	})
	return values
}

func collectInput(values *Values, name string, s *goquery.Selection) {
	t := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
	switch t {
	case "submit", "button", "reset", "image", "file":
		return
	case "checkbox", "radio":
		if _, checked := s.Attr("checked"); !checked {
			return
		}
		v, ok := s.Attr("value")
		if !ok {
			v = "on"
		}
		values.Add(name, v)
	default:
		v, _ := s.Attr("value")
		values.Add(name, v)
	}
}

func selected(s *goquery.Selection) []string {
	var out []string
	options := s.Find("option")
	options.Each(func(_ int, o *goquery.Selection) {
		if _, ok := o.Attr("selected"); ok && !disabled(o) {
			out = append(out, optionValue(o))
		}
	})

	_, multiple := s.Attr("multiple")
	if len(out) == 0 && !multiple && options.Length() != 0 {
		out = append(out, optionValue(options.First()))
	}
	if len(out) > 1 && !multiple {
		out = out[len(out)-1:]
	}
	return out
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(o.Text()), " ")
}

func disabled(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return true
	}
	return s.Closest("fieldset[disabled]").Length() != 0
}
