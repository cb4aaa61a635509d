package markup

import (
	"strings"

	"github.com/matzehuels/floorplan/pkg/errors"
)

const (
	classAttr = "class"
	styleAttr = "style"
)

// MergeClass adds token to the class attribute, inserting the attribute when
// it is missing. A token that is already present as a whole class name is not
// added again, so the merge is idempotent. It reports whether the tag changed.
func (t *StartTag) MergeClass(token string) bool {
	v, ok := t.Get(classAttr)
	if !ok {
		t.Set(classAttr, token)
		return true
	}
	if HasClass(v, token) {
		return false
	}
	v = strings.TrimRight(v, " \t\n\r\f")
	if strings.TrimSpace(v) == "" {
		t.Set(classAttr, token)
	} else {
		t.Set(classAttr, v+" "+token)
	}
	return true
}

// MergeStyle appends "prop:value" to the style attribute, inserting the
// attribute when it is missing. An existing declaration of prop is never
// overwritten. It reports whether the tag changed.
func (t *StartTag) MergeStyle(prop, value string) bool {
	decl := prop + ":" + value
	v, ok := t.Get(styleAttr)
	if !ok {
		t.Set(styleAttr, decl)
		return true
	}
	if HasStyleProperty(v, prop) {
		return false
	}
	v = strings.TrimRight(v, " \t\n\r\f")
	switch {
	case strings.TrimSpace(v) == "":
		t.Set(styleAttr, decl)
	case strings.HasSuffix(v, ";"):
		t.Set(styleAttr, v+decl)
	default:
		t.Set(styleAttr, v+";"+decl)
	}
	return true
}

// HasClass reports whether token is one of the whitespace-separated names in
// a class attribute value.
func HasClass(class, token string) bool {
	for _, f := range strings.Fields(class) {
		if f == token {
			return true
		}
	}
	return false
}

// HasStyleProperty reports whether an inline style declares prop.
func HasStyleProperty(style, prop string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			return true
		}
	}
	return false
}

// ReclassTag turns an id-based hook into a class: token is merged into the
// class attribute and idAttr is dropped. When the tag has no class attribute
// the new one takes the place of idAttr.
func ReclassTag(t *StartTag, idAttr, token string) {
	if _, ok := t.Get(classAttr); ok {
		t.MergeClass(token)
		t.Remove(idAttr)
		return
	}
	if !t.Replace(idAttr, classAttr, token) {
		t.Set(classAttr, token)
	}
}

// Reclassify applies [ReclassTag] to every element of kind whose idAttr
// contains substr (case-insensitive) and returns the new text and the number
// of elements reclassified.
func Reclassify(doc, kind, idAttr, substr, token string) (string, int) {
	needle := strings.ToLower(substr)
	return rewrite(doc, kind, func(t *StartTag) bool {
		id, ok := t.Get(idAttr)
		if !ok || !strings.Contains(strings.ToLower(id), needle) {
			return false
		}
		ReclassTag(t, idAttr, token)
		return true
	})
}

// RenameOptions names the attributes and style used by [ApplyRenames].
type RenameOptions struct {
	Kind         string // element kind, e.g. "g"
	IDAttr       string // identifying attribute, e.g. "id"
	NameAttr     string // display-name attribute, e.g. "data-name"
	HideProperty string // e.g. "visibility"
	HideValue    string // e.g. "hidden"
}

// SkippedSelector records a child whose id could not be used to relocate it.
type SkippedSelector struct {
	ID  string
	Err error
}

// RenameReport summarises one [ApplyRenames] pass.
type RenameReport struct {
	Matched int // opening tags carrying one of the children's ids
	Renamed int // of those, tags whose id was replaced
	Skipped []SkippedSelector
}

// ApplyRenames patches every element of opts.Kind whose identifying attribute
// equals the id of one of children:
//
//   - when renames has an entry for that id, the id and the display-name
//     attribute are both set to the new name;
//   - the hide declaration is merged into the style attribute regardless.
//
// All elements are patched in a single pass over the original text, so a new
// name that happens to equal another child's old id is never patched twice.
// Children whose id fails [errors.ValidateSelector] are left untouched and
// reported in RenameReport.Skipped.
func ApplyRenames(doc string, children []Child, renames map[string]string, opts RenameOptions) (string, RenameReport) {
	var report RenameReport
	targets := make(map[string]bool, len(children))
	for _, c := range children {
		if err := errors.ValidateSelector(c.ID); err != nil {
			report.Skipped = append(report.Skipped, SkippedSelector{ID: c.ID, Err: err})
			continue
		}
		targets[c.ID] = true
	}
	if len(targets) == 0 {
		return doc, report
	}

	out, _ := rewrite(doc, opts.Kind, func(t *StartTag) bool {
		id, ok := t.Get(opts.IDAttr)
		if !ok || !targets[id] {
			return false
		}
		report.Matched++
		changed := false
		if name, ok := renames[id]; ok {
			v := EscapeValue(name)
			t.Set(opts.IDAttr, v)
			t.Set(opts.NameAttr, v)
			report.Renamed++
			changed = true
		}
		if t.MergeStyle(opts.HideProperty, opts.HideValue) {
			changed = true
		}
		return changed
	})
	return out, report
}

// rewrite re-emits doc, replacing each opening tag of kind for which fn
// reports a change. Tags that cannot be parsed are copied verbatim.
func rewrite(doc, kind string, fn func(*StartTag) bool) (string, int) {
	var b strings.Builder
	last, changed := 0, 0

	s := NewScanner(doc, kind)
	for {
		t, ok := s.Next()
		if !ok {
			break
		}
		if !t.Opens() {
			continue
		}
		st, err := ParseStartTag(t.Raw)
		if err != nil || !fn(&st) {
			continue
		}
		if changed == 0 {
			b.Grow(len(doc) + 64)
		}
		b.WriteString(doc[last:t.Start])
		b.WriteString(st.String())
		last = t.End
		changed++
	}

	if changed == 0 {
		return doc, 0
	}
	b.WriteString(doc[last:])
	return b.String(), changed
}
