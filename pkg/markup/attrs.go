package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/floorplan/pkg/errors"
)

// Attr is one attribute of a start tag.
//
// Value is the raw attribute text between the quotes, without entity
// decoding. An attribute that has not been modified keeps its exact source
// text, including quote style and the whitespace that precedes it.
type Attr struct {
	Name     string
	Value    string
	Quote    byte // '"', '\'' or 0 for unquoted
	HasValue bool

	lead string // whitespace before the attribute
	src  string // verbatim source; empty once modified
}

func (a Attr) render(b *strings.Builder) {
	b.WriteString(a.lead)
	if a.src != "" {
		b.WriteString(a.src)
		return
	}
	b.WriteString(a.Name)
	if !a.HasValue {
		return
	}
	q := a.Quote
	if q == 0 {
		q = '"'
	}
	b.WriteByte('=')
	b.WriteByte(q)
	b.WriteString(a.Value)
	b.WriteByte(q)
}

// StartTag is an opening tag split into its attributes.
// Rendering an unmodified StartTag reproduces the source text exactly.
type StartTag struct {
	Name  string
	Attrs []Attr
	Tail  string // whitespace and "/" between the last attribute and ">"
}

// ParseStartTag splits raw, the full text of one start tag such as
// `<g id="a" class='b'/>`, into attributes.
//
// Attribute lists are tokenized explicitly so quoted values may contain '>'
// or '/' without ending the tag.
func ParseStartTag(raw string) (StartTag, error) {
	n := len(raw)
	if n < 3 || raw[0] != '<' || raw[n-1] != '>' {
		return StartTag{}, errors.New(errors.ErrCodeInvalidInput, "not a start tag: %q", raw)
	}

	i := 1
	for i < n-1 && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	tag := StartTag{Name: raw[1:i]}
	if tag.Name == "" {
		return StartTag{}, errors.New(errors.ErrCodeInvalidInput, "start tag has no name: %q", raw)
	}

	for {
		j := i
		for j < n-1 && (isSpace(raw[j]) || (raw[j] == '/' && raw[j+1] != '>')) {
			j++
		}
		if j >= n-1 || (raw[j] == '/' && raw[j+1] == '>') {
			tag.Tail = raw[i : n-1]
			return tag, nil
		}

		k := j
		for k < n-1 && !isSpace(raw[k]) && raw[k] != '/' && raw[k] != '>' && (raw[k] != '=' || k == j) {
			k++
		}
		a := Attr{Name: raw[j:k], lead: raw[i:j]}
		end := k

		m := k
		for m < n-1 && isSpace(raw[m]) {
			m++
		}
		if m < n-1 && raw[m] == '=' {
			m++
			for m < n-1 && isSpace(raw[m]) {
				m++
			}
			a.HasValue = true
			switch q := raw[m]; q {
			case '"', '\'':
				closing := strings.IndexByte(raw[m+1:n-1], q)
				if closing < 0 {
					return StartTag{}, errors.New(errors.ErrCodeInvalidInput, "unterminated attribute %q in %q", a.Name, raw)
				}
				a.Quote = q
				a.Value = raw[m+1 : m+1+closing]
				end = m + closing + 2
			default:
				// A "/" directly before the closing ">" terminates the
				// tag, not the value.
				v := m
				for v < n-1 && !isSpace(raw[v]) && raw[v] != '>' && (raw[v] != '/' || v != n-2) {
					v++
				}
				a.Value = raw[m:v]
				end = v
			}
		}
		a.src = raw[j:end]
		tag.Attrs = append(tag.Attrs, a)
		i = end
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// String renders the tag.
func (t *StartTag) String() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(t.Name)
	for _, a := range t.Attrs {
		a.render(&b)
	}
	b.WriteString(t.Tail)
	b.WriteByte('>')
	return b.String()
}

// SelfClosing reports whether the tag ends in "/>".
func (t *StartTag) SelfClosing() bool {
	return strings.HasSuffix(t.Tail, "/")
}

// Index returns the position of the attribute called name, or -1.
// Names are compared case-insensitively.
func (t *StartTag) Index(name string) int {
	for i, a := range t.Attrs {
		if strings.EqualFold(a.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the raw value of the attribute called name.
func (t *StartTag) Get(name string) (string, bool) {
	i := t.Index(name)
	if i < 0 {
		return "", false
	}
	return t.Attrs[i].Value, true
}

// Set replaces the raw value of the attribute called name, keeping its
// position and quote style, or appends a new double-quoted attribute.
// value must already be escaped for use inside quotes (see [EscapeValue]).
func (t *StartTag) Set(name, value string) {
	if i := t.Index(name); i >= 0 {
		a := &t.Attrs[i]
		a.Value = value
		a.HasValue = true
		if a.Quote == 0 || strings.IndexByte(value, a.Quote) >= 0 {
			a.Quote = '"'
		}
		a.src = ""
		return
	}
	t.Attrs = append(t.Attrs, Attr{
		Name:     name,
		Value:    value,
		Quote:    '"',
		HasValue: true,
		lead:     " ",
	})
}

// Replace swaps the attribute called old for a new attribute in the same
// position. It reports false when old is not present.
func (t *StartTag) Replace(old, name, value string) bool {
	i := t.Index(old)
	if i < 0 {
		return false
	}
	t.Attrs[i] = Attr{
		Name:     name,
		Value:    value,
		Quote:    '"',
		HasValue: true,
		lead:     t.Attrs[i].lead,
	}
	return true
}

// Remove deletes the attribute called name together with the whitespace
// before it. It reports whether anything was removed.
func (t *StartTag) Remove(name string) bool {
	i := t.Index(name)
	if i < 0 {
		return false
	}
	t.Attrs = append(t.Attrs[:i], t.Attrs[i+1:]...)
	return true
}

// RemoveFunc deletes every attribute for which drop returns true and returns
// how many were removed.
func (t *StartTag) RemoveFunc(drop func(Attr) bool) int {
	kept := t.Attrs[:0]
	for _, a := range t.Attrs {
		if !drop(a) {
			kept = append(kept, a)
		}
	}
	removed := len(t.Attrs) - len(kept)
	t.Attrs = kept
	return removed
}

// EscapeValue escapes s for use as an attribute value. Besides the markup
// characters, tabs, line breaks and other control characters are written as
// numeric character references so they survive attribute-value
// normalisation. Invalid UTF-8 becomes U+FFFD.
func EscapeValue(s string) string {
	s = html.EscapeString(strings.ToValidUTF8(s, "\uFFFD"))
	if strings.IndexFunc(s, needsCharRef) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if needsCharRef(r) {
			fmt.Fprintf(&b, "&#%d;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsCharRef(r rune) bool {
	return r < 0x20 || r == 0x7f || r == 0xfffe || r == 0xffff
}
