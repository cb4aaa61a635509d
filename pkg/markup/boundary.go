package markup

import (
	"github.com/matzehuels/floorplan/pkg/errors"
)

// Span is a byte range [Start, End) into the text it was computed from.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the spanned substring of doc.
func (s Span) Text(doc string) string {
	return doc[s.Start:s.End]
}

// FindElement locates the first element of kind whose attr equals value and
// returns the span of its content together with its parsed opening tag.
//
// Nesting is resolved with a depth counter that starts at 1 after the target's
// opening tag: every following open tag of kind increments it, self-closing
// tags leave it alone and every close tag decrements it. The close tag that
// brings the counter to zero ends the span. A self-closing target yields an
// empty span at the end of its tag.
//
// When no such element exists, or the counter never returns to zero before
// the text ends, FindElement returns a STRUCTURE_NOT_FOUND error rather than
// guessing.
func FindElement(doc, kind, attr, value string) (Span, StartTag, error) {
	s := NewScanner(doc, kind)

	var target StartTag
	start := -1
	for start < 0 {
		t, ok := s.Next()
		if !ok {
			return Span{}, StartTag{}, errors.New(errors.ErrCodeStructureNotFound, "no <%s> with %s=%q", kind, attr, value)
		}
		if !t.Opens() {
			continue
		}
		st, err := ParseStartTag(t.Raw)
		if err != nil {
			continue
		}
		if v, ok := st.Get(attr); !ok || v != value {
			continue
		}
		if t.Kind == SelfClosing {
			return Span{Start: t.End, End: t.End}, st, nil
		}
		target = st
		start = t.End
	}

	depth := 1
	for {
		t, ok := s.Next()
		if !ok {
			return Span{}, StartTag{}, errors.New(errors.ErrCodeStructureNotFound, "<%s %s=%q> is never closed", kind, attr, value)
		}
		switch t.Kind {
		case Open:
			depth++
		case Close:
			depth--
			if depth == 0 {
				return Span{Start: start, End: t.Start}, target, nil
			}
		}
	}
}
