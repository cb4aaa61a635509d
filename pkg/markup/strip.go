package markup

import (
	"strings"
)

// StripElements removes every element of the given kinds, tag and content,
// and returns the new text and the number of elements removed. Nested
// occurrences are removed with their outermost ancestor. An element that is
// never closed is left in place.
func StripElements(doc string, kinds ...string) (string, int) {
	total := 0
	for _, kind := range kinds {
		var n int
		doc, n = stripKind(doc, kind)
		total += n
	}
	return doc, total
}

func stripKind(doc, kind string) (string, int) {
	var cuts []Span
	depth, begin := 0, 0

	s := NewScanner(doc, kind)
	for {
		t, ok := s.Next()
		if !ok {
			break
		}
		switch {
		case depth == 0 && t.Kind == SelfClosing:
			cuts = append(cuts, Span{Start: t.Start, End: t.End})
		case depth == 0 && t.Kind == Open:
			begin, depth = t.Start, 1
		case depth == 0:
			// stray close tag
		case t.Kind == Open:
			depth++
		case t.Kind == Close:
			depth--
			if depth == 0 {
				cuts = append(cuts, Span{Start: begin, End: t.End})
			}
		}
	}
	if len(cuts) == 0 {
		return doc, 0
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, c := range cuts {
		b.WriteString(doc[last:c.Start])
		last = c.End
	}
	b.WriteString(doc[last:])
	return b.String(), len(cuts)
}

// StripDataAttrs removes every data-* attribute from every element except
// the names in keep (case-insensitive) and returns the new text and the
// number of attributes removed.
func StripDataAttrs(doc string, keep []string) (string, int) {
	removed := 0
	out, _ := rewrite(doc, "", func(t *StartTag) bool {
		n := t.RemoveFunc(func(a Attr) bool {
			if !strings.HasPrefix(strings.ToLower(a.Name), "data-") {
				return false
			}
			for _, k := range keep {
				if strings.EqualFold(a.Name, k) {
					return false
				}
			}
			return true
		})
		removed += n
		return n > 0
	})
	return out, removed
}
