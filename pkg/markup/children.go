package markup

// Child describes one direct child element found by [DirectChildren].
type Child struct {
	ID             string // raw value of the identifying attribute
	DisplayName    string // raw value of the display-name attribute, if any
	HasDisplayName bool
	Tag            string // exact source text of the opening tag
	Offset         int    // byte offset of the opening tag in the document
}

// DirectChildren lists the elements of kind that sit directly inside span,
// in document order.
//
// Only depth-one elements are returned: a local depth counter starts at 0,
// every opening tag seen at depth 0 is a child, non-self-closing opening tags
// increment the counter and close tags decrement it. Children without idAttr
// (or with an empty value) are skipped.
func DirectChildren(doc string, span Span, kind, idAttr, nameAttr string) []Child {
	var children []Child
	depth := 0

	s := NewScanner(span.Text(doc), kind)
	for {
		t, ok := s.Next()
		if !ok {
			return children
		}
		if t.Kind == Close {
			depth--
			continue
		}
		if depth == 0 {
			if st, err := ParseStartTag(t.Raw); err == nil {
				if id, ok := st.Get(idAttr); ok && id != "" {
					name, hasName := st.Get(nameAttr)
					children = append(children, Child{
						ID:             id,
						DisplayName:    name,
						HasDisplayName: hasName,
						Tag:            t.Raw,
						Offset:         span.Start + t.Start,
					})
				}
			}
		}
		if t.Kind == Open {
			depth++
		}
	}
}

// IDs returns the identifying attribute values of children in order.
func IDs(children []Child) []string {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.ID
	}
	return ids
}
