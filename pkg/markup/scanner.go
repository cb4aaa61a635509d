package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// TagKind classifies one tag occurrence.
type TagKind int

const (
	// Open is a start tag that begins an element with content, e.g. <g id="a">.
	Open TagKind = iota
	// Close is an end tag, e.g. </g>.
	Close
	// SelfClosing is a start tag whose raw text ends in "/>", e.g. <g id="b"/>.
	SelfClosing
)

// String returns the kind name.
func (k TagKind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case SelfClosing:
		return "self-closing"
	}
	return "unknown"
}

// Tag is one occurrence of an element kind in scanned text.
// Start and End are byte offsets into that text; Raw is text[Start:End].
type Tag struct {
	Kind  TagKind
	Name  string // lowercased element name
	Start int
	End   int
	Raw   string
}

// Opens reports whether the tag starts an element (open or self-closing).
func (t Tag) Opens() bool {
	return t.Kind != Close
}

// Scanner yields the tags of one element kind in document order.
//
// A Scanner stops at the end of the text or at the first tag it cannot
// finish reading (for example text truncated mid-tag). That is not reported
// as an error: the sequence simply ends.
type Scanner struct {
	src    string
	kind   string
	z      *html.Tokenizer
	offset int
	done   bool
}

// NewScanner returns a Scanner over src for elements named kind.
// Names are compared case-insensitively. An empty kind matches every element.
func NewScanner(src, kind string) *Scanner {
	z := html.NewTokenizer(strings.NewReader(src))
	z.AllowCDATA(true)
	return &Scanner{
		src:  src,
		kind: strings.ToLower(kind),
		z:    z,
	}
}

// Next returns the next matching tag. The second result is false once the
// text is exhausted.
func (s *Scanner) Next() (Tag, bool) {
	for !s.done {
		tt := s.z.Next()
		start := s.offset
		s.offset += len(s.z.Raw())

		var kind TagKind
		switch tt {
		case html.ErrorToken:
			s.done = true
			return Tag{}, false
		case html.StartTagToken:
			kind = Open
			s.z.NextIsNotRawText()
		case html.SelfClosingTagToken:
			kind = SelfClosing
			s.z.NextIsNotRawText()
		case html.EndTagToken:
			kind = Close
		default:
			continue
		}

		name, _ := s.z.TagName()
		if s.kind != "" && string(name) != s.kind {
			continue
		}

		raw := s.src[start:s.offset]
		if kind == Open && strings.HasSuffix(raw, "/>") {
			kind = SelfClosing
		}
		return Tag{
			Kind:  kind,
			Name:  string(name),
			Start: start,
			End:   s.offset,
			Raw:   raw,
		}, true
	}
	return Tag{}, false
}

// ScanAll returns every tag of kind in src.
func ScanAll(src, kind string) []Tag {
	var tags []Tag
	s := NewScanner(src, kind)
	for {
		t, ok := s.Next()
		if !ok {
			return tags
		}
		tags = append(tags, t)
	}
}
