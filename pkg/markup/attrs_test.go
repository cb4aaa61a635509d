package markup

import (
	"testing"
)

func TestParseStartTagRoundTrip(t *testing.T) {
	raws := []string{
		`<g>`,
		`<g/>`,
		`<g id="a" class='b c'>`,
		"<g\n  id=\"a\"\n  style=\"x:y\" />",
		`<g hidden data-x=1>`,
		`<g id="a>b" / >`,
		`<path d="M0 0L10/10z"/>`,
		`<g id = "spaced">`,
		`<g id=b/>`,
		`<g id=/>`,
		`<a href=x/y/>`,
	}
	for _, raw := range raws {
		tag, err := ParseStartTag(raw)
		if err != nil {
			t.Errorf("ParseStartTag(%q) error: %v", raw, err)
			continue
		}
		if got := tag.String(); got != raw {
			t.Errorf("round trip of %q = %q", raw, got)
		}
	}
}

func TestParseStartTagAttrs(t *testing.T) {
	tag, err := ParseStartTag(`<g id="a>b" class='x y' hidden data-n=1/>`)
	if err != nil {
		t.Fatalf("ParseStartTag error: %v", err)
	}
	if tag.Name != "g" {
		t.Errorf("Name = %q, want g", tag.Name)
	}

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"id", "a>b", true},
		{"class", "x y", true},
		{"hidden", "", true},
		{"data-n", "1", true},
		{"style", "", false},
	}
	for _, tt := range tests {
		v, ok := tag.Get(tt.name)
		if ok != tt.ok || v != tt.value {
			t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.name, v, ok, tt.value, tt.ok)
		}
	}
	if !tag.SelfClosing() {
		t.Error("SelfClosing() = false for a tag ending in />")
	}
	if got := tag.Attrs[1].Quote; got != '\'' {
		t.Errorf("class quote = %q, want '", got)
	}
}

func TestParseStartTagErrors(t *testing.T) {
	for _, raw := range []string{
		``,
		`g id="a">`,
		`<g id="a"`,
		`<g id="a>`,
		`< >`,
	} {
		if _, err := ParseStartTag(raw); err == nil {
			t.Errorf("ParseStartTag(%q) expected error", raw)
		}
	}
}

func TestStartTagEdits(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		edit func(*StartTag)
		want string
	}{
		{
			name: "set existing keeps position and quote",
			raw:  `<g id='a' class="b">`,
			edit: func(s *StartTag) { s.Set("id", "z") },
			want: `<g id='z' class="b">`,
		},
		{
			name: "set unquoted switches to double quotes",
			raw:  `<g id=a>`,
			edit: func(s *StartTag) { s.Set("id", "z") },
			want: `<g id="z">`,
		},
		{
			name: "set missing appends before slash",
			raw:  `<g id="b"/>`,
			edit: func(s *StartTag) { s.Set("style", "visibility:hidden") },
			want: `<g id="b" style="visibility:hidden"/>`,
		},
		{
			name: "remove drops leading whitespace",
			raw:  `<g class="a" id="x" transform="t">`,
			edit: func(s *StartTag) { s.Remove("id") },
			want: `<g class="a" transform="t">`,
		},
		{
			name: "replace in place",
			raw:  `<g id="furniture" transform="t">`,
			edit: func(s *StartTag) { s.Replace("id", "class", "furniture") },
			want: `<g class="furniture" transform="t">`,
		},
		{
			name: "lookups are case-insensitive",
			raw:  `<g ID="a">`,
			edit: func(s *StartTag) { s.Set("id", "b") },
			want: `<g ID="b">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := ParseStartTag(tt.raw)
			if err != nil {
				t.Fatalf("ParseStartTag error: %v", err)
			}
			tt.edit(&tag)
			if got := tag.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelfClosing(t *testing.T) {
	for raw, want := range map[string]bool{
		`<g/>`:        true,
		`<g id="a" />`: true,
		`<g id="a/">`: false,
		`<g>`:         false,
	} {
		tag, err := ParseStartTag(raw)
		if err != nil {
			t.Fatalf("ParseStartTag(%q) error: %v", raw, err)
		}
		if got := tag.SelfClosing(); got != want {
			t.Errorf("SelfClosing(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`A & "B" <C>`, `A &amp; &#34;B&#34; &lt;C&gt;`},
		{"Walk\tIn", "Walk&#9;In"},
		{"a\r\nb", "a&#13;&#10;b"},
		{"bell\x07", "bell&#7;"},
		{"bad\xffbyte", "bad\uFFFDbyte"},
		{"Küche", "Küche"},
	}
	for _, tt := range tests {
		if got := EscapeValue(tt.in); got != tt.want {
			t.Errorf("EscapeValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
