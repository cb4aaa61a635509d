package markup

import (
	"strings"
	"testing"

	"github.com/matzehuels/floorplan/pkg/errors"
)

func mustParse(t *testing.T, raw string) StartTag {
	t.Helper()
	tag, err := ParseStartTag(raw)
	if err != nil {
		t.Fatalf("ParseStartTag(%q) error: %v", raw, err)
	}
	return tag
}

func TestMergeClass(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no class", `<g id="x">`, `<g id="x" class="furniture">`},
		{"existing class", `<g class="a">`, `<g class="a furniture">`},
		{"already present", `<g class="a furniture b">`, `<g class="a furniture b">`},
		{"substring is not membership", `<g class="furniture-old">`, `<g class="furniture-old furniture">`},
		{"empty class", `<g class="">`, `<g class="furniture">`},
		{"trailing space", `<g class="a ">`, `<g class="a furniture">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := mustParse(t, tt.raw)
			tag.MergeClass("furniture")
			if got := tag.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeClassIdempotent(t *testing.T) {
	for _, raw := range []string{`<g>`, `<g class="a">`, `<g class="furniture">`} {
		once := mustParse(t, raw)
		once.MergeClass("furniture")

		twice := mustParse(t, raw)
		twice.MergeClass("furniture")
		if twice.MergeClass("furniture") {
			t.Errorf("%s: second MergeClass reported a change", raw)
		}

		if once.String() != twice.String() {
			t.Errorf("%s: once = %q, twice = %q", raw, once.String(), twice.String())
		}
		class, _ := twice.Get("class")
		if n := strings.Count(" "+class+" ", " furniture "); n != 1 {
			t.Errorf("%s: furniture appears %d times in %q", raw, n, class)
		}
	}
}

func TestMergeStyle(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		changed bool
	}{
		{"no style", `<g id="a">`, `<g id="a" style="visibility:hidden">`, true},
		{"append", `<g style="color:red">`, `<g style="color:red;visibility:hidden">`, true},
		{"trailing semicolon", `<g style="color:red;">`, `<g style="color:red;visibility:hidden">`, true},
		{"empty", `<g style="">`, `<g style="visibility:hidden">`, true},
		{"never overwrites", `<g style="color:red;visibility:visible">`, `<g style="color:red;visibility:visible">`, false},
		{"property match ignores case and spaces", `<g style="fill:none; Visibility : visible">`, `<g style="fill:none; Visibility : visible">`, false},
		{"similar property name", `<g style="content-visibility:auto">`, `<g style="content-visibility:auto;visibility:hidden">`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := mustParse(t, tt.raw)
			if changed := tag.MergeStyle("visibility", "hidden"); changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if got := tag.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReclassify(t *testing.T) {
	doc := `<svg>` +
		`<g id="furniture"><path/></g>` +
		`<g id="Living-FURNITURE" class="x"/>` +
		`<g class="y" id="furniture_2" transform="t"></g>` +
		`<g id="walls"/>` +
		`<rect id="furniture-rect"/>` +
		`</svg>`
	want := `<svg>` +
		`<g class="furniture"><path/></g>` +
		`<g class="x furniture"/>` +
		`<g class="y furniture" transform="t"></g>` +
		`<g id="walls"/>` +
		`<rect id="furniture-rect"/>` +
		`</svg>`

	got, n := Reclassify(doc, "g", "id", "furniture", "furniture")
	if got != want {
		t.Errorf("Reclassify() =\n%s\nwant\n%s", got, want)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	again, n := Reclassify(got, "g", "id", "furniture", "furniture")
	if again != got || n != 0 {
		t.Errorf("second Reclassify changed the document (%d tags)", n)
	}
}

func TestReclassifyExhaustive(t *testing.T) {
	var b strings.Builder
	b.WriteString("<svg>")
	const n = 25
	for i := 0; i < n; i++ {
		b.WriteString(`<g id="room-furniture-`)
		b.WriteString(strings.Repeat("x", i))
		b.WriteString(`"><g id="label"/></g>`)
	}
	b.WriteString("</svg>")

	out, count := Reclassify(b.String(), "g", "id", "furniture", "furniture")
	if count != n {
		t.Errorf("count = %d, want %d", count, n)
	}
	if strings.Contains(out, `id="room-furniture`) {
		t.Error("furniture ids remain after reclassification")
	}
	if got := strings.Count(out, `class="furniture"`); got != n {
		t.Errorf("furniture classes = %d, want %d", got, n)
	}
}

func TestApplyRenames(t *testing.T) {
	doc := `<g id="options">` +
		`<g id="opt1"/>` +
		`<g id="opt2" data-name="Old"><path/></g>` +
		`<g id="opt3" style="fill:red"></g>` +
		`</g>`
	children := []Child{{ID: "opt1"}, {ID: "opt2"}, {ID: "opt3"}}

	got, report := ApplyRenames(doc, children, map[string]string{"opt2": "Storage"}, defaultRenameOptions)

	want := `<g id="options">` +
		`<g id="opt1" style="visibility:hidden"/>` +
		`<g id="Storage" data-name="Storage" style="visibility:hidden"><path/></g>` +
		`<g id="opt3" style="fill:red;visibility:hidden"></g>` +
		`</g>`
	if got != want {
		t.Errorf("ApplyRenames() =\n%s\nwant\n%s", got, want)
	}
	if report.Matched != 3 || report.Renamed != 1 || len(report.Skipped) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestApplyRenamesSinglePass(t *testing.T) {
	doc := `<g id="a"/><g id="b"/>`
	children := []Child{{ID: "a"}, {ID: "b"}}

	got, _ := ApplyRenames(doc, children, map[string]string{"a": "b", "b": "c"}, defaultRenameOptions)

	want := `<g id="b" data-name="b" style="visibility:hidden"/><g id="c" data-name="c" style="visibility:hidden"/>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyRenamesMalformedSelector(t *testing.T) {
	doc := `<g id="it's"/><g id="ok"/>`
	children := []Child{{ID: "it's"}, {ID: "ok"}}

	got, report := ApplyRenames(doc, children, map[string]string{"it's": "x", "ok": "fine"}, defaultRenameOptions)

	want := `<g id="it's"/><g id="fine" data-name="fine" style="visibility:hidden"/>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].ID != "it's" {
		t.Fatalf("Skipped = %+v", report.Skipped)
	}
	if !errors.Is(report.Skipped[0].Err, errors.ErrCodeMalformedSelector) {
		t.Errorf("skip error = %v", report.Skipped[0].Err)
	}
}

func TestApplyRenamesEscapesNewName(t *testing.T) {
	got, _ := ApplyRenames(`<g id="a"/>`, []Child{{ID: "a"}}, map[string]string{"a": `Bed "2" & <en>`}, defaultRenameOptions)
	want := `<g id="Bed &#34;2&#34; &amp; &lt;en&gt;" data-name="Bed &#34;2&#34; &amp; &lt;en&gt;" style="visibility:hidden"/>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if tags := ScanAll(got, "g"); len(tags) != 1 || tags[0].Kind != SelfClosing {
		t.Errorf("rewritten document no longer scans as one self-closing tag: %v", tags)
	}
}

func TestApplyRenamesUnquotedSelfClosing(t *testing.T) {
	doc := `<g id="options"><g id=b/><g id="c"/></g><g id="after"/>`
	span, _, err := FindElement(doc, "g", "id", "options")
	if err != nil {
		t.Fatalf("FindElement error: %v", err)
	}
	children := DirectChildren(doc, span, "g", "id", "data-name")
	if ids := IDs(children); len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Fatalf("children = %v, want [b c]", ids)
	}

	got, _ := ApplyRenames(doc, children, map[string]string{"b": "Bath"}, defaultRenameOptions)
	want := `<g id="options"><g id="Bath" data-name="Bath" style="visibility:hidden"/><g id="c" style="visibility:hidden"/></g><g id="after"/>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	got, _ = ApplyRenames(doc, children, nil, defaultRenameOptions)
	want = `<g id="options"><g id=b style="visibility:hidden"/><g id="c" style="visibility:hidden"/></g><g id="after"/>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	if _, _, err := FindElement(got, "g", "id", "after"); err != nil {
		t.Errorf("document unbalanced after rewrite: %v", err)
	}
}

var defaultRenameOptions = RenameOptions{
	Kind:         "g",
	IDAttr:       "id",
	NameAttr:     "data-name",
	HideProperty: "visibility",
	HideValue:    "hidden",
}
