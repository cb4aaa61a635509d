package pipeline

import (
	"context"
	"io"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplan/pkg/config"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/rename"
)

func newTestRunner() *Runner {
	return NewRunner(nil, nil, log.New(io.Discard))
}

func TestTransformEndToEnd(t *testing.T) {
	doc := `<svg><g id="options"><g id="a">x</g><g id="b"/></g></svg>`
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Prompter: rename.NewScripted("Foo", ""),
	})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}

	want := `<svg><g id="options"><g id="Foo" data-name="Foo" style="visibility:hidden">x</g><g id="b" style="visibility:hidden"/></g></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}
	if !reflect.DeepEqual(res.Mapping, rename.Mapping{"a": "Foo"}) {
		t.Errorf("mapping = %v", res.Mapping)
	}
}

func TestTransformAllStages(t *testing.T) {
	doc := `<svg><title>Plan A</title><desc>Ground floor</desc>` +
		`<g id="furniture-bed" data-layer="1"><path/></g>` +
		`<g id="Label_Kitchen" class="txt"/>` +
		`<g id="options"><g id="opt1" data-name="One"/><g id="opt2"/><g id="opt3"><g id="nested"/></g></g></svg>`

	p := rename.NewScripted("", "Storage", "")
	res, err := newTestRunner().Transform(context.Background(), doc, Options{Prompter: p})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}

	want := `<svg>` +
		`<g class="furniture"><path/></g>` +
		`<g class="txt labels"/>` +
		`<g id="options"><g id="opt1" data-name="One" style="visibility:hidden"/>` +
		`<g id="Storage" data-name="Storage" style="visibility:hidden"/>` +
		`<g id="opt3" style="visibility:hidden"><g id="nested"/></g></g></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}

	st := res.Stats
	if st.Reclassified["furniture"] != 1 || st.Reclassified["labels"] != 1 {
		t.Errorf("Reclassified = %v", st.Reclassified)
	}
	if !st.OptionsFound || st.Options != 3 {
		t.Errorf("options found %v, count %d", st.OptionsFound, st.Options)
	}
	if st.Renamed != 1 || st.Hidden != 3 {
		t.Errorf("renamed %d, hidden %d", st.Renamed, st.Hidden)
	}
	if st.ElementsStripped != 2 || st.DataAttrsRemoved != 1 {
		t.Errorf("stripped %d elements, %d data attrs", st.ElementsStripped, st.DataAttrsRemoved)
	}
	if st.OriginalBytes != len(doc) || st.ResultBytes != len(want) {
		t.Errorf("bytes %d -> %d", st.OriginalBytes, st.ResultBytes)
	}
	if len(p.Asked()) != 3 {
		t.Errorf("asked %d questions, want 3", len(p.Asked()))
	}
	if p.Asked()[0].DisplayName != "One" {
		t.Errorf("first question display name = %q", p.Asked()[0].DisplayName)
	}
}

func TestTransformFurnitureIsExhaustive(t *testing.T) {
	for n := 0; n <= 5; n++ {
		var b strings.Builder
		b.WriteString("<svg>")
		for i := 0; i < n; i++ {
			b.WriteString(`<g id="FURNITURE_` + string(rune('a'+i)) + `"><g id="inner-furniture"/></g>`)
		}
		b.WriteString(`<g id="wall"/></svg>`)

		res, err := newTestRunner().Transform(context.Background(), b.String(), Options{})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if got := strings.Count(res.Document, `class="furniture"`); got != 2*n {
			t.Errorf("n=%d: %d furniture classes, want %d", n, got, 2*n)
		}
		if strings.Contains(strings.ToLower(res.Document), `id="furniture`) || strings.Contains(res.Document, `id="inner-furniture"`) {
			t.Errorf("n=%d: furniture id left in %s", n, res.Document)
		}
		if !strings.Contains(res.Document, `<g id="wall"/>`) {
			t.Errorf("n=%d: unrelated element changed: %s", n, res.Document)
		}
	}
}

func TestTransformWithoutOptions(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantFound bool
	}{
		{"missing", `<svg><g id="walls"/></svg>`, false},
		{"unterminated", `<svg><g id="options"><g id="a">`, false},
		{"empty", `<svg><g id="options"></g></svg>`, true},
		{"self-closing", `<svg><g id="options"/></svg>`, true},
		{"children without ids", `<svg><g id="options"><g class="x"/></g></svg>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := rename.NewScripted()
			res, err := newTestRunner().Transform(context.Background(), tt.doc, Options{Prompter: p})
			if err != nil {
				t.Fatalf("Transform error: %v", err)
			}
			if res.Document != tt.doc {
				t.Errorf("document changed: %s", res.Document)
			}
			if res.Stats.OptionsFound != tt.wantFound || res.Stats.Options != 0 {
				t.Errorf("found %v, options %d", res.Stats.OptionsFound, res.Stats.Options)
			}
			if len(p.Asked()) != 0 {
				t.Errorf("prompter asked %d questions, want 0", len(p.Asked()))
			}
			var skipped []string
			for _, s := range res.Stats.Stages {
				if s.Skipped {
					skipped = append(skipped, s.Name)
				}
			}
			if !reflect.DeepEqual(skipped, []string{StageNegotiate, StageApplyRenames}) {
				t.Errorf("skipped stages = %v", skipped)
			}
		})
	}
}

func TestTransformChannelClosed(t *testing.T) {
	doc := `<svg><g id="options"><g id="a"/><g id="b"/></g></svg>`
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Prompter: rename.NewScripted("Foo"),
	})
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if !errors.Is(err, errors.ErrCodeChannelClosed) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeChannelClosed)
	}
}

func TestTransformCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, doc := range []string{
		`<svg><g id="options"><g id="a"/></g></svg>`,
		`<svg/>`,
	} {
		res, err := newTestRunner().Transform(ctx, doc, Options{Prompter: rename.NewScripted("x")})
		if res != nil || err != context.Canceled {
			t.Errorf("Transform(%s) = %v, %v; want nil, context.Canceled", doc, res, err)
		}
	}
}

func TestTransformMalformedSelector(t *testing.T) {
	doc := `<svg><g id="options"><g id="it's"/><g id="b"/></g></svg>`
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Renames: map[string]string{"it's": "Nope", "b": "B"},
	})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}

	want := `<svg><g id="options"><g id="it's"/><g id="B" data-name="B" style="visibility:hidden"/></g></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].ID != "it's" || res.Warnings[0].Stage != StageApplyRenames {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestTransformRenamesAndPolicy(t *testing.T) {
	doc := `<svg><g id="options"><g id="a"/><g id="b"/></g></svg>`
	tests := []struct {
		name    string
		renames map[string]string
		policy  rename.Policy
		want    string
	}{
		{
			"verbatim",
			map[string]string{"a": " Walk In Robe "},
			nil,
			`<svg><g id="options"><g id="Walk In Robe" data-name="Walk In Robe" style="visibility:hidden"/><g id="b" style="visibility:hidden"/></g></svg>`,
		},
		{
			"slug",
			map[string]string{"a": "Walk In Robe"},
			rename.Slug,
			`<svg><g id="options"><g id="walk_in_robe" data-name="walk_in_robe" style="visibility:hidden"/><g id="b" style="visibility:hidden"/></g></svg>`,
		},
		{
			"escaped",
			map[string]string{"b": `Bed & "Bath"`},
			nil,
			`<svg><g id="options"><g id="a" style="visibility:hidden"/><g id="Bed &amp; &#34;Bath&#34;" data-name="Bed &amp; &#34;Bath&#34;" style="visibility:hidden"/></g></svg>`,
		},
		{
			"unknown ids ignored",
			map[string]string{"zzz": "Z"},
			nil,
			`<svg><g id="options"><g id="a" style="visibility:hidden"/><g id="b" style="visibility:hidden"/></g></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestRunner().Transform(context.Background(), doc, Options{
				Renames: tt.renames,
				Policy:  tt.policy,
			})
			if err != nil {
				t.Fatalf("Transform error: %v", err)
			}
			if res.Document != tt.want {
				t.Errorf("document:\n got %s\nwant %s", res.Document, tt.want)
			}
		})
	}
}

func TestTransformInvalidOptions(t *testing.T) {
	rules := config.DefaultRules()
	rules.OptionsID = ""

	tests := []Options{
		{Rules: rules},
		{Renames: map[string]string{"a": "bad\x00name"}},
	}
	for i, opts := range tests {
		if _, err := newTestRunner().Transform(context.Background(), "<svg/>", opts); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestTransformCustomRules(t *testing.T) {
	rules := config.DefaultRules()
	rules.OptionsID = "variants"
	rules.Reclass = []config.ReclassRule{{Match: "door", Class: "doors"}}
	rules.KeepDataAttrs = nil

	doc := `<svg><g id="door-1" data-name="D"/><g id="variants"><g id="v1"/></g><g id="furniture"/></svg>`
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Rules:   rules,
		Renames: map[string]string{},
	})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	want := `<svg><g class="doors"/><g id="variants"><g id="v1" style="visibility:hidden"/></g><g id="furniture"/></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = data
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestTransformCache(t *testing.T) {
	c := &memCache{}
	r := NewRunner(c, nil, log.New(io.Discard))
	doc := `<svg><g id="options"><g id="a"/></g></svg>`
	opts := Options{Renames: map[string]string{"a": "A"}}

	first, err := r.Transform(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("first Transform error: %v", err)
	}
	if first.Cached {
		t.Error("first transform should not be cached")
	}

	second, err := r.Transform(context.Background(), doc, Options{Renames: map[string]string{"a": "A"}})
	if err != nil {
		t.Fatalf("second Transform error: %v", err)
	}
	if !second.Cached {
		t.Error("second transform should be served from cache")
	}
	if second.Document != first.Document {
		t.Errorf("cached document differs:\n%s\n%s", second.Document, first.Document)
	}

	slug, _ := r.Transform(context.Background(), doc, Options{Renames: map[string]string{"a": "A"}, Policy: rename.Slug})
	if slug.Cached {
		t.Error("a different policy must not share the cache entry")
	}

	// Interactive transforms are never cached.
	sets := c.sets
	if _, err := r.Transform(context.Background(), doc, Options{Prompter: rename.NewScripted("A")}); err != nil {
		t.Fatal(err)
	}
	if c.sets != sets {
		t.Error("interactive transform should not be stored")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	started   []string
	completed map[string]int
}

func (h *recordingHooks) OnStageStart(_ context.Context, stage string) {
	h.started = append(h.started, stage)
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, count int, _ time.Duration, _ error) {
	h.completed[stage] += count
}

func TestTransformHooks(t *testing.T) {
	h := &recordingHooks{completed: map[string]int{}}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	doc := `<svg><title>t</title><g id="label-1"/><g id="options"><g id="a"/></g></svg>`
	if _, err := newTestRunner().Transform(context.Background(), doc, Options{Prompter: rename.NewScripted("")}); err != nil {
		t.Fatal(err)
	}

	want := []string{
		StageReclass, StageReclass,
		StageLocateOptions, StageNegotiate, StageApplyRenames,
		StageStripElements, StageStripData,
	}
	if !reflect.DeepEqual(h.started, want) {
		t.Errorf("stages = %v, want %v", h.started, want)
	}
	if h.completed[StageReclass] != 1 || h.completed[StageStripElements] != 1 || h.completed[StageApplyRenames] != 1 {
		t.Errorf("counts = %v", h.completed)
	}
}

func TestStatsReduction(t *testing.T) {
	tests := []struct {
		orig, result int
		want         float64
	}{
		{0, 0, 0},
		{200, 150, 25},
		{100, 100, 0},
		{100, 110, -10},
	}
	for _, tt := range tests {
		got := Stats{OriginalBytes: tt.orig, ResultBytes: tt.result}.Reduction()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Reduction(%d, %d) = %v, want %v", tt.orig, tt.result, got, tt.want)
		}
	}
}

func TestTransformUnquotedSelfClosingOption(t *testing.T) {
	doc := `<svg><g id="options"><g id=b/><g id="c"/></g><g id="after"/></svg>`
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Prompter: rename.NewScripted("", ""),
	})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}

	want := `<svg><g id="options"><g id=b style="visibility:hidden"/><g id="c" style="visibility:hidden"/></g><g id="after"/></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}
	if ids := []string{res.Children[0].ID, res.Children[1].ID}; !reflect.DeepEqual(ids, []string{"b", "c"}) {
		t.Errorf("children = %v, want [b c]", ids)
	}
}

func TestTransformAcceptsAnyAnswer(t *testing.T) {
	doc := `<svg><g id="options"><g id="a"/><g id="b"/></g></svg>`
	long := strings.Repeat("n", 300)
	res, err := newTestRunner().Transform(context.Background(), doc, Options{
		Prompter: rename.NewScripted("Walk\tIn", long),
	})
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}

	want := `<svg><g id="options">` +
		`<g id="Walk&#9;In" data-name="Walk&#9;In" style="visibility:hidden"/>` +
		`<g id="` + long + `" data-name="` + long + `" style="visibility:hidden"/>` +
		`</g></svg>`
	if res.Document != want {
		t.Errorf("document:\n got %s\nwant %s", res.Document, want)
	}
	if res.Mapping["a"] != "Walk\tIn" {
		t.Errorf("mapping = %q", res.Mapping)
	}
}
