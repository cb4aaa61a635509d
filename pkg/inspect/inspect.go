// Package inspect reports what the transform would change in a document,
// and what it left behind, without modifying anything.
//
// Unlike the rewriting stages, which work on the raw text, the inspector
// parses the document into a DOM with goquery and queries it.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/floorplan/pkg/config"
	"github.com/matzehuels/floorplan/pkg/markup"
)

// Option describes one direct child of the options group.
type Option struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Hidden bool   `json:"hidden"`
}

// Report summarises a document against a rule set.
type Report struct {
	Bytes    int `json:"bytes"`
	Elements int `json:"elements"`

	// Pending counts, per class token, elements whose id still matches a
	// reclass rule.
	Pending map[string]int `json:"pending"`
	// Classified counts, per class token, elements already in that class.
	Classified map[string]int `json:"classified"`

	OptionsFound bool     `json:"options_found"`
	Options      []Option `json:"options"`

	// Strippable counts leftover elements per strip kind.
	Strippable map[string]int `json:"strippable"`
	// DataAttrs counts data-* attributes, per name, that would be removed.
	DataAttrs map[string]int `json:"data_attrs"`
}

// Inspect parses doc and reports on it under rules.
func Inspect(doc string, rules config.Rules) (*Report, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	r := &Report{
		Bytes:      len(doc),
		Pending:    make(map[string]int),
		Classified: make(map[string]int),
		Strippable: make(map[string]int),
		DataAttrs:  make(map[string]int),
	}

	elems := d.Find(rules.Element)
	r.Elements = elems.Length()
	elems.Each(func(_ int, s *goquery.Selection) {
		id, hasID := s.Attr(rules.IDAttr)
		class := s.AttrOr("class", "")
		for _, rule := range rules.Reclass {
			if hasID && strings.Contains(strings.ToLower(id), strings.ToLower(rule.Match)) {
				r.Pending[rule.Class]++
			}
			if markup.HasClass(class, rule.Class) {
				r.Classified[rule.Class]++
			}
		}
	})

	group := elems.FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, ok := s.Attr(rules.IDAttr)
		return ok && id == rules.OptionsID
	}).First()
	if group.Length() > 0 {
		r.OptionsFound = true
		group.ChildrenFiltered(rules.Element).Each(func(_ int, s *goquery.Selection) {
			id, ok := s.Attr(rules.IDAttr)
			if !ok {
				return
			}
			r.Options = append(r.Options, Option{
				ID:     id,
				Name:   s.AttrOr(rules.NameAttr, ""),
				Hidden: markup.HasStyleProperty(s.AttrOr("style", ""), rules.HideProperty),
			})
		})
	}

	for _, kind := range rules.StripElements {
		if n := d.Find(kind).Length(); n > 0 {
			r.Strippable[kind] = n
		}
	}

	d.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, a := range s.Get(0).Attr {
			if strings.HasPrefix(a.Key, "data-") && !keep(rules.KeepDataAttrs, a.Key) {
				r.DataAttrs[a.Key]++
			}
		}
	})
	return r, nil
}

func keep(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Clean reports whether a transform would find nothing left to reclassify
// or strip.
func (r *Report) Clean() bool {
	return sum(r.Pending) == 0 && sum(r.Strippable) == 0 && sum(r.DataAttrs) == 0
}

// HiddenOptions counts options already hidden.
func (r *Report) HiddenOptions() int {
	n := 0
	for _, o := range r.Options {
		if o.Hidden {
			n++
		}
	}
	return n
}

// DataAttrNames returns the removable data attribute names, sorted.
func (r *Report) DataAttrNames() []string {
	names := make([]string, 0, len(r.DataAttrs))
	for k := range r.DataAttrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
