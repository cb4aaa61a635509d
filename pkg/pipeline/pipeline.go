// Package pipeline runs the floor-plan transform: a fixed, linear sequence
// of text rewrites over one SVG document.
//
// # Stages
//
//  1. reclass: every rule in [config.Rules.Reclass] turns elements whose id
//     contains the rule's match into members of the rule's class
//  2. locate-options: find the options group and enumerate its direct children
//  3. negotiate: ask a [rename.Prompter] for a new name per child
//  4. apply-renames: rename, label and hide every enumerated child
//  5. strip-elements: drop title and desc elements with their content
//  6. strip-data-attrs: drop data-* attributes except data-name
//
// A missing or unbalanced options group only skips stages 3 and 4. A closed
// prompter aborts the whole transform with no result.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Transform(ctx, svg, pipeline.Options{
//	    Prompter: rename.NewLinePrompter(os.Stdin, os.Stderr),
//	})
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/floorplan/pkg/config"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/markup"
	"github.com/matzehuels/floorplan/pkg/rename"
)

// Stage names, as reported to hooks and in [StageStat].
const (
	StageReclass       = "reclass"
	StageLocateOptions = "locate-options"
	StageNegotiate     = "negotiate"
	StageApplyRenames  = "apply-renames"
	StageStripElements = "strip-elements"
	StageStripData     = "strip-data-attrs"
)

// DefaultCacheTTL is how long a memoised transform stays cached.
const DefaultCacheTTL = 24 * time.Hour

// Options configure one transform.
type Options struct {
	// Rules default to config.DefaultRules when zero.
	Rules config.Rules

	// Policy normalises accepted answers. Nil means rename.Verbatim.
	Policy rename.Policy

	// Prompter answers the rename questions interactively. It is ignored
	// when Renames is set.
	Prompter rename.Prompter

	// Renames pre-supplies every answer: ids present are renamed, all other
	// children keep their id. Transforms with Renames set are cacheable.
	Renames map[string]string

	// Refresh bypasses cache lookups (results are still stored).
	Refresh bool
}

// ValidateAndSetDefaults fills in defaults and checks the options.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Rules.Element == "" {
		o.Rules = config.DefaultRules()
	}
	if err := o.Rules.Validate(); err != nil {
		return err
	}
	if o.Policy == nil {
		o.Policy = rename.Verbatim
	}
	for id, name := range o.Renames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "rename %q", id)
		}
	}
	return nil
}

// prompter returns the answer source for the negotiate stage.
func (o *Options) prompter() rename.Prompter {
	if o.Renames != nil || o.Prompter == nil {
		return rename.MapPrompter(o.Renames)
	}
	return o.Prompter
}

// normalizedRenames returns Renames as Negotiate will record them, so
// that cache keys reflect the policy.
func (o *Options) normalizedRenames() map[string]string {
	out := make(map[string]string, len(o.Renames))
	for id, name := range o.Renames {
		if name = strings.TrimSpace(name); name != "" {
			out[id] = o.Policy(name)
		}
	}
	return out
}

// cacheable reports whether the result depends only on the document and
// the options, i.e. no human is involved.
func (o *Options) cacheable() bool {
	return o.Renames != nil
}

// StageStat records one stage's work.
type StageStat struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration_ns"`
	Skipped  bool          `json:"skipped,omitempty"`
}

// Stats summarise a transform.
type Stats struct {
	// Reclassified counts elements per class token.
	Reclassified map[string]int `json:"reclassified"`

	OptionsFound     bool `json:"options_found"`
	Options          int  `json:"options"`
	Renamed          int  `json:"renamed"`
	Hidden           int  `json:"hidden"`
	ElementsStripped int  `json:"elements_stripped"`
	DataAttrsRemoved int  `json:"data_attrs_removed"`

	OriginalBytes int           `json:"original_bytes"`
	ResultBytes   int           `json:"result_bytes"`
	Duration      time.Duration `json:"duration_ns"`

	Stages []StageStat `json:"stages"`
}

// Reduction is the size change in percent of the original; positive when
// the result is smaller.
func (s Stats) Reduction() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.OriginalBytes-s.ResultBytes) / float64(s.OriginalBytes) * 100
}

// Warning is a non-fatal problem, e.g. an option whose id cannot be
// addressed safely.
type Warning struct {
	Stage   string `json:"stage"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Result is a completed transform.
type Result struct {
	Document string         `json:"document"`
	Children []markup.Child `json:"-"`
	Mapping  rename.Mapping `json:"renames"`
	Stats    Stats          `json:"stats"`
	Warnings []Warning      `json:"warnings,omitempty"`
	Cached   bool           `json:"cached"`
}
