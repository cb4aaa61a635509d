package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/markup"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/rename"
)

// Runner executes transforms. It holds no per-document state, so one
// Runner may serve concurrent transforms of different documents.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	CacheTTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// selects cache.DefaultKeyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, CacheTTL: DefaultCacheTTL}
}

// Transform runs every stage over doc.
//
// On a CHANNEL_CLOSED error or context cancellation the returned result is
// nil: a partially negotiated document is never produced.
func (r *Runner) Transform(ctx context.Context, doc string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	var key string
	if opts.cacheable() {
		key = r.Keyer.TransformKey(doc, cache.TransformKeyOpts{
			Renames:   opts.normalizedRenames(),
			RulesHash: opts.Rules.Hash(),
		})
		if !opts.Refresh {
			if res, ok := r.lookup(ctx, key); ok {
				return res, nil
			}
		}
	}

	res, err := r.run(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	if key != "" {
		r.store(ctx, key, res)
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, doc string, opts Options) (*Result, error) {
	start := time.Now()
	rules := opts.Rules
	res := &Result{
		Mapping: rename.Mapping{},
		Stats: Stats{
			Reclassified:  make(map[string]int, len(rules.Reclass)),
			OriginalBytes: len(doc),
		},
	}
	s := &stageRunner{ctx: ctx, stats: &res.Stats}

	for _, rule := range rules.Reclass {
		s.run(StageReclass, func() (int, error) {
			var n int
			doc, n = markup.Reclassify(doc, rules.Element, rules.IDAttr, rule.Match, rule.Class)
			res.Stats.Reclassified[rule.Class] += n
			r.Logger.Info("reclassified elements", "match", rule.Match, "class", rule.Class, "count", n)
			return n, nil
		})
	}

	var children []markup.Child
	s.run(StageLocateOptions, func() (int, error) {
		span, _, err := markup.FindElement(doc, rules.Element, rules.IDAttr, rules.OptionsID)
		if err != nil {
			r.Logger.Info("no options group found, skipping option renaming", "id", rules.OptionsID)
			r.Logger.Debug("locate options", "err", err)
			return 0, nil
		}
		res.Stats.OptionsFound = true
		children = markup.DirectChildren(doc, span, rules.Element, rules.IDAttr, rules.NameAttr)
		res.Stats.Options = len(children)
		if len(children) == 0 {
			r.Logger.Info("options group has no direct children to rename")
		} else {
			r.Logger.Infof("found %d option(s) to rename", len(children))
		}
		return len(children), nil
	})
	res.Children = children

	if len(children) == 0 {
		s.skip(StageNegotiate)
		s.skip(StageApplyRenames)
	} else {
		var mapping rename.Mapping
		err := s.run(StageNegotiate, func() (int, error) {
			var err error
			mapping, err = rename.Negotiate(ctx, opts.prompter(), children, opts.Policy)
			return len(mapping), err
		})
		if err != nil {
			return nil, err
		}
		res.Mapping = mapping

		s.run(StageApplyRenames, func() (int, error) {
			var report markup.RenameReport
			doc, report = markup.ApplyRenames(doc, children, mapping, markup.RenameOptions{
				Kind:         rules.Element,
				IDAttr:       rules.IDAttr,
				NameAttr:     rules.NameAttr,
				HideProperty: rules.HideProperty,
				HideValue:    rules.HideValue,
			})
			res.Stats.Renamed = report.Renamed
			res.Stats.Hidden = report.Matched
			for _, sk := range report.Skipped {
				res.Warnings = append(res.Warnings, Warning{
					Stage:   StageApplyRenames,
					ID:      sk.ID,
					Message: errors.UserMessage(sk.Err),
				})
				r.Logger.Warn("skipped option with unsafe id", "id", sk.ID)
			}
			r.Logger.Info("applied changes to options", "renamed", report.Renamed, "hidden", report.Matched)
			return report.Matched, nil
		})
	}

	s.run(StageStripElements, func() (int, error) {
		var n int
		doc, n = markup.StripElements(doc, rules.StripElements...)
		res.Stats.ElementsStripped = n
		r.Logger.Debug("stripped elements", "kinds", rules.StripElements, "count", n)
		return n, nil
	})

	s.run(StageStripData, func() (int, error) {
		var n int
		doc, n = markup.StripDataAttrs(doc, rules.KeepDataAttrs)
		res.Stats.DataAttrsRemoved = n
		r.Logger.Debug("stripped data attributes", "keep", rules.KeepDataAttrs, "count", n)
		return n, nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Document = doc
	res.Stats.ResultBytes = len(doc)
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// stageRunner times stages, records their stats and fires hooks.
type stageRunner struct {
	ctx   context.Context
	stats *Stats
}

func (s *stageRunner) run(name string, fn func() (int, error)) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(s.ctx, name)
	start := time.Now()
	n, err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(s.ctx, name, n, d, err)
	s.stats.Stages = append(s.stats.Stages, StageStat{Name: name, Count: n, Duration: d})
	return err
}

func (s *stageRunner) skip(name string) {
	s.stats.Stages = append(s.stats.Stages, StageStat{Name: name, Skipped: true})
}

const cacheKeyType = "transform"

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	res.Cached = true
	r.Logger.Debug("transform served from cache", "key", key)
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.CacheTTL); err != nil {
		r.Logger.Warn("cache store failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}
