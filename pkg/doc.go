// Package pkg provides the libraries behind floorplan, a rewriter that
// prepares floor-plan SVGs exported from design tools for the web.
//
// # Overview
//
// Exported plans identify furniture, labels and switchable variants by id.
// Floorplan turns those ids into classes that a stylesheet can target,
// lets the user rename the variants under the options group, hides them,
// and strips markup that only the design tool needs. Every rewrite works on
// the raw text: bytes outside the touched tags pass through unchanged.
//
// The data flow for one document:
//
//	SVG text
//	   ↓
//	[markup] reclassify id hooks into classes
//	   ↓
//	[markup] locate the options group and its direct children
//	   ↓
//	[rename] negotiate a mapping through a Prompter
//	   ↓
//	[markup] apply renames, hide options, strip title/desc and data-*
//	   ↓
//	SVG text + statistics
//
// [pipeline] runs these stages in order and is shared by the command line
// and the HTTP server.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Transform(ctx, doc, pipeline.Options{
//	    Renames: map[string]string{"opt1": "Storage"},
//	})
//	fmt.Println(res.Document, res.Stats.Reduction())
//
// # Main Packages
//
// [markup] - Tag scanning, an attribute lexer that round-trips unchanged
// attributes verbatim, element boundary search, class and style merging,
// renaming and stripping.
//
// [rename] - Rename negotiation. Answers come from an explicit Prompter:
// a line-based prompter over any reader, scripted answers, or a fixed map.
//
// [pipeline] - Stage orchestration, statistics, warnings and result
// caching.
//
// [inspect] - Read-only report on a document, built on a goquery DOM.
//
// [server] - JSON API over chi.
//
// # Infrastructure
//
// [cache] - Cache interface with null, file and Redis backends, and the
// keyers that derive cache keys from a document and its options.
//
// [config] - TOML configuration with defaults and validation.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for pipeline stages, cache lookups and HTTP
// requests.
//
// [buildinfo] - Version information injected at build time.
//
// [markup]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/markup
// [rename]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/rename
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/pipeline
// [inspect]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/inspect
// [server]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/buildinfo
package pkg
