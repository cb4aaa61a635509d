// Package markup edits SVG source text without building a document tree.
//
// # Overview
//
// Floor-plan exports are rewritten as raw text so that every region the
// rewrite does not touch stays byte-for-byte identical. Nothing here parses the
// document into a tree; each operation re-scans the current text, finds the
// tags it needs and splices replacements back in.
//
// The package is layered, leaves first:
//
//   - [Scanner]: yields the open, close and self-closing tags of one element
//     kind in document order.
//   - [FindElement]: locates one element by an attribute value and returns the
//     [Span] of its content, resolving nesting with a depth counter.
//   - [DirectChildren]: lists the depth-one elements inside a span.
//   - [StartTag]: an opening tag split into verbatim attributes, with the
//     idempotent patch operations [StartTag.MergeClass] and
//     [StartTag.MergeStyle].
//   - Document rewrites built on the above: [Reclassify], [ApplyRenames],
//     [StripElements] and [StripDataAttrs].
//
// # Tokenizing
//
// [Scanner] is driven by the golang.org/x/net/html tokenizer and only ever
// looks at raw token bytes. Comments, CDATA sections and quoted attribute
// values that contain '<', '>' or '/' therefore never produce phantom tags.
// Every start tag is treated as foreign (XML-like) content, so the contents of
// <title>, <style> and <script> are tokenized like any other element.
//
// # Spans
//
// A [Span] is a pair of byte offsets into the text it was computed from. It is
// only valid until that text is rewritten; consume every span of a region
// before patching the same region.
package markup
