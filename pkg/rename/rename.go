// Package rename runs the interactive rename negotiation for option groups.
//
// For each direct child of the options group, in document order, a
// [Prompter] is asked for a replacement name. Blank answers keep the current
// id; anything else (trimmed, then passed through a [Policy]) is recorded in
// the resulting [Mapping]. The negotiation cannot skip ahead, go back or be
// cancelled half-way: it either collects all N answers or fails, in which case
// no mapping is returned at all.
//
// The prompter is an explicit handle owned by the caller. An interactive
// shell creates one [LinePrompter] over its terminal and passes it to every
// run so that shell commands and rename questions share one channel; a
// one-shot run opens a private prompter and closes it afterwards.
package rename

import (
	"context"
	"errors"
	"strings"

	"github.com/matzehuels/floorplan/pkg/markup"

	ferrors "github.com/matzehuels/floorplan/pkg/errors"
)

// Mapping maps original ids to the replacement names a human chose.
// An id without an entry is left unchanged.
type Mapping map[string]string

// Lookup returns the replacement for id, if one was chosen.
func (m Mapping) Lookup(id string) (string, bool) {
	name, ok := m[id]
	return name, ok
}

// Question is one round of the negotiation.
type Question struct {
	Index       int    // 1-based position
	Total       int    // number of rounds
	Current     string // current id
	DisplayName string // current display name, empty when absent
}

// Prompter asks a human one question and returns the raw answer line.
// Implementations return io.EOF when the input source is closed.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Confirmer is implemented by prompters that echo each decision back to
// the human. Confirm is called after every accepted answer; name is empty
// when the current id is kept.
type Confirmer interface {
	Confirm(q Question, name string)
}

// Negotiate asks p about every child in order and returns the collected
// mapping. Any prompter failure aborts the whole negotiation with a
// CHANNEL_CLOSED error (or the context error on cancellation) and a nil
// mapping, so a partial set of answers is never applied.
func Negotiate(ctx context.Context, p Prompter, children []markup.Child, policy Policy) (Mapping, error) {
	if policy == nil {
		policy = Verbatim
	}
	confirm, _ := p.(Confirmer)
	m := make(Mapping)
	for i, c := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := Question{
			Index:       i + 1,
			Total:       len(children),
			Current:     c.ID,
			DisplayName: c.DisplayName,
		}
		answer, err := p.Ask(ctx, q)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, ferrors.Wrap(ferrors.ErrCodeChannelClosed, err, "rename %d of %d (%q)", i+1, len(children), c.ID)
		}

		name := strings.TrimSpace(answer)
		if name == "" {
			if confirm != nil {
				confirm.Confirm(q, "")
			}
			continue
		}
		name = policy(name)
		m[c.ID] = name
		if confirm != nil {
			confirm.Confirm(q, name)
		}
	}
	return m, nil
}
