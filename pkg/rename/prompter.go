package rename

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// LinePrompter asks questions on a line-oriented channel: the question is
// written to w and one line is read from r.
//
// A LinePrompter can be shared with other line readers, such as the
// interactive shell's command loop, through [LinePrompter.ReadLine].
type LinePrompter struct {
	w      io.Writer
	r      *bufio.Reader
	closer io.Closer

	mu     sync.Mutex
	closed bool
}

// NewLinePrompter returns a prompter reading from r and writing to w.
// If r implements io.Closer it is closed by [LinePrompter.Close].
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	p := &LinePrompter{w: w, r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}
	return p
}

// Ask writes the question and waits for one line of input.
func (p *LinePrompter) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.w, "\n[%d/%d] Current ID: %q\n", q.Index, q.Total, q.Current)
	if q.DisplayName != "" && q.DisplayName != q.Current {
		fmt.Fprintf(p.w, "      Name: %q\n", q.DisplayName)
	}
	fmt.Fprint(p.w, "Enter new name (or press Enter to keep): ")
	return p.ReadLineContext(ctx)
}

// ReadLineContext is ReadLine that gives up when ctx is done. The pending
// read keeps running and its line is lost, so a cancelled prompter should
// not be reused.
func (p *LinePrompter) ReadLineContext(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.ReadLine()
		ch <- result{line, err}
	}()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Confirm echoes the decision for q.
func (p *LinePrompter) Confirm(q Question, name string) {
	if name == "" {
		fmt.Fprintf(p.w, "✓ Keeping: %q\n", q.Current)
		return
	}
	fmt.Fprintf(p.w, "✓ Will rename to: %q\n", name)
}

// ReadLine reads one line without its line terminator. A final line without
// a terminator is returned normally; io.EOF is returned only when no input
// remains.
func (p *LinePrompter) ReadLine() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", io.EOF
	}
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return trimEOL(line), nil
}

// Writer returns the prompt output.
func (p *LinePrompter) Writer() io.Writer {
	return p.w
}

// Close marks the prompter closed and closes the underlying reader, if it
// owns one. Close is safe to call more than once.
func (p *LinePrompter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func trimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}

// ErrNoAnswers is returned by [Scripted] when it runs out of answers.
var ErrNoAnswers = errors.New("no scripted answers left")

// Scripted answers from a fixed list, in order. It returns [ErrNoAnswers]
// once the list is exhausted.
type Scripted struct {
	answers []string
	next    int
	asked   []Question
}

// NewScripted returns a prompter that replays answers.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Ask returns the next scripted answer.
func (s *Scripted) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.asked = append(s.asked, q)
	if s.next >= len(s.answers) {
		return "", ErrNoAnswers
	}
	a := s.answers[s.next]
	s.next++
	return a, nil
}

// Asked returns the questions seen so far.
func (s *Scripted) Asked() []Question {
	return s.asked
}

// MapPrompter answers from a mapping supplied up front: the entry for the
// current id, or a blank answer (keep) when there is none. It never blocks.
type MapPrompter map[string]string

// Ask returns the mapped name for q.Current.
func (m MapPrompter) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m[q.Current], nil
}

// ReadAnswers reads one answer per line from r, for use with [NewScripted].
// Blank lines are kept: they mean "keep the current name".
func ReadAnswers(r io.Reader) ([]string, error) {
	var answers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		answers = append(answers, trimEOL(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}
