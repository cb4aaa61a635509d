package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/floorplan/pkg/rename"
)

var (
	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	promptInputStyle = lipgloss.NewStyle().Foreground(colorWhite)
	promptDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	promptBarStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// errPromptAborted is returned when the user leaves the prompt with esc or
// ctrl+c. The negotiation treats it like a closed channel.
var errPromptAborted = errors.New("rename prompt aborted")

// =============================================================================
// RenameModel - one rename question
// =============================================================================

// RenameModel is the bubbletea model for a single rename question.
type RenameModel struct {
	Question rename.Question
	Input    []rune
	Done     bool
	Aborted  bool
}

// NewRenameModel returns a model asking q.
func NewRenameModel(q rename.Question) RenameModel {
	return RenameModel{Question: q}
}

func (m RenameModel) Init() tea.Cmd {
	return nil
}

func (m RenameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.Done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
		}
	case tea.KeyCtrlU:
		m.Input = nil
	case tea.KeySpace:
		m.Input = append(m.Input, ' ')
	case tea.KeyRunes:
		m.Input = append(m.Input, key.Runes...)
	}
	return m, nil
}

func (m RenameModel) View() string {
	if m.Done || m.Aborted {
		return ""
	}
	var b strings.Builder
	q := m.Question

	b.WriteString(promptDimStyle.Render(progressBar(q.Index, q.Total, 20)))
	b.WriteString(promptDimStyle.Render(fmt.Sprintf("  option %d of %d", q.Index, q.Total)))
	b.WriteString("\n\n")
	b.WriteString(promptLabelStyle.Render("Current ID  "))
	b.WriteString(StyleValue.Render(q.Current))
	b.WriteString("\n")
	if q.DisplayName != "" && q.DisplayName != q.Current {
		b.WriteString(promptLabelStyle.Render("Name        "))
		b.WriteString(StyleValue.Render(q.DisplayName))
		b.WriteString("\n")
	}
	b.WriteString(promptLabelStyle.Render("New name    "))
	b.WriteString(promptInputStyle.Render(string(m.Input)))
	b.WriteString(promptDimStyle.Render("█"))
	b.WriteString("\n\n")
	b.WriteString(promptDimStyle.Render("⏎ accept (empty keeps the id)  esc abort"))
	b.WriteString("\n")
	return b.String()
}

// Answer returns the typed text.
func (m RenameModel) Answer() string {
	return string(m.Input)
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := done * width / total
	return promptBarStyle.Render(strings.Repeat("━", filled)) + strings.Repeat("─", width-filled)
}

// =============================================================================
// teaPrompter - rename.Prompter backed by RenameModel
// =============================================================================

type teaPrompter struct {
	in  io.Reader
	out io.Writer
}

func newTeaPrompter(in io.Reader, out io.Writer) *teaPrompter {
	return &teaPrompter{in: in, out: out}
}

// Ask runs one RenameModel program.
func (p *teaPrompter) Ask(ctx context.Context, q rename.Question) (string, error) {
	prog := tea.NewProgram(NewRenameModel(q),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	m := final.(RenameModel)
	if m.Aborted {
		return "", errPromptAborted
	}
	return m.Answer(), nil
}

// Confirm echoes each decision below the prompt.
func (p *teaPrompter) Confirm(q rename.Question, name string) {
	if name == "" {
		fmt.Fprintln(p.out, styleIconInfo.Render(iconInfo)+" keeping "+StyleValue.Render(q.Current))
		return
	}
	fmt.Fprintln(p.out, styleIconSuccess.Render(iconSuccess)+" "+q.Current+" "+iconArrow+" "+StyleHighlight.Render(name))
}
