package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/rename"
)

const shellPrompt = "\nfloorplan> "

// shellCommand creates the "shell" command.
func (c *CLI) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "shell",
		Aliases: []string{"interactive"},
		Short:   "Start the interactive shell",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShell(cmd.Context())
		},
	}
}

// runShell reads commands from c.In until exit, quit or end of input. The
// same line prompter answers the rename questions of every file processed.
func (c *CLI) runShell(ctx context.Context) error {
	lp := rename.NewLinePrompter(c.In, stdout)
	defer lp.Close()

	printRule()
	fmt.Fprintln(stdout, StyleTitle.Render("Floorplan SVG Optimiser - Interactive Mode"))
	printRule()
	printShellHelp()
	printRule()

	for {
		fmt.Fprint(stdout, shellPrompt)
		line, err := lp.ReadLineContext(ctx)
		if err == io.EOF {
			fmt.Fprintln(stdout, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := c.shellLine(ctx, lp, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// shellLine runs one shell command. It returns quit=true when the session
// should end, and an error only for failures that end the session.
func (c *CLI) shellLine(ctx context.Context, lp *rename.LinePrompter, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "", "help":
		printNewline()
		printShellHelp()
		return false, nil
	case "exit", "quit":
		fmt.Fprintln(stdout, "\nGoodbye!")
		return true, nil
	}

	args := splitArgs(line)
	if len(args) == 0 {
		return false, nil
	}
	if len(args) > 2 {
		printWarning("ignoring extra arguments: %s", strings.Join(args[2:], " "))
	}
	in, out := args[0], ""
	if len(args) > 1 {
		out = args[1]
	}

	err := c.processFile(ctx, in, out, pipeline.Options{Prompter: lp}, false)
	switch {
	case err == nil:
		return false, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, errors.ErrCodeChannelClosed):
		// Input ended in the middle of the questions; nothing was written.
		printError("Input closed during renaming, %s was not written", in)
		fmt.Fprintln(stdout, "\nGoodbye!")
		return true, nil
	case errors.Is(err, errors.ErrCodeFileNotFound):
		printError("Error: Input file %q not found", in)
	default:
		printError("Error processing file: %s", errors.UserMessage(err))
	}
	return false, nil
}

func printShellHelp() {
	fmt.Fprintln(stdout, "Commands:")
	fmt.Fprintln(stdout, "  <file.svg>          - Process file with default output name")
	fmt.Fprintln(stdout, "  <in.svg> <out.svg>  - Process with custom output name")
	fmt.Fprintln(stdout, "  help                - Show this help")
	fmt.Fprintln(stdout, "  exit/quit           - Exit the shell")
}

// splitArgs splits a shell line on spaces. Single or double quotes group
// words, and a backslash escapes a following space or quote; any other
// backslash is kept literally so Windows paths survive.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		escaped bool
	)
	runes := []rune(line)
	for i, r := range runes {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '"' || runes[i+1] == '\'') {
				escaped = true
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			switch quote {
			case 0:
				quote = r
			case r:
				quote = 0
			default:
				cur.WriteRune(r)
			}
		case (r == ' ' || r == '\t') && quote == 0:
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}
