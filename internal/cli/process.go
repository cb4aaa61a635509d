package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/rename"
)

// processOptions are the flags shared by the root and process commands.
type processOptions struct {
	answersFile string
	renames     []string
	tui         bool
	dryRun      bool
}

func (o *processOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.answersFile, "answers", "", "read rename answers from a file, one line per option")
	cmd.Flags().StringArrayVar(&o.renames, "rename", nil, "rename an option non-interactively (old=new, repeatable)")
	cmd.Flags().BoolVar(&o.tui, "tui", false, "ask rename questions in a full-screen prompt")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the result to stdout instead of writing a file")
	cmd.MarkFlagsMutuallyExclusive("answers", "rename", "tui")
}

// processCommand creates the "process" command.
func (c *CLI) processCommand() *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process <input.svg> [output.svg]",
		Short: "Transform one SVG file",
		Long: `Transform one SVG file.

If no output path is given the result is written next to the input with the
configured suffix, e.g. plan.svg becomes plan-web.svg.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out string
			if len(args) == 2 {
				out = args[1]
			}
			return c.processOneShot(cmd.Context(), args[0], out, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// processOneShot processes one file with a private prompter that is closed
// afterwards.
func (c *CLI) processOneShot(ctx context.Context, in, out string, opts processOptions) error {
	popts := pipeline.Options{}

	switch {
	case len(opts.renames) > 0:
		m, err := parseRenames(opts.renames)
		if err != nil {
			return err
		}
		popts.Renames = m
	case opts.answersFile != "":
		f, err := os.Open(opts.answersFile)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "answers file %q", opts.answersFile)
		}
		answers, err := rename.ReadAnswers(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read answers: %w", err)
		}
		popts.Prompter = rename.NewScripted(answers...)
	case opts.tui:
		if !isTerminal(os.Stdin) {
			return errors.New(errors.ErrCodeUnsupported, "--tui needs an interactive terminal")
		}
		popts.Prompter = newTeaPrompter(c.In, os.Stderr)
	default:
		lp := rename.NewLinePrompter(c.In, os.Stderr)
		defer lp.Close()
		popts.Prompter = lp
	}

	return c.processFile(ctx, in, out, popts, opts.dryRun)
}

// processFile reads in, transforms it and writes the result to out (or the
// default output path). Nothing is written when the transform fails.
func (c *CLI) processFile(ctx context.Context, in, out string, popts pipeline.Options, dryRun bool) error {
	logger := loggerFromContext(ctx)
	cfg := c.settings()

	if err := errors.ValidatePath(in); err != nil {
		return err
	}
	if out == "" {
		out = defaultOutputPath(in, cfg.Output.Suffix)
	}
	if err := errors.ValidatePath(out); err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeFileNotFound, "input file %q not found", in)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	policy, err := rename.ParsePolicy(cfg.Rename.Policy)
	if err != nil {
		return err
	}
	popts.Rules = cfg.Rules
	popts.Policy = policy

	prog := newProgress(logger)
	logger.Info("applying floorplan optimizations", "file", in)
	res, err := pipeline.NewRunner(nil, nil, logger).Transform(ctx, string(data), popts)
	if err != nil {
		return err
	}
	prog.done("transform complete")

	for _, w := range res.Warnings {
		printWarning("%s: %s", w.ID, w.Message)
	}

	if dryRun {
		fmt.Fprintln(stdout, res.Document)
	} else {
		if err := os.WriteFile(out, []byte(res.Document), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printNewline()
		printSuccess("Optimized SVG written to:")
		printFile(out)
	}
	printStageSummary(stageSummary(res.Stats), res.Cached)
	printSizeReport(res.Stats.OriginalBytes, res.Stats.ResultBytes, res.Stats.Reduction())
	return nil
}

// defaultOutputPath inserts suffix before the extension of in.
func defaultOutputPath(in, suffix string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + suffix + ext
}

// parseRenames turns "old=new" flag values into a mapping.
func parseRenames(pairs []string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		old, name, ok := strings.Cut(p, "=")
		if !ok || old == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --rename %q (want old=new)", p)
		}
		m[old] = name
	}
	return m, nil
}

func stageSummary(st pipeline.Stats) []string {
	var parts []string
	for class, n := range st.Reclassified {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, class))
		}
	}
	sort.Strings(parts)
	if st.OptionsFound {
		parts = append(parts, fmt.Sprintf("%d options (%d renamed)", st.Options, st.Renamed))
	}
	if st.ElementsStripped > 0 {
		parts = append(parts, fmt.Sprintf("%d elements stripped", st.ElementsStripped))
	}
	if st.DataAttrsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d data attributes removed", st.DataAttrsRemoved))
	}
	return parts
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
