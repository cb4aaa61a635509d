package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/inspect"
)

// inspectCommand creates the "inspect" command.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file.svg>",
		Short: "Report what a transform would change",
		Long: `Inspect an SVG without modifying it.

Lists the options found under the options group, how many elements still
carry id hooks that the transform would turn into classes, and any title,
desc or data-* leftovers. Running it on a processed file shows what the
transform left behind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := errors.ValidatePath(path); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				return errors.New(errors.ErrCodeFileNotFound, "input file %q not found", path)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			report, err := inspect.Inspect(string(data), c.settings().Rules)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printInspectReport(path, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printInspectReport(path string, r *inspect.Report) {
	fmt.Fprintln(stdout, StyleTitle.Render(path))
	printKeyValue("Size", formatBytes(r.Bytes))
	printKeyValue("Elements", strconv.Itoa(r.Elements))
	printNewline()

	if !r.OptionsFound {
		printWarning("no options group found")
	} else if len(r.Options) == 0 {
		printInfo("options group is empty")
	} else {
		fmt.Fprintln(stdout, optionsTable(r.Options))
		printDetail("%d of %d hidden", r.HiddenOptions(), len(r.Options))
	}
	printNewline()

	for _, class := range sortedKeys(r.Pending) {
		printKeyValue("Reclass "+class, fmt.Sprintf("%d pending", r.Pending[class]))
	}
	for _, class := range sortedKeys(r.Classified) {
		printKeyValue("Class "+class, fmt.Sprintf("%d tagged", r.Classified[class]))
	}
	for _, kind := range sortedKeys(r.Strippable) {
		printKeyValue("Strip <"+kind+">", strconv.Itoa(r.Strippable[kind]))
	}
	for _, name := range r.DataAttrNames() {
		printKeyValue(name, strconv.Itoa(r.DataAttrs[name]))
	}

	printNewline()
	if r.Clean() {
		printSuccess("Nothing left to transform")
	} else {
		printNextStep("Transform it", "floorplan "+path)
	}
}

func optionsTable(opts []inspect.Option) string {
	rows := make([][]string, len(opts))
	for i, o := range opts {
		hidden := "no"
		if o.Hidden {
			hidden = "yes"
		}
		rows[i] = []string{strconv.Itoa(i + 1), o.ID, o.Name, hidden}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Name", "Hidden").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorDim)
			case col == 1:
				return base.Foreground(colorCyan)
			case col == 3 && row < len(opts) && opts[row].Hidden:
				return base.Foreground(colorGreen)
			case col == 3:
				return base.Foreground(colorYellow)
			}
			return base
		}).
		String()
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
