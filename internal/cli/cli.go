// Package cli implements the floorplan command-line interface.
//
// Invoked with file arguments, floorplan processes one document and exits.
// Invoked with no arguments (or -i), it starts an interactive shell that
// processes one document per line and shares a single input channel
// between shell commands and rename questions.
//
// # Commands
//
//   - process: transform one SVG file
//   - shell: interactive session
//   - inspect: report what a transform would change
//   - serve: HTTP API
//   - config: show the configuration file and effective settings
//   - cache: manage the server's file cache
//
// # Logging
//
// Progress narration goes to stderr through charmbracelet/log; --verbose
// enables debug output. The logger travels in the command's context.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/buildinfo"
	"github.com/matzehuels/floorplan/pkg/config"
)

const appName = "floorplan"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	// In is the interactive input; prompts are written to the logger's
	// writer side (stderr) in one-shot mode and to stdout in the shell.
	In io.Reader

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		In:     os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the command tree. The root command itself behaves
// like the classic script: file arguments process a file, no arguments
// start the shell.
func (c *CLI) RootCommand() *cobra.Command {
	var interactive bool
	var popts processOptions

	root := &cobra.Command{
		Use:   "floorplan [input.svg [output.svg]]",
		Short: "Floorplan prepares floor-plan SVGs for the web",
		Long: `Floorplan rewrites floor-plan SVG markup for publishing: id-based hooks on
furniture and label groups become classes, the children of the "options"
group are renamed interactively and hidden, and title, desc and auxiliary
data-* attributes are stripped.

With no arguments (or -i) an interactive shell is started.`,
		Version:       buildinfo.Version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = &cfg
			if c.verbose {
				c.SetLogLevel(LogDebug)
			} else {
				c.SetLogLevel(parseLevel(cfg.Logging.Level))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive || len(args) == 0 {
				return c.runShell(cmd.Context())
			}
			var out string
			if len(args) == 2 {
				out = args[1]
			}
			return c.processOneShot(cmd.Context(), args[0], out, popts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/floorplan/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "start the interactive shell")
	popts.register(root)

	root.AddCommand(c.processCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// settings returns the loaded configuration, or the defaults before load.
func (c *CLI) settings() config.Config {
	if c.cfg == nil {
		return config.Defaults()
	}
	return *c.cfg
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory (~/.cache/floorplan/ unless
// XDG_CACHE_HOME is set).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
