// Package cli implements the pumldock command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pumldock/pumldock/pkg/buildinfo"
)

// appName is the binary name used in help text and next-step hints.
const appName = "pumldock"

// Log levels re-exported so main.go does not import charmbracelet/log.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI instance logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Keep markdown documentation in sync with PlantUML diagrams",
		Long: `pumldock resolves the references between PlantUML diagram files, encodes
every diagram for a PlantUML render server and keeps the links and
images inside markdown documentation up to date.

Documents reference diagrams through hidden comment directives such as
<!--![Architecture](./diagrams/arch.puml)-->. Each pass rewrites the
visible markdown in front of the directive and preserves the directive
itself, so repeated runs are safe.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.completionCommand())

	return root
}
