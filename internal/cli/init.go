package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pumldock/pumldock/pkg/config"
	perrors "github.com/pumldock/pumldock/pkg/errors"
)

// initCommand creates the init command writing a starter config file.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter " + config.FileName + " configuration",
		Long: `Write an annotated ` + config.FileName + ` into the given directory (default:
the current one). Every setting ships commented out, so a fresh file
changes nothing until edited.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)

			if _, err := os.Stat(path); err == nil && !force {
				printWarning("%s already exists (use --force to overwrite)", path)
				return nil
			}
			if err := os.WriteFile(path, []byte(config.Starter), 0o644); err != nil {
				return perrors.Wrap(perrors.ErrCodeInternal, err, "write %s", path)
			}

			printSuccess("Wrote %s", path)
			printNextStep("Run the first pass", appName+" run")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
