package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pumldock/pumldock/pkg/pipeline"
)

// runCommand creates the run command executing a single documentation pass.
func (c *CLI) runCommand() *cobra.Command {
	var (
		f       passFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve diagrams and rewrite documentation once",
		Long: `Run a single documentation pass.

The pass scans the diagram and documentation trees, resolves every
cross-diagram reference, encodes each diagram for the render server and
rewrites the hidden comment directives inside the documentation. With
--export the rendered images are written below the output directory as
well, and --embed points documents at those files instead of the render
server.

Examples:
  pumldock run                      # rewrite docs with render URLs
  pumldock run --export             # also export svg images
  pumldock run -e -f both           # export png and svg images
  pumldock run --export --embed     # embed exported svg files
  pumldock run --json               # machine-readable summary on stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			opts, err := buildOptions(cmd, &f, logger)
			if err != nil {
				return err
			}
			if jsonOut {
				return c.runPassJSON(cmd.Context(), opts)
			}
			return c.runPass(cmd.Context(), opts)
		},
	}

	addPassFlags(cmd, &f)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print a machine-readable pass summary instead of styled output")
	return cmd
}

// runPass executes one pipeline pass and prints its summary.
func (c *CLI) runPass(ctx context.Context, opts pipeline.Options) error {
	runner := pipeline.NewRunner(opts.Logger)

	spinner := newSpinnerWithContext(ctx, "Rendering diagrams...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Documentation pass failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Processed %d diagrams across %d documents",
		result.Stats.DiagramCount, result.Stats.DocCount))

	printPassStats(result.Stats.DiagramCount, result.Stats.DocCount,
		result.Stats.RewrittenCount, result.Stats.ArtifactCount)
	if len(result.Rewritten) == 0 {
		printDetail("all documents already up to date")
	}
	for _, doc := range result.Rewritten {
		printFile(doc)
	}

	return nil
}

// passSummary is the machine-readable result printed by run --json.
type passSummary struct {
	Stats     pipeline.Stats               `json:"stats"`
	URLs      map[string]string            `json:"urls"`
	Rewritten []string                     `json:"rewritten"`
	Artifacts map[string]map[string]string `json:"artifacts,omitempty"`
}

// runPassJSON executes one pass and prints the summary as JSON on stdout,
// for scripting and CI pipelines.
func (c *CLI) runPassJSON(ctx context.Context, opts pipeline.Options) error {
	result, err := pipeline.NewRunner(opts.Logger).Execute(ctx, opts)
	if err != nil {
		return err
	}

	urls := make(map[string]string, len(result.Entries))
	for path, entry := range result.Entries {
		urls[path] = entry.URL
	}
	summary := passSummary{
		Stats:     result.Stats,
		URLs:      urls,
		Rewritten: result.Rewritten,
	}
	if len(result.Artifacts) > 0 {
		summary.Artifacts = make(map[string]map[string]string, len(result.Artifacts))
		for format, files := range result.Artifacts {
			summary.Artifacts[string(format)] = files
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
