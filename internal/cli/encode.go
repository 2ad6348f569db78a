package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/plantuml"
	"github.com/pumldock/pumldock/pkg/resolve"
)

// encodeCommand creates the encode command for inspecting a single diagram.
func (c *CLI) encodeCommand() *cobra.Command {
	var (
		server string
		expand bool
	)

	cmd := &cobra.Command{
		Use:   "encode <diagram>",
		Short: "Print the encoded form and render URLs for one diagram",
		Long: `Encode a single diagram file without touching any documentation.

The diagram text is deflate-compressed into the PlantUML URL encoding
and the resulting render URLs are printed. !include directives are
spliced in first so the URL covers the full diagram; cross-diagram
[[references]] are left untouched because they resolve only during a
full pass.

Examples:
  pumldock encode diagrams/arch.puml
  pumldock encode --expand=false snippet.puml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			path := args[0]
			raw, err := os.ReadFile(path)
			if err != nil {
				return perrors.Wrap(perrors.ErrCodeFileNotFound, err, "read diagram %s", path)
			}
			text := string(raw)
			if expand {
				text = resolve.ExpandIncludes(text, filepath.Dir(path))
			}

			encoded, err := plantuml.Encode(text)
			if err != nil {
				return err
			}
			logger.Debug("encoded diagram", "path", path, "bytes", len(text), "encoded", len(encoded))

			client := plantuml.NewClient(server, "")
			printNewline()
			fmt.Println(StyleTitle.Render("Diagram encoding"))
			printNewline()
			printKeyValue("diagram", path)
			printKeyValue("encoded", encoded)
			printKeyValue("length", StyleNumber.Render(fmt.Sprintf("%d", len(encoded))))
			printKeyValue("svg", StyleLink.Render(client.RenderURL(encoded, plantuml.FormatSVG)))
			printKeyValue("png", StyleLink.Render(client.RenderURL(encoded, plantuml.FormatPNG)))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "PlantUML render server (default: "+plantuml.DefaultServer+")")
	cmd.Flags().BoolVar(&expand, "expand", true, "splice !include directives before encoding")
	return cmd
}
