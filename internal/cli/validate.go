package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "validate <mixture-file|url>",
		Short: "Parse and validate a mixture descriptor",
		Long: `Parse a mixture descriptor, validate it, and print a component summary.

The descriptor can be a local TOML, YAML, or JSON file or an http(s) URL.

Examples:
  spherepack validate mixtures/glass.toml
  spherepack validate https://example.com/mixtures/glass.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.validateMixture(cmd.Context(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the mixture cache")

	return cmd
}

// validateMixture parses and validates source, then prints aggregate
// mixture figures and a per-component table.
func (c *CLI) validateMixture(ctx context.Context, source string, noCache bool) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Validating %s", source)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	mix, hash, err := runner.Parse(ctx, pipeline.Options{MixturePath: source, NoCache: noCache})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Parsed %d components", len(mix)))

	printSuccess("%s is a valid mixture", StyleHighlight.Render(source))
	printKeyValue("components", fmt.Sprintf("%d", len(mix)))
	printKeyValue("total weight", fmt.Sprintf("%d", mix.TotalWeight()))
	printKeyValue("mean radius", fmt.Sprintf("%.4g", mix.MeanRadius()))
	printKeyValue("max radius", fmt.Sprintf("%.4g", mix.MaxRadius()))
	printKeyValue("document hash", shortHash(hash))
	printNewline()
	fmt.Println(componentTable(mix))
	printNewline()
	printNextStep("Pack it", "spherepack run "+source)
	return nil
}

// shortHash abbreviates a hex content hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// componentTable renders the mixture components with their share of the
// total proportion weight.
func componentTable(mix mixture.Mixture) *table.Table {
	total := mix.TotalWeight()

	rows := make([][]string, 0, len(mix))
	for _, comp := range mix {
		name := comp.Name
		if name == "" {
			name = "(unnamed)"
		}
		share := 0.0
		if total > 0 {
			share = float64(comp.Proportion) / float64(total) * 100
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.4g", comp.Radius),
			fmt.Sprintf("%d", comp.Proportion),
			fmt.Sprintf("%.1f%%", share),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Component", "Radius", "Proportion", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})
}
