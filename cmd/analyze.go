package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-join-path/internal/graph"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the FK graph of the schema and output its structure",
	Long:  `Loads the schema, builds its FK graph, and outputs it in the specified format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		loaded, err := loadSchemas(ctx, cfg.Source)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, l := range loaded {
			if len(loaded) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "# %s\n", l.Name)
			}
			switch analyzeFormat {
			case "mermaid":
				err = graph.WriteMermaid(out, l.View)
			case "text":
				err = graph.WriteText(out, l.View)
			default:
				return fmt.Errorf("unknown format: %s (supported: mermaid, text)", analyzeFormat)
			}
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "mermaid", "output format: mermaid or text")
	rootCmd.AddCommand(analyzeCmd)
}
