package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-join-path/internal/joins"
	"github.com/hurou927/db-join-path/internal/output"
)

var (
	filterMain   string
	filterFields []string
	filterFormat string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List the joins needed to filter a resource on fields of other resources",
	Long: `Given a main resource and qualified field names (resource.field), lists the
resources that must be joined to filter on those fields. Each filtered resource
must reference the main resource directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if filterMain == "" {
			return fmt.Errorf("--main is required")
		}
		w, err := output.NewWriter(cmd.OutOrStdout(), filterFormat)
		if err != nil {
			return err
		}

		loaded, err := loadSchemas(ctx, cfg.Source)
		if err != nil {
			return err
		}
		l, ok := firstDescribing(loaded, filterMain)
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "resource %q is not described by any schema\n", filterMain)
			return nil
		}

		p, err := joins.BuildJoinsForFilter(l.View, filterMain, filterFields)
		if err != nil {
			return fmt.Errorf("%s: %w", l.Name, err)
		}
		return w.WritePlan(p)
	},
}

func init() {
	filterCmd.Flags().StringVar(&filterMain, "main", "", "main resource")
	filterCmd.Flags().StringSliceVar(&filterFields, "field", nil, "qualified filter field resource.field (repeatable, comma separated)")
	filterCmd.Flags().StringVar(&filterFormat, "format", output.FormatText, "output format: text, json, yaml or sql")
	rootCmd.AddCommand(filterCmd)
}
