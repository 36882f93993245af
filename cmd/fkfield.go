package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-join-path/internal/joins"
	"github.com/hurou927/db-join-path/internal/output"
)

var (
	fkMain   string
	fkField  string
	fkLinked string
	fkFormat string
)

var fkFieldCmd = &cobra.Command{
	Use:   "fk-field",
	Short: "Find the field of a linked resource that references a main field",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if fkMain == "" || fkField == "" || fkLinked == "" {
			return fmt.Errorf("--main, --field and --linked are required")
		}
		if fkFormat == output.FormatSQL {
			return fmt.Errorf("unknown format: %s (supported: text, json, yaml)", fkFormat)
		}
		w, err := output.NewWriter(cmd.OutOrStdout(), fkFormat)
		if err != nil {
			return err
		}

		loaded, err := loadSchemas(ctx, cfg.Source)
		if err != nil {
			return err
		}
		l, ok := firstDescribing(loaded, fkLinked)
		if !ok {
			l = loaded[0]
		}

		name, err := joins.FindLocalFKField(l.View, fkMain, fkField, fkLinked)
		if joins.IsNotFound(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", l.Name, err)
		}
		return w.WriteField(name)
	},
}

func init() {
	fkFieldCmd.Flags().StringVar(&fkMain, "main", "", "main resource")
	fkFieldCmd.Flags().StringVar(&fkField, "field", "", "field of the main resource")
	fkFieldCmd.Flags().StringVar(&fkLinked, "linked", "", "resource holding the foreign key")
	fkFieldCmd.Flags().StringVar(&fkFormat, "format", output.FormatText, "output format: text, json or yaml")
	rootCmd.AddCommand(fkFieldCmd)
}
