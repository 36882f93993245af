package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hurou927/db-join-path/internal/joins"
	"github.com/hurou927/db-join-path/internal/output"
)

var (
	pathFrom     string
	pathTo       string
	pathRequired []string
	pathFormat   string
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Find the shortest join path between two resources",
	Long: `Finds the minimal chain of joins from --from to --to, following foreign keys in
either direction. Resources given with --require are attached to the path by a
single foreign key each. With several schema sources, each is searched and the
first one (in order) describing --from is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if pathFrom == "" || pathTo == "" {
			return fmt.Errorf("--from and --to are required")
		}
		w, err := output.NewWriter(cmd.OutOrStdout(), pathFormat)
		if err != nil {
			return err
		}

		loaded, err := loadSchemas(ctx, cfg.Source)
		if err != nil {
			return err
		}

		finder := joins.NewFinder(cfg.Search.MaxDepth, logger)
		plans := make([]*joins.Plan, len(loaded))
		failures := make([]error, len(loaded))

		// the first source describing --from decides the outcome
		var g errgroup.Group
		for i, l := range loaded {
			i, l := i, l
			g.Go(func() error {
				plans[i], failures[i] = finder.FindPathWithRequired(l.View, pathFrom, pathTo, pathRequired)
				return nil
			})
		}
		_ = g.Wait()

		for i, p := range plans {
			err := failures[i]
			if errors.Is(err, joins.ErrUnknownResource) {
				continue
			}
			if joins.IsNotFound(err) {
				logger.Info("no join path", zap.String("source", loaded[i].Name), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "no join path from %q to %q in %s\n", pathFrom, pathTo, loaded[i].Name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", loaded[i].Name, err)
			}
			logger.Debug("join path", zap.String("source", loaded[i].Name), zap.Int("joins", p.Len()))
			return w.WritePlan(p)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "resource %q is not described by any schema\n", pathFrom)
		return nil
	},
}

func init() {
	pathCmd.Flags().StringVar(&pathFrom, "from", "", "starting resource")
	pathCmd.Flags().StringVar(&pathTo, "to", "", "destination resource")
	pathCmd.Flags().StringSliceVar(&pathRequired, "require", nil, "additional resources the path must include (repeatable, comma separated)")
	pathCmd.Flags().StringVar(&pathFormat, "format", output.FormatText, "output format: text, json, yaml or sql")
	rootCmd.AddCommand(pathCmd)
}
