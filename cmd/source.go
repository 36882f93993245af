package cmd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hurou927/db-join-path/internal/config"
	"github.com/hurou927/db-join-path/internal/db"
	"github.com/hurou927/db-join-path/internal/graph"
	"github.com/hurou927/db-join-path/internal/schema"
)

// loadedSchema is one schema source ready for querying.
type loadedSchema struct {
	Name string
	View *graph.View
}

// loadSchemas reads every configured source. Schema files are parsed
// concurrently; results keep the order of the configuration.
func loadSchemas(ctx context.Context, src config.Source) ([]loadedSchema, error) {
	switch {
	case len(src.Files) > 0:
		loaded := make([]loadedSchema, len(src.Files))
		g, _ := errgroup.WithContext(ctx)
		for i, path := range src.Files {
			i, path := i, path
			g.Go(func() error {
				s, err := schema.LoadFile(path)
				if err != nil {
					return err
				}
				loaded[i] = loadedSchema{Name: path, View: graph.Build(s)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return loaded, nil

	case src.SQLite != "":
		conn, err := db.OpenSQLite(ctx, src.SQLite)
		if err != nil {
			return nil, err
		}
		defer conn.Close()

		s, err := schema.IntrospectSQLite(ctx, conn, logger)
		if err != nil {
			return nil, fmt.Errorf("introspecting schema: %w", err)
		}
		return []loadedSchema{{Name: src.SQLite, View: graph.Build(s)}}, nil

	case src.Postgres != nil:
		pool, err := db.NewPool(ctx, src.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		s, err := schema.Introspect(ctx, pool, src.Schemas, logger)
		if err != nil {
			return nil, fmt.Errorf("introspecting schema: %w", err)
		}
		return []loadedSchema{{Name: src.Postgres.Database, View: graph.Build(s)}}, nil
	}

	return nil, fmt.Errorf("no schema source configured")
}

// firstDescribing returns the first loaded schema that describes name.
func firstDescribing(loaded []loadedSchema, name string) (loadedSchema, bool) {
	for _, l := range loaded {
		if _, ok := l.View.Resource(name); ok {
			return l, true
		}
	}
	return loadedSchema{}, false
}
