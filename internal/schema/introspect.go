package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Introspect queries PostgreSQL catalogs and returns all tables with their
// columns and single-column FKs. Tables are named by their bare name when a
// single schema is inspected and by "schema.table" otherwise.
func Introspect(ctx context.Context, pool *pgxpool.Pool, schemas []string, logger *zap.Logger) (*Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	qualify := len(schemas) > 1

	s, index, err := queryTablesAndColumns(ctx, pool, schemas, qualify)
	if err != nil {
		return nil, fmt.Errorf("querying tables and columns: %w", err)
	}

	if err := queryForeignKeys(ctx, pool, schemas, qualify, s, index, logger); err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}

	return s, nil
}

func resourceName(schemaName, tableName string, qualify bool) string {
	if qualify {
		return schemaName + "." + tableName
	}
	return tableName
}

func queryTablesAndColumns(ctx context.Context, pool *pgxpool.Pool, schemas []string, qualify bool) (*Schema, map[string]int, error) {
	query := `
		SELECT
			n.nspname AS schema_name,
			c.relname AS table_name,
			a.attname AS column_name,
			t.typname AS data_type
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_attribute a ON a.attrelid = c.oid
		JOIN pg_type t ON t.oid = a.atttypid
		WHERE c.relkind = 'r'
			AND a.attnum > 0
			AND NOT a.attisdropped
			AND n.nspname = ANY($1)
		ORDER BY n.nspname, c.relname, a.attnum
	`

	rows, err := pool.Query(ctx, query, schemas)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	s := &Schema{}
	index := make(map[string]int)
	for rows.Next() {
		var schemaName, tableName, colName, dataType string
		if err := rows.Scan(&schemaName, &tableName, &colName, &dataType); err != nil {
			return nil, nil, err
		}

		name := resourceName(schemaName, tableName, qualify)
		idx, ok := index[name]
		if !ok {
			idx = len(s.Resources)
			index[name] = idx
			s.Resources = append(s.Resources, Resource{Name: name})
		}
		s.Resources[idx].Fields = append(s.Resources[idx].Fields, Field{
			Name:     colName,
			DataType: dataType,
		})
	}

	return s, index, rows.Err()
}

func queryForeignKeys(ctx context.Context, pool *pgxpool.Pool, schemas []string, qualify bool, s *Schema, index map[string]int, logger *zap.Logger) error {
	query := `
		SELECT
			con.conname AS fk_name,
			cn.nspname AS child_schema,
			cc.relname AS child_table,
			ca.attname AS child_column,
			pn.nspname AS parent_schema,
			pc.relname AS parent_table,
			pa.attname AS parent_column
		FROM pg_constraint con
		JOIN pg_class cc ON cc.oid = con.conrelid
		JOIN pg_namespace cn ON cn.oid = cc.relnamespace
		JOIN pg_class pc ON pc.oid = con.confrelid
		JOIN pg_namespace pn ON pn.oid = pc.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS u(child_attnum, parent_attnum, ord)
		JOIN pg_attribute ca ON ca.attrelid = cc.oid AND ca.attnum = u.child_attnum
		JOIN pg_attribute pa ON pa.attrelid = pc.oid AND pa.attnum = u.parent_attnum
		WHERE con.contype = 'f'
			AND cn.nspname = ANY($1)
		ORDER BY cn.nspname, cc.relname, con.conname, u.ord
	`

	rows, err := pool.Query(ctx, query, schemas)
	if err != nil {
		return err
	}
	defer rows.Close()

	// Collect FK columns grouped by constraint name
	type fkEntry struct {
		child string
		ref   ForeignKeyRef
	}

	fksByName := make(map[string][]fkEntry)
	var fkOrder []string

	for rows.Next() {
		var fkName, childSchema, childTable, childCol, parentSchema, parentTable, parentCol string
		if err := rows.Scan(&fkName, &childSchema, &childTable, &childCol,
			&parentSchema, &parentTable, &parentCol); err != nil {
			return err
		}
		child := resourceName(childSchema, childTable, qualify)
		key := child + "/" + fkName
		if _, exists := fksByName[key]; !exists {
			fkOrder = append(fkOrder, key)
		}
		fksByName[key] = append(fksByName[key], fkEntry{
			child: child,
			ref: ForeignKeyRef{
				LocalField:  childCol,
				RefResource: resourceName(parentSchema, parentTable, qualify),
				RefField:    parentCol,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, key := range fkOrder {
		entries := fksByName[key]
		if len(entries) > 1 {
			logger.Warn("skipping composite foreign key",
				zap.String("constraint", key),
				zap.Int("columns", len(entries)))
			continue
		}
		idx, ok := index[entries[0].child]
		if !ok {
			continue
		}
		s.Resources[idx].ForeignKeys = append(s.Resources[idx].ForeignKeys, entries[0].ref)
	}

	return nil
}
