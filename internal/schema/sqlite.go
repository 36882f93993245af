package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// IntrospectSQLite reads tables, columns and single-column FKs from a SQLite
// database through its PRAGMA interface.
func IntrospectSQLite(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	names, err := sqliteTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	s := &Schema{Resources: make([]Resource, 0, len(names))}
	pks := make(map[string][]string, len(names))
	for _, name := range names {
		res, pk, err := sqliteColumns(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("reading columns of %s: %w", name, err)
		}
		s.Resources = append(s.Resources, res)
		pks[name] = pk
	}

	for i := range s.Resources {
		fks, err := sqliteForeignKeys(ctx, db, s.Resources[i].Name, pks, logger)
		if err != nil {
			return nil, fmt.Errorf("reading foreign keys of %s: %w", s.Resources[i].Name, err)
		}
		s.Resources[i].ForeignKeys = fks
	}

	return s, nil
}

func sqliteTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// sqliteColumns returns the resource for table along with its primary key
// columns in key order.
func sqliteColumns(ctx context.Context, db *sql.DB, table string) (Resource, []string, error) {
	res := Resource{Name: table}

	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return res, nil, err
	}
	defer rows.Close()

	pkByPos := make(map[int]string)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return res, nil, err
		}
		res.Fields = append(res.Fields, Field{Name: name, DataType: strings.ToLower(colType)})
		if pk > 0 {
			pkByPos[pk] = name
		}
	}
	if err := rows.Err(); err != nil {
		return res, nil, err
	}

	pk := make([]string, 0, len(pkByPos))
	for i := 1; i <= len(pkByPos); i++ {
		pk = append(pk, pkByPos[i])
	}
	return res, pk, nil
}

func sqliteForeignKeys(ctx context.Context, db *sql.DB, table string, pks map[string][]string, logger *zap.Logger) ([]ForeignKeyRef, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type fkColumn struct {
		parent string
		from   string
		to     sql.NullString
	}
	byID := make(map[int][]fkColumn)
	var order []int

	for rows.Next() {
		var (
			id, seq                      int
			parent, from                 string
			to                           sql.NullString
			onUpdate, onDelete, matchArg string
		)
		if err := rows.Scan(&id, &seq, &parent, &from, &to, &onUpdate, &onDelete, &matchArg); err != nil {
			return nil, err
		}
		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = append(byID[id], fkColumn{parent: parent, from: from, to: to})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// PRAGMA foreign_key_list lists constraints in reverse declaration order
	var fks []ForeignKeyRef
	for i := len(order) - 1; i >= 0; i-- {
		cols := byID[order[i]]
		if len(cols) > 1 {
			logger.Warn("skipping composite foreign key",
				zap.String("table", table),
				zap.String("references", cols[0].parent),
				zap.Int("columns", len(cols)))
			continue
		}
		c := cols[0]
		refField := c.to.String
		if !c.to.Valid || refField == "" {
			// REFERENCES parent without a column list targets the parent's PK
			pk := pks[c.parent]
			if len(pk) != 1 {
				logger.Warn("skipping foreign key without a single-column target",
					zap.String("table", table),
					zap.String("references", c.parent))
				continue
			}
			refField = pk[0]
		}
		fks = append(fks, ForeignKeyRef{
			LocalField:  c.from,
			RefResource: c.parent,
			RefField:    refField,
		})
	}

	return fks, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
