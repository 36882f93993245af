package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// OpenSQLite opens a SQLite database read-only and checks it is reachable.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", sqliteURI(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}

	return conn, nil
}

// sqliteURI builds a read-only file: URI; reserved characters in path are
// percent-encoded.
func sqliteURI(path string) string {
	u := url.URL{Scheme: "file", Path: path, OmitHost: true, RawQuery: "mode=ro"}
	return u.String()
}
