// Package history implements a push-audit log: every value pushed into a
// source, with a timestamp, kept in a small SQLite database for
// after-the-fact inspection. This is intentionally separate from
// snapshot's in-memory graph export: history records the sequence of
// external inputs, not the graph's derived state.
//
// Grounded on server/dao/sqlite's connection-and-schema-migration shape
// (NewUsersDBConn: sql.Open("sqlite", file) against the pure-Go
// modernc.org/sqlite driver, followed by a CREATE TABLE IF NOT EXISTS),
// reduced to the one table this package needs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded push.
type Entry struct {
	ID        int64     `json:"id"`
	Time      time.Time `json:"time"`
	NodeName  string    `json:"node_name"`
	ValueRepr string    `json:"value_repr"`
}

// Log is a push-audit log backed by a SQLite file.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pushes (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		pushed_at INTEGER NOT NULL,
		node_name TEXT NOT NULL,
		value_repr TEXT NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Record appends one push to the log.
func (l *Log) Record(ctx context.Context, nodeName, valueRepr string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO pushes (pushed_at, node_name, value_repr) VALUES (?, ?, ?)`,
		time.Now().Unix(), nodeName, valueRepr)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n pushes to nodeName, newest first.
func (l *Log) Recent(ctx context.Context, nodeName string, n int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, pushed_at, node_name, value_repr FROM pushes
		 WHERE node_name = ? ORDER BY id DESC LIMIT ?`, nodeName, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var unixTime int64
		if err := rows.Scan(&e.ID, &unixTime, &e.NodeName, &e.ValueRepr); err != nil {
			return nil, fmt.Errorf("history: recent: scan: %w", err)
		}
		e.Time = time.Unix(unixTime, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
