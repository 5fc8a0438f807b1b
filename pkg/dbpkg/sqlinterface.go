// Package dbpkg provides helpers to make db initialization, migration and testing easier.
package dbpkg

import (
	"context"
	"database/sql"
)

// SQLInterface provides necessary db methods to perform queries.
//
// Both *sql.DB and *sql.Tx satisfy it, so a repository works the same way inside and outside
// of a database transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}
