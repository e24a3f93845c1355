// Package db selects and wires the persistence backend for the server:
// PostgreSQL when a DSN is configured, an in-memory registry otherwise.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/zkpauth/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Close() error
}
