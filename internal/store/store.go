// Package store persists published lessons. Every backend writes one row per
// publish cycle into the "contents" table (or its equivalent) and never
// updates or deletes.
//
// Backends:
//   - supabase: PostgREST insert over HTTPS (the default)
//   - postgres: direct connection through lib/pq
//   - sqlite:   local file through go-sqlite3
//   - dynamodb: single-table item per lesson
//   - dataapi:  Aurora Serverless through the RDS Data API
package store

import (
	"context"
	"fmt"

	"github.com/fpang/edu-studio/internal/lesson"
)

// ContentsTable is the table lessons are written to.
const ContentsTable = "contents"

// Backend names a ContentStore implementation.
type Backend string

const (
	BackendSupabase Backend = "supabase"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendDynamoDB Backend = "dynamodb"
	BackendDataAPI  Backend = "dataapi"
)

// Backends lists every supported backend, default first.
var Backends = []Backend{BackendSupabase, BackendPostgres, BackendSQLite, BackendDynamoDB, BackendDataAPI}

// ParseBackend validates a backend name. Empty selects supabase.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return BackendSupabase, nil
	}
	for _, b := range Backends {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown content store %q (want one of %v)", name, Backends)
}

// ContentStore writes lesson records. Implementations are safe for
// concurrent use.
type ContentStore interface {
	// Insert writes one record. It never updates an existing row.
	Insert(ctx context.Context, rec lesson.Record) error
	// Close releases connections held by the store.
	Close() error
}
