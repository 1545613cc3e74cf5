package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/lesson"
)

// dialect holds the SQL differences between the database/sql backends.
type dialect struct {
	name        string
	placeholder func(i int) string
	schema      string
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
	schema: `CREATE TABLE IF NOT EXISTS contents (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		body        TEXT NOT NULL,
		subject_tag TEXT NOT NULL,
		level_tag   TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var sqliteDialect = dialect{
	name:        "sqlite3",
	placeholder: func(int) string { return "?" },
	schema: `CREATE TABLE IF NOT EXISTS contents (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		body        TEXT NOT NULL,
		subject_tag TEXT NOT NULL,
		level_tag   TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// SQLStore writes lessons through database/sql. It backs both the postgres
// and the sqlite backends.
type SQLStore struct {
	db        *sql.DB
	dialect   dialect
	insertSQL string
}

var _ ContentStore = (*SQLStore)(nil)

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	cols := []string{"title", "body", "subject_tag", "level_tag"}
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = d.placeholder(i + 1)
	}
	return &SQLStore{
		db:      db,
		dialect: d,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			ContentsTable, strings.Join(cols, ", "), strings.Join(ph, ", ")),
	}
}

// EnsureSchema creates the contents table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("create %s table: %w", ContentsTable, err)
	}
	return nil
}

// Insert writes rec as a new row.
func (s *SQLStore) Insert(ctx context.Context, rec lesson.Record) error {
	res, err := s.db.ExecContext(ctx, s.insertSQL, rec.Title, rec.Body, rec.SubjectTag, rec.LevelTag)
	if err != nil {
		log.Error().Err(err).Str("driver", s.dialect.name).Str("title", rec.Title).Msg("Insert into contents failed")
		return fmt.Errorf("insert into %s: %w", ContentsTable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("insert into %s: %d rows affected", ContentsTable, n)
	}
	log.Debug().Str("driver", s.dialect.name).Str("title", rec.Title).Msg("Lesson row inserted")
	return nil
}

// DB exposes the underlying handle.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
