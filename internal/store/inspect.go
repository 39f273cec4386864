package store

import (
	"context"
	"database/sql"
)

// Inspection is the migration state of a database and, once its schema is
// current, what it holds.
type Inspection struct {
	Migrations *MigrationStatus `json:"migrations"`
	Contents   *StoreInfo       `json:"contents,omitempty"`
}

// Inspect reads the database at path without applying migrations.
func Inspect(ctx context.Context, path string) (*Inspection, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return inspect(ctx, db)
}

// Inspect reports the open store's migration state and contents.
func (s *Store) Inspect(ctx context.Context) (*Inspection, error) {
	return inspect(ctx, s.db)
}

func inspect(ctx context.Context, db *sql.DB) (*Inspection, error) {
	plan, err := MigrationPlan(db)
	if err != nil {
		return nil, err
	}
	out := &Inspection{Migrations: plan}
	if plan.CurrentVersion == 0 || len(plan.Pending) > 0 {
		return out, nil
	}
	info, err := readStoreInfo(ctx, db)
	if err != nil {
		return nil, err
	}
	out.Contents = info
	return out, nil
}
