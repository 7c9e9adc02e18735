package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/repository"
)

var _ repository.CatRepository = (*DB)(nil)

const catColumns = `id, name, breed, age, color, created_at, updated_at`

// CreateCat inserts a new cat, assigning its ID and timestamps in place.
//
// The row still passes through the table's own constraints; a rejection there
// comes back as apperror.ErrValidation, like an application-layer failure.
func (db *DB) CreateCat(ctx context.Context, cat *model.Cat) error {
	cat.ID = xid.New().String()
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cats (`+catColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cat.ID,
		cat.Name,
		cat.Breed,
		cat.Age,
		cat.Color,
		cat.CreatedAt,
		cat.UpdatedAt,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: creating cat: %w", err)
	}

	return nil
}

// GetCat retrieves a single cat by its ID.
func (db *DB) GetCat(ctx context.Context, id string) (*model.Cat, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+catColumns+` FROM cats WHERE id = ?`, id,
	)

	cat, err := scanCat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Cat")
		}
		return nil, fmt.Errorf("sqlite: getting cat %s: %w", id, err)
	}

	return cat, nil
}

// ListCats returns one page of cats ordered by creation time.
func (db *DB) ListCats(ctx context.Context, opts repository.ListOptions) ([]model.Cat, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+catColumns+` FROM cats `+orderBy("", opts.Oldest)+` LIMIT ? OFFSET ?`,
		opts.Limit,
		opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cats: %w", err)
	}
	defer rows.Close()

	cats := make([]model.Cat, 0, opts.Limit)
	for rows.Next() {
		cat, err := scanCat(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning cat row: %w", err)
		}
		cats = append(cats, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cats: %w", err)
	}

	return cats, nil
}

func (db *DB) CountCats(ctx context.Context) (int, error) {
	return db.count(ctx, tableCats, "")
}

// UpdateCat writes every mutable field of cat. ID and CreatedAt never change.
func (db *DB) UpdateCat(ctx context.Context, cat *model.Cat) error {
	cat.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE cats
		 SET name = ?, breed = ?, age = ?, color = ?, updated_at = ?
		 WHERE id = ?`,
		cat.Name,
		cat.Breed,
		cat.Age,
		cat.Color,
		cat.UpdatedAt,
		cat.ID,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: updating cat %s: %w", cat.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("Cat")
	}

	return nil
}

// DeleteCat removes a cat. Meows that reference it are left untouched.
func (db *DB) DeleteCat(ctx context.Context, id string) error {
	deleted, err := db.deleteByID(ctx, tableCats, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Cat")
	}
	return nil
}

func (db *DB) CatExists(ctx context.Context, id string) (bool, error) {
	return db.exists(ctx, tableCats, id)
}

// FindCatIDsByName returns the ids of cats whose name contains pattern.
//
// LIKE is case-insensitive for ASCII letters in SQLite. The pattern is
// escaped so "%" and "_" in a search only match themselves.
func (db *DB) FindCatIDsByName(ctx context.Context, pattern string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM cats WHERE name LIKE ? ESCAPE '\'`,
		"%"+escapeLike(pattern)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching cats by name: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cat id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cat ids: %w", err)
	}

	return ids, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCat(s scanner) (*model.Cat, error) {
	var c model.Cat
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Breed,
		&c.Age,
		&c.Color,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
