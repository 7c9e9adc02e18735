package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/repository"
)

var _ repository.MeowRepository = (*DB)(nil)

// POPULATED READS:
// Every read joins the author so the response can embed {id, name}. It is a
// LEFT JOIN: a Meow whose Cat was deleted is still returned, with a nil Cat
// and its raw cat_id. A single statement also matters for ":memory:"
// databases, which run on one connection and cannot nest a second query
// inside an open result set.
const meowSelect = `
	SELECT m.id, m.cat_id, m.text, m.mood, m.created_at, m.updated_at, c.name
	FROM meows m
	LEFT JOIN cats c ON c.id = m.cat_id`

// CreateMeow inserts a new meow. It does not check that the Cat exists;
// callers do that before writing.
func (db *DB) CreateMeow(ctx context.Context, meow *model.Meow) error {
	meow.ID = xid.New().String()
	now := time.Now().UTC()
	meow.CreatedAt = now
	meow.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO meows (id, cat_id, text, mood, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meow.ID,
		meow.CatID,
		meow.Text,
		meow.Mood,
		meow.CreatedAt,
		meow.UpdatedAt,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: creating meow: %w", err)
	}

	return nil
}

func (db *DB) GetMeow(ctx context.Context, id string) (*model.Meow, error) {
	row := db.conn.QueryRowContext(ctx, meowSelect+` WHERE m.id = ?`, id)

	meow, err := scanMeow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Meow")
		}
		return nil, fmt.Errorf("sqlite: getting meow %s: %w", id, err)
	}

	return meow, nil
}

// ListMeows returns one page of meows matching filter.
func (db *DB) ListMeows(ctx context.Context, filter repository.MeowFilter, opts repository.ListOptions) ([]model.Meow, error) {
	where, args := meowWhere(filter)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		meowSelect+where+` `+orderBy("m", opts.Oldest)+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meows: %w", err)
	}
	return collectMeows(rows, opts.Limit)
}

func (db *DB) CountMeows(ctx context.Context, filter repository.MeowFilter) (int, error) {
	where, args := meowWhere(filter)
	return db.count(ctx, tableMeows+" m", where, args...)
}

// maxIDsPerQuery bounds the IN list of one statement, well under SQLite's
// limit on bound variables.
var maxIDsPerQuery = 500

// ListMeowsByCatIDs returns every meow authored by one of catIDs, newest
// first. An empty catIDs matches nothing and skips the query. Long id lists
// are queried in batches and merged.
func (db *DB) ListMeowsByCatIDs(ctx context.Context, catIDs []string) ([]model.Meow, error) {
	meows := []model.Meow{}

	for batch := range slices.Chunk(catIDs, maxIDsPerQuery) {
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		rows, err := db.conn.QueryContext(ctx,
			meowSelect+` WHERE m.cat_id IN (`+placeholders(len(batch))+`) `+orderBy("m", false),
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: listing meows by cat: %w", err)
		}
		found, err := collectMeows(rows, 0)
		if err != nil {
			return nil, err
		}
		meows = append(meows, found...)
	}

	if len(catIDs) > maxIDsPerQuery {
		slices.SortFunc(meows, newestFirst)
	}
	return meows, nil
}

// newestFirst orders like orderBy(alias, false).
func newestFirst(a, b model.Meow) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}

// UpdateMeow writes every mutable field of meow, including its author.
func (db *DB) UpdateMeow(ctx context.Context, meow *model.Meow) error {
	meow.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE meows SET cat_id = ?, text = ?, mood = ?, updated_at = ? WHERE id = ?`,
		meow.CatID,
		meow.Text,
		meow.Mood,
		meow.UpdatedAt,
		meow.ID,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: updating meow %s: %w", meow.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("Meow")
	}

	return nil
}

// DeleteMeow removes a meow. Its purrs are left untouched.
func (db *DB) DeleteMeow(ctx context.Context, id string) error {
	deleted, err := db.deleteByID(ctx, tableMeows, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Meow")
	}
	return nil
}

func (db *DB) MeowExists(ctx context.Context, id string) (bool, error) {
	return db.exists(ctx, tableMeows, id)
}

func meowWhere(filter repository.MeowFilter) (string, []any) {
	if filter.CatID == "" {
		return "", nil
	}
	return " WHERE m.cat_id = ?", []any{filter.CatID}
}

func collectMeows(rows *sql.Rows, capacity int) ([]model.Meow, error) {
	defer rows.Close()

	meows := make([]model.Meow, 0, capacity)
	for rows.Next() {
		meow, err := scanMeow(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning meow row: %w", err)
		}
		meows = append(meows, *meow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meows: %w", err)
	}

	return meows, nil
}

// scanMeow reads one meowSelect row. The trailing cat name is NULL when the
// author no longer exists.
func scanMeow(s scanner) (*model.Meow, error) {
	var (
		m       model.Meow
		catName sql.NullString
	)
	err := s.Scan(
		&m.ID,
		&m.CatID,
		&m.Text,
		&m.Mood,
		&m.CreatedAt,
		&m.UpdatedAt,
		&catName,
	)
	if err != nil {
		return nil, err
	}
	if catName.Valid {
		m.Cat = &model.CatRef{ID: m.CatID, Name: catName.String}
	}
	return &m, nil
}
