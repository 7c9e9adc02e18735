package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/repository"
)

var _ repository.PurrRepository = (*DB)(nil)

// errMeowMissing is returned by writes whose meow_id names no Meow.
var errMeowMissing = apperror.InvalidReference("meowId", "meowId must reference an existing Meow")

// purrSelect populates the Meow, and that Meow's Cat, in the same statement.
const purrSelect = `
	SELECT p.id, p.meow_id, p.intensity, p.duration_seconds, p.created_at, p.updated_at,
	       m.id, m.cat_id, m.text, m.mood, m.created_at, m.updated_at, c.name
	FROM purrs p
	LEFT JOIN meows m ON m.id = p.meow_id
	LEFT JOIN cats c ON c.id = m.cat_id`

// CreatePurr inserts a new purr.
//
// REFERENCE CHECK IN THE MODEL LAYER:
// The insert selects its values only when the Meow exists, so the check and
// the write are one statement. Every caller gets it, the seed command
// included, and no Purr can be written against a missing Meow.
func (db *DB) CreatePurr(ctx context.Context, purr *model.Purr) error {
	purr.ID = xid.New().String()
	now := time.Now().UTC()
	purr.CreatedAt = now
	purr.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO purrs (id, meow_id, intensity, duration_seconds, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM meows WHERE id = ?)`,
		purr.ID,
		purr.MeowID,
		purr.Intensity,
		purr.DurationSeconds,
		purr.CreatedAt,
		purr.UpdatedAt,
		purr.MeowID,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: creating purr: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return errMeowMissing
	}

	return nil
}

func (db *DB) GetPurr(ctx context.Context, id string) (*model.Purr, error) {
	row := db.conn.QueryRowContext(ctx, purrSelect+` WHERE p.id = ?`, id)

	purr, err := scanPurr(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Purr")
		}
		return nil, fmt.Errorf("sqlite: getting purr %s: %w", id, err)
	}

	return purr, nil
}

func (db *DB) ListPurrs(ctx context.Context, filter repository.PurrFilter, opts repository.ListOptions) ([]model.Purr, error) {
	where, args := purrWhere(filter)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		purrSelect+where+` `+orderBy("p", opts.Oldest)+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing purrs: %w", err)
	}
	return collectPurrs(rows, opts.Limit)
}

func (db *DB) CountPurrs(ctx context.Context, filter repository.PurrFilter) (int, error) {
	where, args := purrWhere(filter)
	return db.count(ctx, tablePurrs+" p", where, args...)
}

// ListPurrsByMeow returns every purr of one meow, newest first.
func (db *DB) ListPurrsByMeow(ctx context.Context, meowID string) ([]model.Purr, error) {
	rows, err := db.conn.QueryContext(ctx,
		purrSelect+` WHERE p.meow_id = ? `+orderBy("p", false),
		meowID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing purrs of meow %s: %w", meowID, err)
	}
	return collectPurrs(rows, 0)
}

// UpdatePurr writes every mutable field of purr. Like CreatePurr, the write
// only happens when purr.MeowID names an existing Meow.
func (db *DB) UpdatePurr(ctx context.Context, purr *model.Purr) error {
	purr.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE purrs
		 SET meow_id = ?, intensity = ?, duration_seconds = ?, updated_at = ?
		 WHERE id = ? AND EXISTS (SELECT 1 FROM meows WHERE id = ?)`,
		purr.MeowID,
		purr.Intensity,
		purr.DurationSeconds,
		purr.UpdatedAt,
		purr.ID,
		purr.MeowID,
	)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("sqlite: updating purr %s: %w", purr.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the purr or its meow is missing.
	found, err := db.exists(ctx, tablePurrs, purr.ID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Purr")
	}
	return errMeowMissing
}

func (db *DB) DeletePurr(ctx context.Context, id string) error {
	deleted, err := db.deleteByID(ctx, tablePurrs, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Purr")
	}
	return nil
}

func purrWhere(filter repository.PurrFilter) (string, []any) {
	if filter.MeowID == "" {
		return "", nil
	}
	return " WHERE p.meow_id = ?", []any{filter.MeowID}
}

func collectPurrs(rows *sql.Rows, capacity int) ([]model.Purr, error) {
	defer rows.Close()

	purrs := make([]model.Purr, 0, capacity)
	for rows.Next() {
		purr, err := scanPurr(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning purr row: %w", err)
		}
		purrs = append(purrs, *purr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purrs: %w", err)
	}

	return purrs, nil
}

// scanPurr reads one purrSelect row. Every meow column is NULL when the
// meow was deleted; the cat name is NULL when the meow's author was.
func scanPurr(s scanner) (*model.Purr, error) {
	var (
		p model.Purr

		meowID, catID, text, mood sql.NullString
		meowCreated, meowUpdated  sql.NullTime
		catName                   sql.NullString
	)
	err := s.Scan(
		&p.ID,
		&p.MeowID,
		&p.Intensity,
		&p.DurationSeconds,
		&p.CreatedAt,
		&p.UpdatedAt,
		&meowID,
		&catID,
		&text,
		&mood,
		&meowCreated,
		&meowUpdated,
		&catName,
	)
	if err != nil {
		return nil, err
	}

	if meowID.Valid {
		p.Meow = &model.Meow{
			ID:        meowID.String,
			CatID:     catID.String,
			Text:      text.String,
			Mood:      mood.String,
			CreatedAt: meowCreated.Time,
			UpdatedAt: meowUpdated.Time,
		}
		if catName.Valid {
			p.Meow.Cat = &model.CatRef{ID: catID.String, Name: catName.String}
		}
	}

	return &p, nil
}
