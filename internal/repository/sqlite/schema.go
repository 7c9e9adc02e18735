package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// STORE-LEVEL SCHEMA CONSTRAINTS:
// Each collection carries a small set of rules that the database itself
// enforces, whichever code path performs the write (the API, the seed command,
// a manual sqlite3 session). They overlap with the application-layer rules in
// the validation package but are written independently.
//
// A rule is installed two ways:
//   - as validation triggers (BEFORE INSERT / BEFORE UPDATE ... RAISE(ABORT))
//     which can be (re)applied to an existing table at any time;
//   - as a named CHECK constraint, which SQLite only accepts in CREATE TABLE,
//     so it is attached when the table is first created.
//
// Both report the rule name in the error, which constraintError turns back
// into a ValidationFailed error.

const (
	tableCats  = "cats"
	tableMeows = "meows"
	tablePurrs = "purrs"
)

// idGlob matches the 20-character base32hex text form of an xid.
var idGlob = strings.Repeat("[0-9a-v]", 20)

type rule struct {
	name    string // constraint name, also used in trigger names and RAISE messages
	field   string // JSON field reported to callers
	check   string // SQL condition that must hold; %[1]s is the column prefix ("" or "NEW.")
	message string
}

type collection struct {
	table   string
	entity  string
	columns string
	rules   []rule
}

// collections is installed in order: cats, meows, purrs.
var collections = []collection{
	{
		table:  tableCats,
		entity: "Cat",
		columns: `
			id         TEXT PRIMARY KEY,
			name       TEXT,
			breed      TEXT NOT NULL DEFAULT 'Unknown',
			age        REAL NOT NULL DEFAULT 0,
			color      TEXT NOT NULL DEFAULT 'Unknown',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL`,
		rules: []rule{
			{
				name:    "cat_name_required",
				field:   "name",
				check:   "coalesce(length(trim(%[1]sname)), 0) > 0",
				message: "Cat name is required and must be non-empty",
			},
		},
	},
	{
		table:  tableMeows,
		entity: "Meow",
		columns: `
			id         TEXT PRIMARY KEY,
			cat_id     TEXT,
			text       TEXT,
			mood       TEXT NOT NULL DEFAULT 'happy',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL`,
		rules: []rule{
			{
				name:    "meow_cat_id_required",
				field:   "catId",
				check:   "coalesce(%[1]scat_id GLOB '" + idGlob + "', 0)",
				message: "catId is required and must be an identifier",
			},
			{
				name:    "meow_text_required",
				field:   "text",
				check:   "coalesce(length(trim(%[1]stext)), 0) > 0",
				message: "Meow text is required and must be non-empty",
			},
		},
	},
	{
		table:  tablePurrs,
		entity: "Purr",
		columns: `
			id               TEXT PRIMARY KEY,
			meow_id          TEXT,
			intensity        INTEGER NOT NULL DEFAULT 5,
			duration_seconds REAL NOT NULL DEFAULT 10,
			created_at       DATETIME NOT NULL,
			updated_at       DATETIME NOT NULL`,
		rules: []rule{
			{
				name:    "purr_meow_id_required",
				field:   "meowId",
				check:   "coalesce(%[1]smeow_id GLOB '" + idGlob + "', 0)",
				message: "meowId is required and must be an identifier",
			},
		},
	},
}

// ConstraintResult reports what InstallConstraints did for one collection.
type ConstraintResult struct {
	Collection string
	Created    bool // the collection did not exist and was created with its constraints
}

// InstallConstraints ensures every collection has its schema constraints.
//
// For each collection, sequentially, it first applies the validation triggers
// to the existing table. If the table does not exist yet (fresh database), it
// creates the table with the CHECK constraints attached and applies the
// triggers again. Any other failure is returned and must abort startup.
func (db *DB) InstallConstraints(ctx context.Context) ([]ConstraintResult, error) {
	results := make([]ConstraintResult, 0, len(collections))

	for _, c := range collections {
		err := db.applyConstraints(ctx, c)
		created := false

		if err != nil && isNoSuchTable(err) {
			if err = db.createCollection(ctx, c); err == nil {
				created = true
				err = db.applyConstraints(ctx, c)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("sqlite: installing %s constraints: %w", c.table, err)
		}

		results = append(results, ConstraintResult{Collection: c.table, Created: created})
	}

	return results, nil
}

// applyConstraints replaces the collection's validation triggers in one
// transaction. It fails with "no such table" when the collection is missing.
func (db *DB) applyConstraints(ctx context.Context, c collection) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range c.rules {
		for _, event := range []string{"INSERT", "UPDATE"} {
			trigger := fmt.Sprintf("%s_%s_%s", c.table, r.name, strings.ToLower(event))

			if _, err := tx.ExecContext(ctx, "DROP TRIGGER IF EXISTS "+trigger); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf(
				`CREATE TRIGGER %s BEFORE %s ON %s
				 WHEN NOT (%s)
				 BEGIN SELECT RAISE(ABORT, '%s'); END`,
				trigger, event, c.table, fmt.Sprintf(r.check, "NEW."), r.name,
			))
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// createCollection creates the table with its CHECK constraints attached.
// IF NOT EXISTS keeps a concurrent creator from turning into a fatal error.
func (db *DB) createCollection(ctx context.Context, c collection) error {
	defs := []string{strings.TrimSpace(c.columns)}
	for _, r := range c.rules {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", r.name, fmt.Sprintf(r.check, "")))
	}

	_, err := db.conn.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n%s\n)", c.table, strings.Join(defs, ",\n"),
	))
	return err
}

func isNoSuchTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}
