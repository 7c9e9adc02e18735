package sqlite

import (
	"errors"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/whiskerbook/internal/apperror"
)

// constraintError translates a store-level constraint rejection into the same
// ValidationFailed error the application layer produces, so callers cannot
// tell which layer caught the problem. It returns nil for any other error.
func constraintError(err error) error {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return nil
	}

	msg := se.Error()
	for _, c := range collections {
		for _, r := range c.rules {
			if strings.Contains(msg, r.name) {
				return apperror.ValidationFields(c.entity, map[string]string{r.field: r.message})
			}
		}
	}

	return apperror.ValidationFailed("", "Document failed validation")
}
