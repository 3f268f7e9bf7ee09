package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateKey      = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ViolationKind string

const (
	UniqueViolation     ViolationKind = "unique"
	ForeignKeyViolation ViolationKind = "foreign_key"
	NotNullViolation    ViolationKind = "not_null"
)

// postgres error codes, class 23 (integrity constraint violation)
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// Violation describes a broken database constraint. Constraint holds the
// constraint name on postgres and the offending column list on sqlite.
type Violation struct {
	Kind       ViolationKind
	Constraint string
	Column     string
}

var sqliteConstraint = regexp.MustCompile(`(UNIQUE|NOT NULL|FOREIGN KEY) constraint failed(?::\s*(.*))?`)

// AsViolation reports whether err was caused by a constraint violation.
func AsViolation(err error) (*Violation, bool) {
	if err == nil {
		return nil, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		v := &Violation{Constraint: pgErr.ConstraintName, Column: pgErr.ColumnName}
		switch pgErr.Code {
		case pgUniqueViolation:
			v.Kind = UniqueViolation
		case pgForeignKeyViolation:
			v.Kind = ForeignKeyViolation
		case pgNotNullViolation:
			v.Kind = NotNullViolation
		default:
			return nil, false
		}
		return v, true
	}

	if m := sqliteConstraint.FindStringSubmatch(err.Error()); m != nil {
		v := &Violation{Constraint: strings.TrimSpace(m[2])}
		switch m[1] {
		case "UNIQUE":
			v.Kind = UniqueViolation
		case "FOREIGN KEY":
			v.Kind = ForeignKeyViolation
		case "NOT NULL":
			v.Kind = NotNullViolation
			// sqlite names the column as table.column
			if i := strings.LastIndex(v.Constraint, "."); i >= 0 {
				v.Column = v.Constraint[i+1:]
			} else {
				v.Column = v.Constraint
			}
		}
		return v, true
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, ErrDuplicateKey):
		return &Violation{Kind: UniqueViolation}, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Violation{Kind: ForeignKeyViolation}, true
	}

	return nil, false
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	v, ok := AsViolation(err)
	return ok && v.Kind == UniqueViolation
}

// wrapWriteError tags unique violations with ErrDuplicateKey while keeping
// the driver error in the chain.
func wrapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKey(err) && !errors.Is(err, ErrDuplicateKey) {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return err
}

func wrapReadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
