package importer

import (
	"errors"
	"fmt"

	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/store"
)

var (
	ErrMissingEmail = errors.New("missing email")
	ErrInvalidEmail = errors.New("invalid email")
)

// constraintFields names the columns behind a unique constraint. The
// constraint is a postgres constraint name or, on sqlite, the list of
// indexed columns.
var constraintFields = []normalize.Rule[string]{
	{Value: "email", Keywords: []string{"email"}},
	{Value: "name and state", Keywords: []string{"state"}},
	{Value: "university and gender", Keywords: []string{"gender"}},
	{Value: "university and division", Keywords: []string{"division"}},
	{Value: "university and conference", Keywords: []string{"conference"}},
	{Value: "coach and university", Keywords: []string{"coach"}},
	{Value: "external identifier", Keywords: []string{"external"}},
	{Value: "name", Keywords: []string{"name"}},
}

// ClassifiedError is a store failure rewritten into a message fit for the
// import error log. The driver error stays reachable through Unwrap.
type ClassifiedError struct {
	msg string
	err error
}

func (e *ClassifiedError) Error() string { return e.msg }
func (e *ClassifiedError) Unwrap() error { return e.err }

// ClassifyError rewrites constraint violations into readable messages
// prefixed with context. Other errors pass through unchanged.
func ClassifyError(context string, err error) error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	v, ok := store.AsViolation(err)
	if !ok {
		return err
	}

	var msg string
	switch v.Kind {
	case store.UniqueViolation:
		msg = fmt.Sprintf("%s: a record with this %s already exists", context, duplicateField(v.Constraint))
	case store.ForeignKeyViolation:
		msg = fmt.Sprintf("%s: referenced record not found", context)
	case store.NotNullViolation:
		msg = fmt.Sprintf("%s: missing required field %q", context, v.Column)
	default:
		return err
	}
	return &ClassifiedError{msg: msg, err: err}
}

func duplicateField(constraint string) string {
	if field, ok := normalize.Match(constraintFields, constraint); ok {
		return field
	}
	return "value"
}
