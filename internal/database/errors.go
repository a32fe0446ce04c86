package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// Constraint names referenced by callers.
const (
	ConstraintBidPerFreelancer = "bids_project_id_freelancer_id_key"
	ConstraintPaymentReference = "payments_transaction_reference_key"
	ConstraintUserEmail        = "users_email_key"
)

// ConstraintError reports a storage-level integrity breach.
type ConstraintError struct {
	Kind       string
	Constraint string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s violation on %s: %s", e.Kind, e.Constraint, e.Detail)
	}
	return fmt.Sprintf("%s violation: %s", e.Kind, e.Detail)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// IsConstraint reports whether err is a ConstraintError on the named constraint.
func IsConstraint(err error, constraint string) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Constraint == constraint
}

// mapError converts driver errors into ErrNotFound or *ConstraintError.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	var kind string
	switch string(pqErr.Code) {
	case codeUniqueViolation:
		kind = "unique"
	case codeForeignKeyViolation:
		kind = "foreign key"
	case codeNotNullViolation:
		kind = "not null"
	case codeCheckViolation:
		kind = "check"
	case codeNumericOutOfRange:
		kind = "numeric range"
	default:
		return err
	}

	return &ConstraintError{
		Kind:       kind,
		Constraint: pqErr.Constraint,
		Detail:     pqErr.Message,
		Err:        err,
	}
}
