package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

var (
	// ErrNotFound means a referenced entity does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrInactive means a referenced account or category has been deactivated.
	ErrInactive = errors.New("inactive")
	// ErrValidation marks input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
)

// ReferenceError reports an entity that could not be used as a reference.
type ReferenceError struct {
	Entity   string
	ID       uuid.UUID
	Name     string
	Inactive bool
}

func (e *ReferenceError) Error() string {
	if e.Inactive {
		return fmt.Sprintf("%s '%s' is inactive", e.Entity, e.Name)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	if e.Inactive {
		return target == ErrInactive
	}
	return target == ErrNotFound
}

// NotFound builds the error stores return for a missing or foreign row.
func NotFound(entity string, id uuid.UUID) error {
	return &ReferenceError{Entity: entity, ID: id}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func inactive(entity string, id uuid.UUID, name string) error {
	return &ReferenceError{Entity: entity, ID: id, Name: name, Inactive: true}
}

// ValidationError reports rejected input. Err keeps the underlying
// models.FieldError or balance.DirectionError when there is one.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// invalid wraps field and direction errors into a ValidationError and passes
// everything else through unchanged.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Msg: fe.Msg, Err: err}
	}
	var de *balance.DirectionError
	if errors.As(err, &de) {
		return &ValidationError{Field: "transfer_type", Msg: de.Error(), Err: err}
	}
	if errors.Is(err, balance.ErrSameAccount) || errors.Is(err, balance.ErrUnknownTransferType) {
		return &ValidationError{Msg: err.Error(), Err: err}
	}
	return err
}

func validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
