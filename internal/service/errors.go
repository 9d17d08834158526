package service

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked means another holder owns the artifact lock. Recoverable:
	// the caller retries later or surfaces a read-only view.
	ErrLocked = errors.New("response is locked by another reviewer, try again later")

	// ErrNotFound means a referenced mapping, response, or questionnaire
	// does not exist. Never treated as an instruction to create one.
	ErrNotFound = errors.New("not found")

	// ErrResolutionFailed means no questionnaire applies to the mapping.
	// The mapping itself is valid, so this is distinct from ErrNotFound.
	ErrResolutionFailed = errors.New("no questionnaire found for mapping")

	// ErrForbidden means the access policy denied the acting user.
	ErrForbidden = errors.New("not allowed to act on this response")

	// ErrQuizTaken means the mapping already has a quiz attempt on record.
	ErrQuizTaken = errors.New("quiz has already been taken")

	// ErrValidation is the base of every validation failure; match it with
	// errors.Is and read the field from ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports which field of the input was rejected. It does not
// partially commit: answer upserts preceding the failure stay valid.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
