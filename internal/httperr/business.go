package httperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable class of a business error.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindSlotUnavailable   Kind = "slot_unavailable"
	KindUpstream          Kind = "upstream_failure"
)

type BusinessError struct {
	Kind Kind
	Code string
	Err  error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

// ErrBusiness keeps the old single-argument constructor; the kind
// defaults to validation.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func Validation(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func NotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func Forbidden(code string) error {
	return BusinessError{Kind: KindForbidden, Code: code}
}

func InvalidTransition(code string) error {
	return BusinessError{Kind: KindInvalidTransition, Code: code}
}

func SlotUnavailable(code string) error {
	return BusinessError{Kind: KindSlotUnavailable, Code: code}
}

// Upstream wraps a collaborator or storage failure. Callers may retry.
func Upstream(code string, err error) error {
	return BusinessError{Kind: KindUpstream, Code: code, Err: err}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf reports the kind of err, or "" when err is not a BusinessError.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// CodeOf reports the code of err, or "" when err is not a BusinessError.
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
