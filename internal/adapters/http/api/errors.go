package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Error carries the failing operation and an error kind for errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// statusFor maps pipeline and validation errors to a status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNoData):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, service.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, service.ErrAnalysis):
		return http.StatusInternalServerError, "analysis_error"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidEntry),
		errors.Is(err, model.ErrUnknownTreatment):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, "internal_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
