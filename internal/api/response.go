// Package api wires the core's services onto HTTP, grounded on the
// teacher's internal/api package: an Echo router, a thin Handlers struct
// per domain, and one JSON envelope shared by every endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/validation"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Data  interface{}    `json:"data,omitempty"`
	Error *ErrorBody     `json:"error,omitempty"`
	Meta  ResponseMeta   `json:"meta"`
}

// ErrorBody carries a stable code alongside the human-readable message.
// Fields carries spec.md §7's locale-rendered field-level errors when the
// failure is a declarative validation rule rather than a generic bad
// request.
type ErrorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// ResponseMeta carries response-level bookkeeping.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Data: data, Meta: ResponseMeta{Timestamp: time.Now().UTC()}})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Response{
		Error: &ErrorBody{Code: code, Message: message},
		Meta:  ResponseMeta{Timestamp: time.Now().UTC()},
	})
}

func badRequest(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
}

func internalError(c echo.Context, err error) error {
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

// unprocessable returns spec.md §7's 422 response for one or more
// declarative field-validation failures, already rendered in the
// request's locale.
func unprocessable(c echo.Context, fields []validation.FieldError) error {
	return c.JSON(http.StatusUnprocessableEntity, Response{
		Error: &ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: "one or more fields failed validation",
			Fields:  fields,
		},
		Meta: ResponseMeta{Timestamp: time.Now().UTC()},
	})
}
