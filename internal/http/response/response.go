// Package response holds the unified JSON envelope returned by every
// handler: a success flag, a machine-readable error code on failure
// and the payload on success.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response is the standard envelope.
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorBody `json:"error,omitempty"`
	Data    any        `json:"data,omitempty"`
}

// ErrorBody carries the stable error code clients switch on plus a
// human readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes shared across handlers. Area-specific codes live next to
// the services that produce them.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeServerError  = "SERVER_ERROR"
	CodeForbidden    = "FORBIDDEN"
)

// OK returns a bare success envelope.
func OK() Response {
	return Response{Success: true}
}

// OKWithData returns a success envelope wrapping data.
func OKWithData(data any) Response {
	return Response{Success: true, Data: data}
}

// Error returns a failure envelope with the given code and message.
func Error(code, msg string) Response {
	return Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: msg},
	}
}

// ValidationError flattens validator violations into one envelope with
// the VALIDATION_ERROR code.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "gte", "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is below the allowed minimum", err.Field()))
		case "lte", "lt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is above the allowed maximum", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(CodeValidation, strings.Join(errsMsgs, ", "))
}
