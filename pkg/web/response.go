// Package web defines common components for a web application.
package web

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns the human readable suffix for a failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "max":
		return " must be at most " + fe.Param() + " characters long"
	case "min":
		return " must be at least " + fe.Param()
	case "email":
		return " must be a valid email"
	case "amount":
		return " must be an amount with at most two decimal places"
	case "account_number":
		return " must be a 10-digit account number"
	}

	return " is invalid"
}

// BindErrorMsg turns a binding error into the message returned to the client.
//
// Validation errors name the first failed field; any other error means the body
// could not be decoded.
func BindErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return "malformed request: " + strings.TrimSpace(err.Error())
}
