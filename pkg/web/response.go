// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse provides type for explicit json encoded error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Error wraps a given err into a json friendly struct.
func Error(err error) ErrorResponse {
	return ErrorResponse{Message: err.Error()}
}

// Message wraps a given message into a json friendly struct.
func Message(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

// GetErrorMsg translates the first field validation error into a human readable message.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return ""
	}

	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "email":
		return field.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field.Field(), field.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field.Field(), field.Param())
	case "uuid":
		return field.Field() + " must be a valid uuid"
	}

	return field.Field() + " is invalid"
}
