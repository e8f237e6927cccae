// Package response defines the JSON envelope returned by every API endpoint.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the common envelope of API responses.
type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	EmptyRequestBodyResponse = Response{
		Status:  StatusError,
		Error:   "Empty Request Body",
		Message: "Request body is empty. Please provide necessary data.",
	}

	BadRequestResponse = Response{
		Status:  StatusError,
		Error:   "Bad Request",
		Message: "Request body is malformed. Please check the request data.",
	}

	ResourceNotFoundResponse = Response{
		Status:  StatusError,
		Error:   "Resource Not Found",
		Message: "The requested resource was not found.",
	}

	UnauthorizedResponse = Response{
		Status:  StatusError,
		Error:   "Unauthorized",
		Message: "Valid credentials are required to access this resource.",
	}

	ForbiddenResponse = Response{
		Status:  StatusError,
		Error:   "Forbidden",
		Message: "You are not allowed to modify this resource.",
	}

	ServerErrorResponse = Response{
		Status:  StatusError,
		Error:   "Server Error",
		Message: "An internal server error occurred. Please try again later.",
	}
)

// SuccessResponse builds a success envelope. Only the first data value is used.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ErrorResponse builds an error envelope with a custom message.
func ErrorResponse(errTitle, msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   errTitle,
		Message: msg,
	}
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issueForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "url":
		return "Invalid url."
	case "uuid", "uuid4":
		return "Invalid uuid."
	case "max":
		return fmt.Sprintf("Must be at most %s.", param)
	case "min":
		return fmt.Sprintf("Must be at least %s.", param)
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", param)
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field: e.Field(),
				Value: e.Value(),
				Issue: issueForTag(e.Tag(), e.Param()),
			})
		}
	}

	return validationErrs
}

// ValidationErrorResponse converts validator errors into an error envelope with per-field details.
func ValidationErrorResponse(err error) Response {
	validationErrs := getValidationErrors(err)

	details := make([]any, 0, len(validationErrs))
	for _, e := range validationErrs {
		details = append(details, e)
	}

	return Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "Request data is invalid. Please check the details.",
		Details: details,
	}
}
