package service

import "net/http"

// Error is a caller-visible failure: validation problems and missing
// entities surface synchronously with an HTTP status and the gateway's
// error envelope fields.
type Error struct {
	Status      int
	Code        string
	Description string
}

func (e *Error) Error() string { return e.Description }

func badRequest(description string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "BAD_REQUEST_ERROR", Description: description}
}

func notFound(description string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND_ERROR", Description: description}
}
