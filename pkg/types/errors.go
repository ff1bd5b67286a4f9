package types

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindPermissionDenied ErrorKind = "permission_denied"
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindConflict         ErrorKind = "conflict"
)

// Error is the domain error surfaced at the operation boundary. Kind drives
// the HTTP status the server maps it to; Fields is populated for validation
// failures only.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: "validation failed", Fields: fields}
}

func NewPermissionDenied(message string) *Error {
	return &Error{Kind: ErrorKindPermissionDenied, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: ErrorKindConflict, Message: message}
}

func ErrorKindOf(err error) (ErrorKind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}

func IsValidation(err error) bool {
	kind, ok := ErrorKindOf(err)
	return ok && kind == ErrorKindValidation
}

func IsPermissionDenied(err error) bool {
	kind, ok := ErrorKindOf(err)
	return ok && kind == ErrorKindPermissionDenied
}

func IsNotFound(err error) bool {
	kind, ok := ErrorKindOf(err)
	return ok && kind == ErrorKindNotFound
}

func IsConflict(err error) bool {
	kind, ok := ErrorKindOf(err)
	return ok && kind == ErrorKindConflict
}

// Sentinels for the common lookup misses. These carry the NotFound kind so
// callers can either errors.Is against the sentinel or branch on the kind.
var (
	ErrNeedNotFound     = NewNotFound("need not found")
	ErrResponseNotFound = NewNotFound("response not found")
	ErrRegionNotFound   = NewNotFound("region not found")
	ErrUserNotFound     = NewNotFound("user not found")
)
