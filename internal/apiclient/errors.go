package apiclient

import (
	"errors"
	"net/http"
)

const KindLoginRequired = "LOGIN_REQUIRED"

// Error is a failed call: either no member could be resolved, or the server
// answered outside 2xx. Payload holds the decoded body when available.
type Error struct {
	Kind    string
	Status  int
	Payload Payload
}

func (e *Error) Error() string { return e.Kind }

// ErrLoginRequired is returned before any network activity when identity
// does not resolve.
var ErrLoginRequired = &Error{Kind: KindLoginRequired, Status: http.StatusUnauthorized}

func IsLoginRequired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindLoginRequired
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
