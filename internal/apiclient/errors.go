package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork means no response reached the client.
	KindNetwork Kind = iota + 1
	// KindClient is a 4xx response.
	KindClient
	// KindServer is a 5xx response.
	KindServer
	// KindMalformed is a 2xx response whose body could not be decoded or
	// failed shape validation.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Error is the structured failure returned by every Client call.
type Error struct {
	Kind    Kind
	Status  int
	Message string // server-provided message, if any
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %s error", e.Method, e.Path, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the text to show the user for err: the server message
// when one came back, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// DetailMessage is the richer wording used by read-critical views, which
// replace their content with the error until the user navigates again.
func DetailMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch {
	case apiErr.Message != "":
		return apiErr.Message
	case apiErr.Kind == KindNetwork:
		return "No response from server. Please check your connection."
	case apiErr.Status != 0:
		return fmt.Sprintf("Server Error: %d", apiErr.Status)
	}
	return "An unexpected error occurred."
}

func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// IsUnauthorized reports whether the API rejected the bearer token.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func kindForStatus(status int) Kind {
	if status >= 500 {
		return KindServer
	}
	return KindClient
}
