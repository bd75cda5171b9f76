package hive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies an Error. Kinds are local; only the message and status
// travel on the wire, and Decode re-derives the kind on the receiving side.
type Kind string

const (
	KindResourceNotFound      Kind = "RESOURCE_NOT_FOUND"
	KindResourceAlreadyExists Kind = "RESOURCE_ALREADY_EXISTS"
	KindAuthenticationFailed  Kind = "AUTHENTICATION_FAILED"
	KindMissingAuthHeader     Kind = "MISSING_AUTHENTICATION_HEADER"
	KindNotMemberOfProject    Kind = "NOT_MEMBER_OF_PROJECT"
	KindNotLeaderOfProject    Kind = "NOT_LEADER_OF_PROJECT"
	KindTaskProjectMismatch   Kind = "TASK_PROJECT_MISMATCH"
	KindInvalidRequest        Kind = "INVALID_REQUEST"
	KindNotAuthorized         Kind = "NOT_AUTHORIZED"
	KindUpstreamUnavailable   Kind = "UPSTREAM_UNAVAILABLE"
	KindDomain                Kind = "DOMAIN_ERROR"
)

// Error is the shared error shape every service speaks. Its JSON form is the
// one wire-exact contract in the system: {"message","httpStatus","statusCode"}.
type Error struct {
	Kind       Kind   `json:"-"`
	Message    string `json:"message"`
	HTTPStatus string `json:"httpStatus"`
	StatusCode int    `json:"statusCode"`
}

func (e *Error) Error() string {
	return e.Message
}

// statusName renders a status code the way the upstream services spell it
// ("NOT_FOUND", "BAD_REQUEST", ...).
func statusName(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusNotAcceptable:
		return "NOT_ACCEPTABLE"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusExpectationFailed:
		return "EXPECTATION_FAILED"
	case http.StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

func newError(kind Kind, code int, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		HTTPStatus: statusName(code),
		StatusCode: code,
	}
}

// NotFound reports a missing resource. Repository misses are converted to
// this at the boundary where the lookup happens, never returned raw.
func NotFound(format string, args ...any) *Error {
	return newError(KindResourceNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

// AlreadyExists reports a uniqueness violation. code is caller-chosen: the
// registration flow answers 400, project creation answers 406.
func AlreadyExists(code int, format string, args ...any) *Error {
	return newError(KindResourceAlreadyExists, code, fmt.Sprintf(format, args...))
}

func AuthenticationFailed(message string) *Error {
	return newError(KindAuthenticationFailed, http.StatusUnauthorized, message)
}

func MissingAuthHeader(message string) *Error {
	return newError(KindMissingAuthHeader, http.StatusUnauthorized, message)
}

func NotMemberOfProject(message string) *Error {
	return newError(KindNotMemberOfProject, http.StatusForbidden, message)
}

func NotLeaderOfProject(message string) *Error {
	return newError(KindNotLeaderOfProject, http.StatusForbidden, message)
}

// TaskProjectMismatch reports a task mutation whose supplied project does not
// own the task. 417 matches the upstream services' answer for this case.
func TaskProjectMismatch(format string, args ...any) *Error {
	return newError(KindTaskProjectMismatch, http.StatusExpectationFailed, fmt.Sprintf(format, args...))
}

func InvalidRequest(format string, args ...any) *Error {
	return newError(KindInvalidRequest, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func NotAuthorized(message string) *Error {
	return newError(KindNotAuthorized, http.StatusForbidden, message)
}

// UpstreamUnavailable reports a cross-service call that failed at the
// transport level after retrying.
func UpstreamUnavailable(format string, args ...any) *Error {
	return newError(KindUpstreamUnavailable, http.StatusServiceUnavailable, fmt.Sprintf(format, args...))
}

// Domain reports a failure that has no more specific kind.
func Domain(code int, format string, args ...any) *Error {
	return newError(KindDomain, code, fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected error for transport without leaking detail.
func Internal(message string) *Error {
	return newError(KindDomain, http.StatusInternalServerError, message)
}

// kindFromStatus picks the local kind for an error decoded off the wire. The
// body carries only message and status, so the mapping is by status code.
func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindInvalidRequest
	case http.StatusUnauthorized:
		return KindAuthenticationFailed
	case http.StatusForbidden:
		return KindNotAuthorized
	case http.StatusNotFound:
		return KindResourceNotFound
	case http.StatusNotAcceptable, http.StatusConflict:
		return KindResourceAlreadyExists
	case http.StatusExpectationFailed:
		return KindTaskProjectMismatch
	case http.StatusServiceUnavailable:
		return KindUpstreamUnavailable
	default:
		return KindDomain
	}
}

// Decode reconstructs an Error from a remote error body, preserving the
// remote's message and status code instead of collapsing to a generic
// failure. The passed status is the response status line, which wins over
// whatever the body claims.
func Decode(status int, body io.Reader) *Error {
	var wire struct {
		Message    string `json:"message"`
		HTTPStatus string `json:"httpStatus"`
		StatusCode int    `json:"statusCode"`
	}
	if err := json.NewDecoder(body).Decode(&wire); err != nil || wire.Message == "" {
		return newError(kindFromStatus(status), status, fmt.Sprintf("upstream returned status %d", status))
	}
	return &Error{
		Kind:       kindFromStatus(status),
		Message:    wire.Message,
		HTTPStatus: statusName(status),
		StatusCode: status,
	}
}

// FromError coerces any error into an *Error for transport. Unknown errors
// become opaque 500s.
func FromError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("An unexpected error occurred")
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
