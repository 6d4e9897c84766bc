// Package remote defines the tagged error model for calls to external
// collaborators and small helpers shared by their HTTP clients.
package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error kinds. A non-2xx response and an undecodable body are distinct
// kinds but are handled identically by callers: surfaced, never fatal,
// never retried automatically.
const (
	KindUnauthenticated Kind = iota + 1
	KindRemoteFailure
	KindMalformedResponse
	KindValidation
)

type (
	Kind int

	// Error is a failure from an external collaborator, tagged with
	// the kind the HTTP layer maps to a status code and message.
	Error struct {
		Kind       Kind
		StatusCode int // HTTP status from the collaborator, 0 if none
		Message    string
	}
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRemoteFailure:
		return "remote_failure"
	case KindMalformedResponse:
		return "malformed_response"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind Kind, statusCode int, message string) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, Message: message}
}

// ErrUnauthenticated is returned before any network call when no
// credential is available.
var ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "no credential available"}

// KindOf returns the error's kind, or KindRemoteFailure for errors
// that did not originate from this package (transport failures etc.).
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindRemoteFailure
}

// DecodeJSON consumes the response body and decodes it into out.
// Non-2xx responses become KindRemoteFailure; bodies that fail to
// decode become KindMalformedResponse. The body is always drained and
// closed.
func DecodeJSON(resp *http.Response, out any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewError(KindRemoteFailure, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(KindMalformedResponse, resp.StatusCode, err.Error())
	}
	return nil
}
