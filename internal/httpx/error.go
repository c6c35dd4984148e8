package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TransportError reports that the server could not be reached at all
// (connect, resolve, or read failure). Callers may treat these as likely
// retryable; the executor itself never retries.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("httpx: could not connect: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RemoteError reports a non-2xx response whose body carried the server's
// {message, code} envelope.
type RemoteError struct {
	StatusCode int
	Message    string `json:"message"`
	Code       uint32 `json:"code"`
}

func (e *RemoteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("httpx: remote rejected request: status=%d code=%d message=%q", e.StatusCode, e.Code, e.Message)
}

// DecodeError reports a body that did not match the expected shape. This is
// a contract defect, not a normal outcome, and is never silently defaulted.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("httpx: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeJSON unmarshals a success body into out, converting failures into a
// *DecodeError so contract violations fail loudly.
func DecodeJSON(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Body: data, Err: err}
	}
	return nil
}

// AsRemote extracts a *RemoteError from an error chain.
func AsRemote(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}

// IsTransport reports whether the error chain contains a *TransportError.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

func decodeEnvelope(data []byte, remote *RemoteError) error {
	return json.Unmarshal(data, remote)
}
