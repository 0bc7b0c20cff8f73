package wgapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Common errors
var (
	// ErrRemote indicates the API answered with status "error"
	ErrRemote = errors.New("remote API error")
	// ErrUnsupported indicates an operation the response cannot answer
	ErrUnsupported = errors.New("unsupported operation")
	// ErrKeyNotFound indicates a lookup key absent from the payload
	ErrKeyNotFound = errors.New("key not found")
	// ErrTypeMismatch indicates a mapping operation on a non-mapping payload or vice versa
	ErrTypeMismatch = errors.New("payload type mismatch")
)

// RequestError carries the structured error reported by the API inside an
// otherwise successful HTTP response.
type RequestError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	// Fields is the error object as sent, numbers kept as json.Number
	Fields map[string]any `json:"-"`
}

// UnmarshalJSON decodes the error object leniently: value may be any JSON
// type and code may arrive as a number or a string.
func (e *RequestError) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*e = RequestError{}
	fields, ok := raw.(map[string]any)
	if !ok {
		e.Message = errorText(raw)
		return nil
	}

	e.Fields = fields
	switch code := fields["code"].(type) {
	case json.Number:
		if n, err := code.Int64(); err == nil {
			e.Code = int(n)
		}
	case string:
		e.Code, _ = strconv.Atoi(code)
	}
	e.Message = errorText(fields["message"])
	e.Field = errorText(fields["field"])
	e.Value = errorText(fields["value"])
	return nil
}

func errorText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("wargaming API error: code %d: %s (field=%s, value=%s)", e.Code, e.Message, e.Field, e.Value)
	}
	return fmt.Sprintf("wargaming API error: code %d: %s", e.Code, e.Message)
}

// Is reports whether target is ErrRemote
func (e *RequestError) Is(target error) bool {
	return target == ErrRemote
}

// IsInvalidApplicationID checks if the API rejected the application key
func (e *RequestError) IsInvalidApplicationID() bool {
	return e.Message == "INVALID_APPLICATION_ID"
}

// IsRequestLimitExceeded checks if the request was throttled
func (e *RequestError) IsRequestLimitExceeded() bool {
	return e.Message == "REQUEST_LIMIT_EXCEEDED"
}

// UnsupportedError is returned by Len on a paginated result whose response
// carries no meta.total.
type UnsupportedError struct {
	URL    string
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s", e.URL, e.Reason)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// KeyNotFoundError is returned when a key is missing under both its string
// and integer representation.
type KeyNotFoundError struct {
	Key any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %v", e.Key)
}

func (e *KeyNotFoundError) Unwrap() error {
	return ErrKeyNotFound
}

// TypeMismatchError is returned when the payload shape does not support the
// requested operation.
type TypeMismatchError struct {
	Op   string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: payload is %s, want %s", e.Op, e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// TransportError indicates a network or decoding failure. It is never retried.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a remote API error, the only kind the
// retry policy retries.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
