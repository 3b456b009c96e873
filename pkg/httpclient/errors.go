package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// DefaultMessage is the last-resort text when nothing more specific exists.
const DefaultMessage = "Something went wrong."

const (
	msgBadCredentials = "Incorrect email or password. Please try again."
	msgEmailTaken     = "This email is already registered. Please sign in or use a different email."
	retrySuffix       = ". Please try again."
)

// Substrings of upstream messages. Matching is case-insensitive.
var (
	// crashSignatures mark known backend crashes that succeed on retry.
	crashSignatures = []string{"pool"}

	// authInvalidMarkers mark a 401 that means the session token is dead,
	// as opposed to a rejected sign-in.
	authInvalidMarkers = []string{"login again", "invalid", "expired"}
)

// APIError is a failed upstream call. Status is zero when no HTTP response
// was received (network failure, timeout, open breaker).
type APIError struct {
	Method  string
	Path    string
	Status  int
	Body    []byte
	Cause   error
	Message string

	// local marks failures that happened on this side of the wire, such as
	// encoding a request or decoding a 2xx body. They are never retried.
	local bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return NormalizeMessage(e.Status, e.Body, e.Cause, DefaultMessage)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// HasResponse reports whether the upstream answered at all.
func (e *APIError) HasResponse() bool {
	return e.Status != 0
}

// Transient reports whether the failure is likely to succeed on retry: no
// response at all, a 500/502/503/504, or a known crash signature.
func (e *APIError) Transient() bool {
	if e.local {
		return false
	}
	if !e.HasResponse() {
		return !errors.Is(e.Cause, context.Canceled)
	}
	switch e.Status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return containsFold(e.Error(), crashSignatures...)
}

// AuthInvalidated reports whether the upstream rejected the session token
// itself (401 with an invalid/expired/login-again message).
func (e *APIError) AuthInvalidated() bool {
	return e.Status == http.StatusUnauthorized && containsFold(e.Error(), authInvalidMarkers...)
}

// Absent reports whether a read of a collection should be treated as empty.
// The upstream answers 404 for a missing cart and sometimes 500 for an
// empty one.
func (e *APIError) Absent() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusInternalServerError
}

// IsTransient reports whether err is an APIError classified as transient.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transient()
}

// IsAbsent reports whether err is an APIError meaning "nothing there".
func IsAbsent(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Absent()
}

// IsAuthError reports whether err means the session is no longer valid,
// either by status (401) or by an expired/invalid message.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return true
	}
	return containsFold(err.Error(), "expired", "invalid")
}

// StatusOf returns the upstream status carried by err, or zero.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Describe returns err as an *APIError whose Message is normalized with
// fallback as the caller-specific default. Local failures and non-API
// errors read as fallback; the original error stays available through
// Unwrap.
func Describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		cp := *apiErr
		if cp.local {
			cp.Message = fallback
		} else {
			cp.Message = NormalizeMessage(cp.Status, cp.Body, cp.Cause, fallback)
		}
		return &cp
	}
	return &APIError{
		Cause:   err,
		Message: fallback,
		local:   true,
	}
}

// errorBody is the upstream's error envelope. errors is either one object
// or a list of them.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

// NormalizeMessage turns a failed call into one human-readable string:
//  1. a plain-text body, verbatim with a retry suffix;
//  2. a field-level errors.msg (object, or first element of a list);
//  3. the body's message;
//  4. fixed text for 401 and 409;
//  5. the transport error text;
//  6. fallback.
func NormalizeMessage(status int, body []byte, cause error, fallback string) string {
	if text, ok := plainText(body); ok {
		return text + retrySuffix
	}

	msg := bodyMessage(body)

	if msg == "" {
		switch status {
		case http.StatusUnauthorized:
			return msgBadCredentials
		case http.StatusConflict:
			return msgEmailTaken
		}
	}
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	if msg == "" {
		msg = fallback
	}
	return msg
}

// plainText reports whether body is a bare string rather than a JSON
// document, returning its text.
func plainText(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '{', '[':
		if json.Valid(trimmed) {
			return "", false
		}
	case '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s, s != ""
		}
	}
	return string(trimmed), true
}

func bodyMessage(body []byte) string {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return ""
	}

	if len(eb.Errors) > 0 {
		var single fieldError
		if json.Unmarshal(eb.Errors, &single) == nil && single.Msg != "" {
			return single.Msg
		}
		var list []fieldError
		if json.Unmarshal(eb.Errors, &list) == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	return eb.Message
}

func containsFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
