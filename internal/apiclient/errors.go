package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// fallbackMessage is surfaced when the backend gives no usable detail.
const fallbackMessage = "request failed"

// RequestError is returned by every Client operation that fails.  Status is
// the HTTP status code of the backend response, or zero when the request
// never produced a response (DNS, connection refused, timeout).  Message is
// safe to show to a customer.
type RequestError struct {
	Op      string // operation name, e.g. "GetShowtime"
	Status  int    // HTTP status, 0 for transport failures
	Message string // human-readable message
	Err     error  // underlying transport or decode error, if any
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// IsTransport reports whether err is a network-level failure with no
// backend response.
func IsTransport(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == 0
}

// Message returns the customer-facing message carried by err, or fallback
// when err is not a RequestError or carries no message.
func Message(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	return fallback
}

// extractMessage pulls a message out of a structured error body.  The
// backend reports business errors as {"detail": "Seat A1 is already
// booked"} and request validation errors as {"detail": [{"msg": ...}]}.
func extractMessage(body []byte) string {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(env.Detail, &list); err == nil {
			for _, item := range list {
				if m := strings.TrimSpace(item.Msg); m != "" {
					return m
				}
			}
		}
	}
	return strings.TrimSpace(env.Message)
}
