package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// errorBody covers the error payloads of the supported providers:
// OpenAI ({"error":{"message":...}}) and FastAPI-style services
// ({"detail":...} or {"error":"..."}).
type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// FromHTTP classifies a non-2xx HTTP response into a sentinel error.
func FromHTTP(statusCode int, body []byte) error {
	msg := errorMessage(body)
	if sentinel := forStatus(statusCode, msg); sentinel != nil {
		return fmt.Errorf("%s: %w", msg, sentinel)
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, msg)
}

// FromOpenAI classifies an error returned by the go-openai client.
// Errors it does not recognize are returned unchanged.
func FromOpenAI(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := forStatus(apiErr.HTTPStatusCode, apiErr.Message); sentinel != nil {
			return fmt.Errorf("%s: %w", apiErr.Message, sentinel)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if sentinel := forStatus(reqErr.HTTPStatusCode, string(reqErr.Body)); sentinel != nil {
			return fmt.Errorf("%v: %w", reqErr.Err, sentinel)
		}
	}

	return FromTransport(err)
}

// FromTransport classifies a failure to get any HTTP response at all.
// Deadline and network timeouts become ErrTimeout; others are returned unchanged.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, ErrTimeout)
	}
	return err
}

// forStatus maps an HTTP status to a sentinel, or nil when unclassified.
func forStatus(statusCode int, msg string) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		// Quota exhaustion needs user action, unlike a temporary rate limit.
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return ErrQuotaExceeded
		}
		return ErrRateLimit
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound,
		http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return ErrBadRequest
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrServer
	default:
		return nil
	}
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return raw
	}

	for _, field := range []json.RawMessage{eb.Error, eb.Detail} {
		if len(field) == 0 {
			continue
		}
		var s string
		if json.Unmarshal(field, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(field, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return raw
}
