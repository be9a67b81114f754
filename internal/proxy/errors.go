package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpected covers upstream answers the proxy cannot relay, such as a
// success status with a body that is not JSON.
var ErrUnexpected = errors.New("unexpected error")

// NetworkError means the task API could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error reaching task API: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamStatusError carries a non-2xx answer from the task API.
type UpstreamStatusError struct {
	Status int
	Detail string
}

func (e *UpstreamStatusError) Error() string {
	return "task API error: " + e.Detail
}

// Translate maps an upstream failure to the status and detail returned to the client.
func Translate(err error) (int, string) {
	var netErr *NetworkError
	var statusErr *UpstreamStatusError

	switch {
	case errors.As(err, &netErr):
		return http.StatusInternalServerError, netErr.Error()
	case errors.As(err, &statusErr):
		return statusErr.Status, statusErr.Error()
	}
	return http.StatusInternalServerError, ErrUnexpected.Error()
}

// extractDetail pulls a human message out of an error body: "detail" first,
// then the "error.message" envelope.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return "unknown error"
	}

	if len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		// structured detail (field errors) is relayed as JSON text
		return string(payload.Detail)
	}

	if payload.Error.Message != "" {
		return payload.Error.Message
	}

	return "unknown error"
}
