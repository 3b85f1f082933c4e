package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// envelope is the wrapper every panel API response uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var errEmptyEnvelope = errors.New("response envelope has no data")

// decodeEnvelope reads resp.Body and unmarshals the data member into out.
// out may be nil when the caller does not need the payload.
func decodeEnvelope(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromBody(resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errEmptyEnvelope
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func apiErrorFromBody(status int, body []byte) error {
	var env envelope
	msg := ""
	if err := json.Unmarshal(body, &env); err == nil {
		msg = env.Message
		if msg == "" {
			msg = env.Error
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
