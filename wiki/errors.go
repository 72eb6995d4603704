package wiki

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// APIError is a classified error envelope from either backend dialect,
// reduced to a single message-bearing failure.
type APIError struct {
	// HTTPCode is set when the envelope carried one (modern dialect).
	HTTPCode int

	// Code is the machine-readable error code, when present.
	Code string

	// Message is the human-readable message extracted per envelope shape.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("wiki API error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("wiki API error: %s", e.Message)
}

// NotFound reports whether the error means the addressed entity does not
// exist, across the codes and status both dialects use for that.
func (e *APIError) NotFound() bool {
	if e.HTTPCode == 404 {
		return true
	}
	switch e.Code {
	case "missingtitle", "nosuchrevid", "nosuchpageid":
		return true
	}
	return false
}

// IsAPIError returns the classified error if err is one.
func IsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// errorEnvelope probes a decoded response body for the three recognized
// error shapes. Field presence, not the protocol in use, discriminates the
// shape: both endpoints can surface either family in edge cases.
type errorEnvelope struct {
	HTTPCode            json.RawMessage   `json:"httpCode"`
	MessageTranslations map[string]string `json:"messageTranslations"`
	Message             string            `json:"message"`
	Name                string            `json:"name"`

	Errors []struct {
		Code   string `json:"code"`
		Text   string `json:"text"`
		Module string `json:"module"`
	} `json:"errors"`

	Err *struct {
		Code   string `json:"code"`
		Info   string `json:"info"`
		Docref string `json:"docref"`
	} `json:"error"`
}

// classify inspects a raw JSON response body and returns an *APIError when
// it matches one of the recognized error envelopes, nil otherwise. Success
// payloads pass through untouched: the caller decodes them afterwards.
func classify(body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Not a JSON object; nothing to classify.
		return nil
	}

	switch {
	case len(env.HTTPCode) > 0 && string(env.HTTPCode) != "null":
		httpCode, _ := strconv.Atoi(string(env.HTTPCode))
		msg := env.MessageTranslations["en"]
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = string(env.HTTPCode)
		}
		return &APIError{HTTPCode: httpCode, Code: env.Name, Message: msg}

	case len(env.Errors) > 0:
		return &APIError{Code: env.Errors[0].Code, Message: env.Errors[0].Text}

	case env.Err != nil:
		return &APIError{Code: env.Err.Code, Message: env.Err.Info}
	}

	return nil
}
