package speech

import (
	"encoding/json"
	"errors"
	"fmt"
)

// maxBodyChars bounds how much of a non-JSON error body is echoed back.
const maxBodyChars = 1000

// APIError is a structured error returned by the ElevenLabs API: an HTTP
// status plus the decoded response body (a JSON value, or the raw text when
// the body was not JSON).
type APIError struct {
	StatusCode int
	Body       any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ElevenLabs API error (status=%d): %s", e.StatusCode, bodyString(e.Body))
}

// ErrorInfo is an error reduced to a status code and a human message.
// StatusCode is nil when the error was not a recognized API error.
type ErrorInfo struct {
	StatusCode *int
	Message    string
}

// Status returns the status code, or 0 when unknown.
func (i ErrorInfo) Status() int {
	if i.StatusCode == nil {
		return 0
	}
	return *i.StatusCode
}

// Recognized reports whether the error carried an API status.
func (i ErrorInfo) Recognized() bool { return i.StatusCode != nil }

// Classify inspects an error from the vendor path. Errors wrapping an
// *APIError yield its status and the best message found in the body
// (detail.message, detail.error, the detail itself, then the whole body).
// Anything else yields a nil status and err.Error().
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr == nil {
		return ErrorInfo{Message: err.Error()}
	}
	code := apiErr.StatusCode
	return ErrorInfo{StatusCode: &code, Message: detailMessage(apiErr.Body)}
}

func detailMessage(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return bodyString(body)
	}
	detail := obj["detail"]
	if isEmptyValue(detail) {
		detail = obj
	}
	d, ok := detail.(map[string]any)
	if !ok {
		return bodyString(detail)
	}
	for _, key := range []string{"message", "error"} {
		if v, ok := d[key]; ok && v != nil {
			if s := bodyString(v); s != "" {
				return s
			}
		}
	}
	return bodyString(d)
}

// isEmptyValue reports whether v is nil, "", or an empty object or list.
func isEmptyValue(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case string:
		return d == ""
	case map[string]any:
		return len(d) == 0
	case []any:
		return len(d) == 0
	}
	return false
}

// bodyString renders a decoded body for error messages. Strings are
// truncated; other values are JSON-encoded.
func bodyString(v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case string:
		return truncate(b, maxBodyChars)
	case []byte:
		return truncate(string(b), maxBodyChars)
	default:
		out, err := json.Marshal(b)
		if err != nil {
			return fmt.Sprint(b)
		}
		return string(out)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// decodeBody returns the JSON value in raw, or the raw text if it is not JSON.
func decodeBody(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return truncate(string(raw), maxBodyChars)
}

// TranscribeError is the single failure surfaced by Executor.Transcribe.
type TranscribeError struct {
	Via        string // "sdk" or "http"
	StatusCode int    // 0 when the vendor error was unrecognized
	Message    string
	NonJSON    bool // HTTP response body could not be decoded
	Err        error
}

func (e *TranscribeError) Error() string {
	switch {
	case e.Via == viaSDK && e.StatusCode != 0:
		return fmt.Sprintf("ElevenLabs API error (status=%d): %s", e.StatusCode, e.Message)
	case e.Via == viaSDK:
		return fmt.Sprintf("ElevenLabs SDK error: %s", e.Message)
	case e.NonJSON:
		return fmt.Sprintf("Non-JSON response (status %d): %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("transcription request failed: %s", e.Message)
	}
}

func (e *TranscribeError) Unwrap() error { return e.Err }
