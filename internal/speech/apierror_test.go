package speech

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKnown  bool
		wantMsg    string
	}{
		{
			name:       "detail_message",
			err:        &APIError{StatusCode: 422, Body: map[string]any{"detail": map[string]any{"message": "invalid model", "error": "x"}}},
			wantStatus: 422, wantKnown: true, wantMsg: "invalid model",
		},
		{
			name:       "detail_error",
			err:        &APIError{StatusCode: 400, Body: map[string]any{"detail": map[string]any{"error": "bad input"}}},
			wantStatus: 400, wantKnown: true, wantMsg: "bad input",
		},
		{
			name:       "detail_string",
			err:        &APIError{StatusCode: 401, Body: map[string]any{"detail": "unauthorized"}},
			wantStatus: 401, wantKnown: true, wantMsg: "unauthorized",
		},
		{
			name:       "detail_object_without_keys",
			err:        &APIError{StatusCode: 400, Body: map[string]any{"detail": map[string]any{"status": "nope"}}},
			wantStatus: 400, wantKnown: true, wantMsg: `{"status":"nope"}`,
		},
		{
			name:       "empty_detail_string_uses_body",
			err:        &APIError{StatusCode: 400, Body: map[string]any{"detail": "", "message": "boom"}},
			wantStatus: 400, wantKnown: true, wantMsg: "boom",
		},
		{
			name:       "empty_detail_object_uses_body",
			err:        &APIError{StatusCode: 400, Body: map[string]any{"detail": map[string]any{}, "message": "boom"}},
			wantStatus: 400, wantKnown: true, wantMsg: "boom",
		},
		{
			name:       "empty_detail_list_uses_body",
			err:        &APIError{StatusCode: 400, Body: map[string]any{"detail": []any{}, "error": "boom"}},
			wantStatus: 400, wantKnown: true, wantMsg: "boom",
		},
		{
			name:       "no_detail_uses_body",
			err:        &APIError{StatusCode: 500, Body: map[string]any{"message": "boom"}},
			wantStatus: 500, wantKnown: true, wantMsg: "boom",
		},
		{
			name:       "string_body",
			err:        &APIError{StatusCode: 503, Body: "service unavailable"},
			wantStatus: 503, wantKnown: true, wantMsg: "service unavailable",
		},
		{
			name:       "wrapped_api_error",
			err:        fmt.Errorf("convert: %w", &APIError{StatusCode: 429, Body: map[string]any{"detail": map[string]any{"message": "slow down"}}}),
			wantStatus: 429, wantKnown: true, wantMsg: "slow down",
		},
		{
			name:    "plain_error",
			err:     errors.New("dial tcp: timeout"),
			wantMsg: "dial tcp: timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Classify(tt.err)
			if info.Recognized() != tt.wantKnown {
				t.Fatalf("Recognized() = %v, want %v", info.Recognized(), tt.wantKnown)
			}
			if info.Status() != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", info.Status(), tt.wantStatus)
			}
			if info.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", info.Message, tt.wantMsg)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	info := Classify(nil)
	if info.Recognized() || info.Message != "" {
		t.Errorf("Classify(nil) = %+v, want zero", info)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 404, Body: map[string]any{"detail": "voice not found"}}
	want := `ElevenLabs API error (status=404): {"detail":"voice not found"}`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDecodeBody(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		v := decodeBody([]byte(`{"detail":"x"}`))
		m, ok := v.(map[string]any)
		if !ok || m["detail"] != "x" {
			t.Errorf("decodeBody = %#v, want map with detail", v)
		}
	})
	t.Run("text_truncated", func(t *testing.T) {
		v := decodeBody([]byte(strings.Repeat("é", 1200)))
		s, ok := v.(string)
		if !ok {
			t.Fatalf("decodeBody type = %T, want string", v)
		}
		if n := len([]rune(s)); n != maxBodyChars {
			t.Errorf("rune count = %d, want %d", n, maxBodyChars)
		}
	})
}

func TestTranscribeError_Unwrap(t *testing.T) {
	inner := &APIError{StatusCode: 401, Body: "nope"}
	err := error(&TranscribeError{Via: viaSDK, StatusCode: 401, Message: "nope", Err: inner})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("errors.As(*APIError) = false, want true")
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
}
