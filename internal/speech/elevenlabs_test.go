package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendorClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     VendorConfig
		wantErr bool
	}{
		{"defaults", VendorConfig{APIKey: "sk_x"}, false},
		{"custom_base", VendorConfig{APIKey: "sk_x", BaseURL: "http://localhost:8080/"}, false},
		{"empty_key", VendorConfig{}, true},
		{"relative_base", VendorConfig{APIKey: "sk_x", BaseURL: "/v1"}, true},
		{"bad_scheme", VendorConfig{APIKey: "sk_x", BaseURL: "ftp://example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVendorClient(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewVendorClient err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVendorClient_Transcribe(t *testing.T) {
	var gotKey, gotModel, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech-to-text" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("xi-api-key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model_id")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		gotFile = hdr.Filename + ":" + string(data)
		io.WriteString(w, `{"text":"hi","language_code":"en"}`)
	}))
	defer srv.Close()

	vc, err := NewVendorClient(VendorConfig{APIKey: "sk_test", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := vc.Transcribe(context.Background(), strings.NewReader("RIFF"), "a.wav", "scribe_v2")
	require.NoError(t, err)
	assert.Equal(t, "hi", resp["text"])
	assert.Equal(t, "sk_test", gotKey)
	assert.Equal(t, "scribe_v2", gotModel)
	assert.Equal(t, "a.wav:RIFF", gotFile)
}

func TestVendorClient_ErrorsAreAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":{"status":"invalid_model","message":"model not supported"}}`)
	}))
	defer srv.Close()

	vc, err := NewVendorClient(VendorConfig{APIKey: "sk_test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = vc.Transcribe(context.Background(), strings.NewReader("x"), "a.wav", "m")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.StatusCode)

	info := Classify(err)
	assert.Equal(t, 422, info.Status())
	assert.Equal(t, "model not supported", info.Message)

	_, err = vc.Synthesize(context.Background(), "hi", "v", FormatMP3)
	require.True(t, errors.As(err, &apiErr))

	_, err = vc.ListVoices(context.Background())
	require.True(t, errors.As(err, &apiErr))
}

func TestVendorClient_Synthesize(t *testing.T) {
	var gotPath, gotFormat, gotAccept string
	var gotBody ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		gotAccept = r.Header.Get("Accept")
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, "ulaw-bytes")
	}))
	defer srv.Close()

	vc, err := NewVendorClient(VendorConfig{APIKey: "sk_test", BaseURL: srv.URL, TTSModel: "eleven_multilingual_v2"})
	require.NoError(t, err)

	stream, err := vc.Synthesize(context.Background(), "hello", "id-1", FormatULaw)
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)

	assert.Equal(t, "ulaw-bytes", string(data))
	assert.Equal(t, "/v1/text-to-speech/id-1", gotPath)
	assert.Equal(t, "ulaw_8000", gotFormat)
	assert.Equal(t, "audio/basic", gotAccept)
	assert.Equal(t, ttsRequest{Text: "hello", ModelID: "eleven_multilingual_v2"}, gotBody)
}

func TestVendorClient_ListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/voices", r.URL.Path)
		io.WriteString(w, `{"voices":[{"voice_id":"a","name":"Alpha"}]}`)
	}))
	defer srv.Close()

	vc, err := NewVendorClient(VendorConfig{APIKey: "sk_test", BaseURL: srv.URL})
	require.NoError(t, err)

	voices, err := vc.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Voice{{ID: "a", Name: "Alpha"}}, voices)
}
