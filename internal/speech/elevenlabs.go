package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the ElevenLabs API root.
const DefaultBaseURL = "https://api.elevenlabs.io"

// VendorClient is the typed ElevenLabs client used as the preferred path.
// It speaks the vendor-specific generation of the API: xi-api-key header,
// model_id form field, structured JSON errors. Implements Vendor.
type VendorClient struct {
	apiKey   string
	baseURL  string
	ttsModel string // "" = server default
	client   *http.Client
}

var _ Vendor = (*VendorClient)(nil)

// VendorConfig configures a VendorClient.
type VendorConfig struct {
	APIKey   string
	BaseURL  string
	TTSModel string
}

// NewVendorClient validates cfg and creates a client. No timeout is set on
// the underlying HTTP client; request lifetime is governed by ctx.
func NewVendorClient(cfg VendorConfig) (*VendorClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vendor client: empty API key")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("vendor client: parse base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("vendor client: base URL %q must be an absolute http(s) URL", base)
	}
	return &VendorClient{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(base, "/"),
		ttsModel: cfg.TTSModel,
		client:   &http.Client{},
	}, nil
}

// Transcribe posts audio to /v1/speech-to-text.
func (vc *VendorClient) Transcribe(ctx context.Context, audio io.Reader, filename, model string) (map[string]any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if model != "" {
		w.WriteField("model_id", model)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vc.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	AuthKeyHeader.apply(req, vc.apiKey)

	body, err := vc.do(req)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// Synthesize posts text to /v1/text-to-speech/{voice} and returns the audio
// stream.
func (vc *VendorClient) Synthesize(ctx context.Context, text, voiceID string, format Format) (io.ReadCloser, error) {
	payload, err := json.Marshal(ttsRequest{Text: text, ModelID: vc.ttsModel})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		vc.baseURL, url.PathEscape(voiceID), url.QueryEscape(format.VendorOutputFormat()))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", format.MIMEType())
	AuthKeyHeader.apply(req, vc.apiKey)

	resp, err := vc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: decodeBody(raw)}
	}
	return resp.Body, nil
}

// ListVoices fetches /v1/voices.
func (vc *VendorClient) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vc.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	AuthKeyHeader.apply(req, vc.apiKey)

	body, err := vc.do(req)
	if err != nil {
		return nil, err
	}
	return parseCatalog(body)
}

// do sends req and returns the body of a 2xx response. Other statuses become
// an *APIError.
func (vc *VendorClient) do(req *http.Request) ([]byte, error) {
	resp, err := vc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: decodeBody(body)}
	}
	return body, nil
}
