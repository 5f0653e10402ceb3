package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arguingbananas/eleven/internal/metrics"
)

// textKeys are the response keys checked, in order, for the transcript text.
var textKeys = []string{"text", "transcript", "transcription"}

// TranscribeRequest describes one transcription call.
type TranscribeRequest struct {
	FilePath string // must exist; checked by the caller
	Endpoint string // HTTP path URL; "" = DefaultSTTEndpoint
	Model    string // "" = DefaultSTTModel
	SaveTo   string // optional transcript output path
}

// Transcribe runs a transcription. The vendor client is tried first when
// available; a fallback-eligible status (422 by default) retries once over
// raw HTTP, any other vendor failure is fatal. Failures are *TranscribeError.
func (e *Executor) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscriptionResult, error) {
	if req.Endpoint == "" {
		req.Endpoint = DefaultSTTEndpoint
	}
	if req.Model == "" {
		req.Model = DefaultSTTModel
	}

	var (
		data map[string]any
		via  string
		done bool
	)
	if e.UsesVendor() {
		resp, err := e.transcribeVendor(ctx, req)
		switch {
		case err == nil:
			data, via, done = resp, viaSDK, true
		default:
			info := Classify(err)
			if !e.shouldFallback(info) {
				metrics.APIErrorsTotal.WithLabelValues("transcribe", statusLabel(info)).Inc()
				return nil, &TranscribeError{Via: viaSDK, StatusCode: info.Status(), Message: info.Message, Err: err}
			}
			e.log.Info().
				Int("status", info.Status()).
				Str("message", info.Message).
				Msg("vendor rejected request, retrying over HTTP")
			metrics.FallbacksTotal.WithLabelValues("transcribe").Inc()
		}
	}

	if !done {
		resp, err := e.transcribeHTTP(ctx, req)
		if err != nil {
			return nil, err
		}
		data, via = resp, viaHTTP
	}
	if data == nil {
		data = map[string]any{}
	}

	result := &TranscriptionResult{Text: extractText(data), Raw: data, Via: via}
	if req.SaveTo != "" && result.HasText() {
		if err := saveTranscript(req.SaveTo, result.Text); err != nil {
			e.log.Warn().Err(err).Str("path", req.SaveTo).Msg("failed to save transcript")
		}
	}
	return result, nil
}

func (e *Executor) transcribeVendor(ctx context.Context, req TranscribeRequest) (map[string]any, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	start := time.Now()
	resp, err := e.opts.Vendor.Transcribe(ctx, f, filepath.Base(req.FilePath), req.Model)
	observe("transcribe", viaSDK, start, err)
	return resp, err
}

func (e *Executor) transcribeHTTP(ctx context.Context, req TranscribeRequest) (map[string]any, error) {
	endpoint, err := withModelQuery(req.Endpoint, req.Model)
	if err != nil {
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}
	w.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	e.opts.HTTPAuth.apply(httpReq, e.opts.APIKey)

	start := time.Now()
	resp, err := e.transcribeClient.Do(httpReq)
	if err != nil {
		observe("transcribe", viaHTTP, start, err)
		return nil, &TranscribeError{Via: viaHTTP, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observe("transcribe", viaHTTP, start, err)
		return nil, &TranscribeError{Via: viaHTTP, StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		observe("transcribe", viaHTTP, start, err)
		return nil, &TranscribeError{
			Via:        viaHTTP,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), maxBodyChars),
			NonJSON:    true,
			Err:        err,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: decoded}
		observe("transcribe", viaHTTP, start, apiErr)
		metrics.APIErrorsTotal.WithLabelValues("transcribe", strconv.Itoa(resp.StatusCode)).Inc()
		return nil, &TranscribeError{Via: viaHTTP, StatusCode: resp.StatusCode, Message: bodyString(decoded), Err: apiErr}
	}

	data, ok := decoded.(map[string]any)
	if !ok {
		// Non-object JSON is kept under "results" so it still reaches the caller.
		data = map[string]any{"results": decoded}
	}
	observe("transcribe", viaHTTP, start, nil)
	return data, nil
}

// withModelQuery sets the model query parameter on endpoint, keeping any
// other parameters already present.
func withModelQuery(endpoint, model string) (string, error) {
	if model == "" {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractText returns the first non-empty string among textKeys.
func extractText(data map[string]any) string {
	for _, key := range textKeys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func saveTranscript(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func statusLabel(info ErrorInfo) string {
	if !info.Recognized() {
		return "none"
	}
	return strconv.Itoa(info.Status())
}

func observe(capability, via string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RequestsTotal.WithLabelValues(capability, via, outcome).Inc()
	metrics.RequestDuration.WithLabelValues(capability, via).Observe(time.Since(start).Seconds())
}
