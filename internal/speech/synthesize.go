package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arguingbananas/eleven/internal/metrics"
)

// chunkSize is the buffer used when streaming audio to disk.
const chunkSize = 4096

// ErrNoText is returned when there is nothing to synthesize.
var ErrNoText = errors.New("no text to synthesize")

// SynthesizeRequest describes one text-to-speech call.
type SynthesizeRequest struct {
	Text    string
	VoiceID string
	Target  OutputTarget
}

// SynthesisResult reports where the audio was written.
type SynthesisResult struct {
	Path  string
	Bytes int64
	Via   string
}

// Synthesize writes speech for req.Text to req.Target. The vendor client is
// tried first when available; any vendor failure falls back to raw HTTP.
// A non-2xx HTTP response is returned as *APIError.
func (e *Executor) Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrNoText
	}
	path := req.Target.FinalPath()

	if e.UsesVendor() {
		start := time.Now()
		n, err := e.synthesizeVendor(ctx, req, path)
		observe("synthesize", viaSDK, start, err)
		if err == nil {
			return &SynthesisResult{Path: path, Bytes: n, Via: viaSDK}, nil
		}
		e.log.Warn().Err(err).Str("voice", req.VoiceID).Msg("vendor synthesis failed, falling back to HTTP")
		metrics.FallbacksTotal.WithLabelValues("synthesize").Inc()
	}

	start := time.Now()
	n, err := e.synthesizeHTTP(ctx, req, path)
	observe("synthesize", viaHTTP, start, err)
	if err != nil {
		return nil, err
	}
	return &SynthesisResult{Path: path, Bytes: n, Via: viaHTTP}, nil
}

func (e *Executor) synthesizeVendor(ctx context.Context, req SynthesizeRequest, path string) (int64, error) {
	stream, err := e.opts.Vendor.Synthesize(ctx, req.Text, req.VoiceID, req.Target.Format)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return writeStream(path, stream)
}

func (e *Executor) synthesizeHTTP(ctx context.Context, req SynthesizeRequest, path string) (int64, error) {
	payload, err := json.Marshal(map[string]string{"text": req.Text})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	u := e.baseURL + "/v1/text-to-speech/" + url.PathEscape(req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", req.Target.Format.MIMEType())
	e.opts.HTTPAuth.apply(httpReq, e.opts.APIKey)

	resp, err := e.synthesizeClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		metrics.APIErrorsTotal.WithLabelValues("synthesize", strconv.Itoa(resp.StatusCode)).Inc()
		return 0, &APIError{StatusCode: resp.StatusCode, Body: decodeBody(raw)}
	}
	return writeStream(path, resp.Body)
}

// writeStream copies r to path in fixed-size chunks, creating parent
// directories. Data goes to a temp file that is renamed into place, so a
// failed stream never leaves a truncated file at path.
func writeStream(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".audio-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				tmp.Close()
				os.Remove(tmpPath)
				return 0, fmt.Errorf("write: %w", werr)
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return 0, fmt.Errorf("read audio stream: %w", rerr)
		}
	}

	tmp.Chmod(0o644)
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename: %w", err)
	}
	return written, nil
}
