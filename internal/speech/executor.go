package speech

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultSTTEndpoint is the speech-to-text URL used by the HTTP path.
	DefaultSTTEndpoint = DefaultBaseURL + "/v1/speech-to-text"
	// DefaultSTTModel is the transcription model id.
	DefaultSTTModel = "scribe_v2"

	transcribeTimeout = 120 * time.Second
	synthesizeTimeout = 60 * time.Second
	voicesTimeout     = 20 * time.Second

	viaSDK  = "sdk"
	viaHTTP = "http"
)

// DefaultFallbackStatuses are the vendor statuses that are retried over raw
// HTTP instead of failing. 422 means the request shape was rejected, which
// the multipart/bearer encoding of the HTTP path may avoid.
var DefaultFallbackStatuses = []int{http.StatusUnprocessableEntity}

// AuthScheme selects how the credential is attached to a request.
type AuthScheme string

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthScheme = "bearer"
	// AuthKeyHeader sends "xi-api-key: <key>".
	AuthKeyHeader AuthScheme = "xi-api-key"
)

// ParseAuthScheme accepts "bearer" or "xi-api-key" (empty = bearer).
func ParseAuthScheme(s string) (AuthScheme, error) {
	switch AuthScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", AuthBearer:
		return AuthBearer, nil
	case AuthKeyHeader:
		return AuthKeyHeader, nil
	default:
		return "", fmt.Errorf("unknown auth scheme %q (want bearer or xi-api-key)", s)
	}
}

func (s AuthScheme) apply(req *http.Request, key string) {
	if s == AuthKeyHeader {
		req.Header.Set("xi-api-key", key)
		return
	}
	req.Header.Set("Authorization", "Bearer "+key)
}

// Options configures an Executor. The zero value uses raw HTTP only.
type Options struct {
	APIKey string

	// Vendor is the typed client tried first. nil = unavailable.
	Vendor Vendor
	// ForceHTTP skips Vendor even when it is set.
	ForceHTTP bool

	// BaseURL is the API root for synthesis and voice listing over HTTP.
	BaseURL string
	// HTTPAuth is the auth scheme of the raw HTTP path.
	HTTPAuth AuthScheme
	// FallbackStatuses overrides DefaultFallbackStatuses when non-nil.
	FallbackStatuses []int

	Log zerolog.Logger
}

// Executor runs each capability over the vendor client or raw HTTP.
// It holds no mutable state and may be reused.
type Executor struct {
	opts     Options
	baseURL  string
	fallback map[int]bool
	log      zerolog.Logger

	transcribeClient *http.Client
	synthesizeClient *http.Client
	voicesClient     *http.Client
}

// NewExecutor creates an Executor from opts.
func NewExecutor(opts Options) *Executor {
	statuses := opts.FallbackStatuses
	if statuses == nil {
		statuses = DefaultFallbackStatuses
	}
	fallback := make(map[int]bool, len(statuses))
	for _, s := range statuses {
		fallback[s] = true
	}
	if opts.HTTPAuth == "" {
		opts.HTTPAuth = AuthBearer
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Executor{
		opts:             opts,
		baseURL:          base,
		fallback:         fallback,
		log:              opts.Log.With().Str("component", "speech").Logger(),
		transcribeClient: &http.Client{Timeout: transcribeTimeout},
		synthesizeClient: &http.Client{Timeout: synthesizeTimeout},
		voicesClient:     &http.Client{Timeout: voicesTimeout},
	}
}

// UsesVendor reports whether calls try the vendor client first.
func (e *Executor) UsesVendor() bool {
	return e.opts.Vendor != nil && !e.opts.ForceHTTP
}

func (e *Executor) shouldFallback(info ErrorInfo) bool {
	return info.Recognized() && e.fallback[info.Status()]
}
