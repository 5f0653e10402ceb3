package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/arguingbananas/eleven/internal/metrics"
)

// ListVoices returns the voice catalog. The vendor client is preferred; any
// vendor error is logged at debug level and the HTTP listing is used instead.
func (e *Executor) ListVoices(ctx context.Context) ([]Voice, error) {
	if e.UsesVendor() {
		start := time.Now()
		voices, err := e.opts.Vendor.ListVoices(ctx)
		observe("voices", viaSDK, start, err)
		if err == nil {
			return voices, nil
		}
		e.log.Debug().Err(err).Msg("vendor voice listing failed, using HTTP")
		metrics.FallbacksTotal.WithLabelValues("voices").Inc()
	}

	start := time.Now()
	voices, err := e.listVoicesHTTP(ctx)
	observe("voices", viaHTTP, start, err)
	return voices, err
}

func (e *Executor) listVoicesHTTP(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	e.opts.HTTPAuth.apply(req, e.opts.APIKey)

	resp, err := e.voicesClient.Do(req)
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
	return parseCatalog(body)
}

// catalogEntry accepts both the vendor ("voice_id") and generic ("id") keys.
type catalogEntry struct {
	VoiceID string `json:"voice_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

var errBadCatalog = errors.New("voice catalog: expected a list or an object with a voices key")

// parseCatalog decodes either {"voices": [...]} or a bare list.
func parseCatalog(body []byte) ([]Voice, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode voice catalog: %w", err)
	}

	var entries []catalogEntry
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode voice catalog: %w", err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var envelope struct {
			Voices *[]catalogEntry `json:"voices"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode voice catalog: %w", err)
		}
		if envelope.Voices == nil {
			return nil, errBadCatalog
		}
		entries = *envelope.Voices
	default:
		return nil, errBadCatalog
	}

	voices := make([]Voice, 0, len(entries))
	for _, ent := range entries {
		id := ent.VoiceID
		if id == "" {
			id = ent.ID
		}
		voices = append(voices, Voice{ID: id, Name: ent.Name})
	}
	return voices, nil
}

// ResolveVoice maps label (a voice id or a display name) to a voice id.
// Resolution is best-effort: on an empty label, a failed catalog fetch or no
// match, the label is returned unchanged and the server decides.
func (e *Executor) ResolveVoice(ctx context.Context, label string) ResolvedVoice {
	rv := ResolvedVoice{Requested: label, ID: label}
	if label == "" {
		return rv
	}

	catalog, err := e.ListVoices(ctx)
	if err != nil {
		e.log.Debug().Err(err).Str("voice", label).Msg("voice catalog unavailable, using label as id")
		return rv
	}
	if id, ok := MatchVoice(catalog, label); ok {
		rv.ID = id
	}
	return rv
}

// MatchVoice looks label up in catalog. An exact id match anywhere in the
// catalog wins over a name match on an earlier entry, overriding catalog
// order, so resolving a canonical id is idempotent. Otherwise entries
// are scanned in order for an exact name match, then a normalized name
// match; the first matching entry wins.
func MatchVoice(catalog []Voice, label string) (string, bool) {
	for _, v := range catalog {
		if v.ID != "" && v.ID == label {
			return v.ID, true
		}
	}
	norm := NormalizeLabel(label)
	for _, v := range catalog {
		if v.ID == "" || v.Name == "" {
			continue
		}
		if v.Name == label {
			return v.ID, true
		}
		if norm != "" && NormalizeLabel(v.Name) == norm {
			return v.ID, true
		}
	}
	return "", false
}

// NormalizeLabel lowercases s and drops every non-alphanumeric character.
func NormalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
