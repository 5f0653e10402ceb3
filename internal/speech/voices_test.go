package speech

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []Voice
		wantErr bool
	}{
		{
			name: "envelope",
			body: `{"voices":[{"voice_id":"abc","name":"Rachel"},{"voice_id":"def","name":"Adam"}]}`,
			want: []Voice{{ID: "abc", Name: "Rachel"}, {ID: "def", Name: "Adam"}},
		},
		{
			name: "bare_list_generic_id",
			body: `[{"id":"x1","name":"Alloy"}]`,
			want: []Voice{{ID: "x1", Name: "Alloy"}},
		},
		{
			name: "voice_id_preferred",
			body: `[{"voice_id":"a","id":"b"}]`,
			want: []Voice{{ID: "a"}},
		},
		{name: "empty_envelope", body: `{"voices":[]}`, want: []Voice{}},
		{name: "object_without_voices", body: `{"items":[]}`, wantErr: true},
		{name: "scalar", body: `"nope"`, wantErr: true},
		{name: "garbage", body: `<html>`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCatalog([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchVoice(t *testing.T) {
	catalog := []Voice{
		{ID: "id-rachel", Name: "Rachel"},
		{ID: "id-andrew", Name: "Andrew Cohan"},
		{ID: "Rachel", Name: "Impostor"},
		{ID: "", Name: "Ghost"},
		{ID: "id-andrew2", Name: "andrew-cohan"},
	}
	tests := []struct {
		label  string
		want   string
		wantOK bool
	}{
		{"id-rachel", "id-rachel", true},
		{"Rachel", "Rachel", true}, // id match beats name match
		{"Andrew Cohan", "id-andrew", true},
		{"andrewcohan", "id-andrew", true},
		{"ANDREW_COHAN", "id-andrew", true},
		{"Ghost", "", false},
		{"nobody", "", false},
		{"!!!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := MatchVoice(catalog, tt.label)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchVoice(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchVoice_Idempotent(t *testing.T) {
	catalog := []Voice{
		{ID: "id-a", Name: "Alpha"},
		{ID: "Alpha", Name: "Other"},
	}
	for _, label := range []string{"Alpha", "alpha", "id-a"} {
		first, ok := MatchVoice(catalog, label)
		if !ok {
			continue
		}
		second, ok := MatchVoice(catalog, first)
		if !ok || second != first {
			t.Errorf("MatchVoice(MatchVoice(%q)) = %q, want %q", label, second, first)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Andrew Cohan":  "andrewcohan",
		"andrew_cohan!": "andrewcohan",
		"Zoë-2":         "zoë2",
		"  ":            "",
	}
	for in, want := range tests {
		if got := NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveVoice(t *testing.T) {
	t.Run("vendor_catalog", func(t *testing.T) {
		vendor := &fakeVendor{voices: []Voice{{ID: "id-1", Name: "Andrew Cohan"}}}
		exec := newTestExecutor(vendor, "")
		rv := exec.ResolveVoice(context.Background(), "andrewcohan")
		assert.Equal(t, ResolvedVoice{Requested: "andrewcohan", ID: "id-1"}, rv)
		assert.True(t, rv.Resolved())
	})

	t.Run("vendor_failure_uses_http", func(t *testing.T) {
		srv := newRecordingServer(t, http.StatusOK, `{"voices":[{"voice_id":"id-9","name":"Nine"}]}`)
		vendor := &fakeVendor{voicesErr: errors.New("sdk down")}
		exec := newTestExecutor(vendor, srv.URL)
		rv := exec.ResolveVoice(context.Background(), "nine")
		assert.Equal(t, "id-9", rv.ID)
		assert.EqualValues(t, 1, srv.hits.Load())
		assert.Equal(t, "/v1/voices", srv.lastReq.URL.Path)
	})

	t.Run("catalog_failure_passthrough", func(t *testing.T) {
		srv := newRecordingServer(t, http.StatusInternalServerError, `oops`)
		exec := newTestExecutor(nil, srv.URL)
		rv := exec.ResolveVoice(context.Background(), "alloy")
		assert.Equal(t, ResolvedVoice{Requested: "alloy", ID: "alloy"}, rv)
		assert.False(t, rv.Resolved())
	})

	t.Run("no_match_passthrough", func(t *testing.T) {
		vendor := &fakeVendor{voices: []Voice{{ID: "id-1", Name: "One"}}}
		exec := newTestExecutor(vendor, "")
		rv := exec.ResolveVoice(context.Background(), "alloy")
		assert.Equal(t, "alloy", rv.ID)
	})

	t.Run("empty_label_skips_lookup", func(t *testing.T) {
		vendor := &fakeVendor{}
		exec := newTestExecutor(vendor, "")
		rv := exec.ResolveVoice(context.Background(), "")
		assert.Equal(t, "", rv.ID)
		assert.EqualValues(t, 0, vendor.voicesCalls.Load())
	})
}

func TestListVoices_HTTPError(t *testing.T) {
	srv := newRecordingServer(t, http.StatusUnauthorized, `{"detail":{"message":"bad key"}}`)
	exec := newTestExecutor(nil, srv.URL)
	_, err := exec.ListVoices(context.Background())
	require.Error(t, err)
	info := Classify(err)
	assert.Equal(t, 401, info.Status())
	assert.Equal(t, "bad key", info.Message)
}
