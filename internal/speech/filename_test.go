package speech

import (
	"path/filepath"
	"testing"
)

func TestNormalizeOutputFilename(t *testing.T) {
	tests := []struct {
		name  string
		label string
		path  string
		want  string
	}{
		{"plain", "Andrew Cohan", "generated/gettysburg.mp3", "generated/andrewcohan_gettysburg.mp3"},
		{"already_prefixed", "andrewcohan", "andrewcohan_gettysburg.mp3", "andrewcohan_gettysburg.mp3"},
		{"already_prefixed_case", "andrewcohan", "AndrewCohan_gettysburg.mp3", "AndrewCohan_gettysburg.mp3"},
		{"trailing_label", "andrewcohan", "gettysburg_andrewcohan.mp3", "andrewcohan_gettysburg.mp3"},
		{"trailing_label_dash", "andrewcohan", "gettysburg-andrewcohan.mp3", "andrewcohan_gettysburg.mp3"},
		{"leading_label_dot", "andrewcohan", "andrewcohan.gettysburg.mp3", "andrewcohan_gettysburg.mp3"},
		{"middle_label", "andrewcohan", "a-andrewcohan-b.wav", "andrewcohan_a-b.wav"},
		{"label_only", "andrewcohan", "andrewcohan.mp3", "andrewcohan_andrewcohan.mp3"},
		{"repeated_label_only", "andrewcohan", "andrewcohan-andrewcohan.mp3", "andrewcohan_andrewcohan.mp3"},
		{"repeated_label_keeps_case", "x", "X-X.mp3", "x_X.mp3"},
		{"label_trailing_dot", "andrewcohan", "andrewcohan..mp3", "andrewcohan_andrewcohan.mp3"},
		{"substring_not_token", "rachel", "rachelle.mp3", "rachel_rachelle.mp3"},
		{"no_extension", "alloy", "out/speech", "out/alloy_speech"},
		{"empty_label", "!!", "out/speech.mp3", "out/speech.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOutputFilename(tt.label, filepath.FromSlash(tt.path))
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("NormalizeOutputFilename(%q, %q) = %q, want %q", tt.label, tt.path, got, want)
			}
		})
	}
}

func TestNormalizeOutputFilename_Idempotent(t *testing.T) {
	for _, p := range []string{"gettysburg_andrewcohan.mp3", "andrewcohan.mp3", "x/y.wav"} {
		once := NormalizeOutputFilename("Andrew Cohan", p)
		twice := NormalizeOutputFilename("Andrew Cohan", once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", p, once, twice)
		}
	}
}

func TestTryNormalizeOutputFilename(t *testing.T) {
	if _, ok := TryNormalizeOutputFilename("", "a.mp3"); ok {
		t.Error("empty label: ok = true, want false")
	}
	if got, ok := TryNormalizeOutputFilename("v", "dir/"); ok || got != "dir/" {
		t.Errorf("directory path = (%q, %v), want (\"dir/\", false)", got, ok)
	}
	if got, ok := TryNormalizeOutputFilename("v", "a.mp3"); !ok || got != "v_a.mp3" {
		t.Errorf("TryNormalizeOutputFilename = (%q, %v), want (\"v_a.mp3\", true)", got, ok)
	}
}
