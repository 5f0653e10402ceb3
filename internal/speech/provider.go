package speech

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Vendor is the contract the typed ElevenLabs client must satisfy to be used
// as the preferred path. A nil Vendor means only raw HTTP is available.
type Vendor interface {
	// Transcribe uploads audio and returns the decoded JSON response.
	Transcribe(ctx context.Context, audio io.Reader, filename, model string) (map[string]any, error)

	// Synthesize returns the audio stream for text spoken by voiceID.
	// The caller must close the returned reader.
	Synthesize(ctx context.Context, text, voiceID string, format Format) (io.ReadCloser, error)

	// ListVoices returns the account's voice catalog in server order.
	ListVoices(ctx context.Context) ([]Voice, error)
}

// TranscriptionResult is the outcome of a successful transcription.
type TranscriptionResult struct {
	Text string         // "" if no alias key carried text
	Raw  map[string]any // unmodified response
	Via  string         // "sdk" or "http"
}

// HasText reports whether a transcript text was found in the response.
func (r *TranscriptionResult) HasText() bool { return r.Text != "" }

// Voice is one entry of the remote voice catalog.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ResolvedVoice pairs the label the user asked for with the id sent upstream.
type ResolvedVoice struct {
	Requested string
	ID        string
}

// Resolved reports whether the label was mapped to a different catalog id.
func (v ResolvedVoice) Resolved() bool { return v.ID != v.Requested }

// Format is an audio output format.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm"
	FormatULaw Format = "ulaw"
)

type formatInfo struct {
	mime   string
	ext    string
	vendor string // ElevenLabs output_format query value
}

var formats = map[Format]formatInfo{
	FormatMP3:  {mime: "audio/mpeg", ext: "mp3", vendor: "mp3_44100_128"},
	FormatWAV:  {mime: "audio/wav", ext: "wav", vendor: "wav_44100"},
	FormatPCM:  {mime: "audio/pcm", ext: "pcm", vendor: "pcm_16000"},
	FormatULaw: {mime: "audio/basic", ext: "ulaw", vendor: "ulaw_8000"},
}

// knownAudioExts are extensions replaced (rather than appended to) when a
// target path is coerced to its format's canonical extension.
var knownAudioExts = map[string]bool{
	".mp3": true, ".wav": true, ".pcm": true, ".ulaw": true,
	".ogg": true, ".flac": true, ".m4a": true, ".aac": true, ".opus": true,
}

// ParseFormat validates a format name. Empty means mp3.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatMP3, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("unsupported audio format %q", s)
	}
	return f, nil
}

// MIMEType is the value sent as the Accept header.
func (f Format) MIMEType() string { return formats[f.orDefault()].mime }

// Extension is the canonical file extension without the leading dot.
func (f Format) Extension() string { return formats[f.orDefault()].ext }

// VendorOutputFormat is the output_format query value for the vendor API.
func (f Format) VendorOutputFormat() string { return formats[f.orDefault()].vendor }

func (f Format) orDefault() Format {
	if _, ok := formats[f]; ok {
		return f
	}
	return FormatMP3
}

// OutputTarget is where synthesized audio goes and in which format.
type OutputTarget struct {
	Path   string
	Format Format
}

// FinalPath returns Path with its extension forced to the format's canonical
// extension. A known audio extension is replaced; anything else is kept and
// the canonical extension appended.
func (t OutputTarget) FinalPath() string {
	want := "." + t.Format.Extension()
	ext := filepath.Ext(t.Path)
	switch {
	case strings.EqualFold(ext, want):
		return t.Path
	case knownAudioExts[strings.ToLower(ext)]:
		return strings.TrimSuffix(t.Path, ext) + want
	default:
		return t.Path + want
	}
}
