package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arguingbananas/eleven/internal/audio"
	"github.com/arguingbananas/eleven/internal/speech"
	"github.com/arguingbananas/eleven/internal/transcript"
)

type TranscribeCmd struct {
	File     string `arg:"" help:"Path to audio file (wav, mp3, m4a, etc.)."`
	Endpoint string `help:"STT endpoint URL for the HTTP path (default ELEVENLABS_STT_ENDPOINT)."`
	Model    string `help:"Model id (default ELEVENLABS_STT_MODEL)."`
	Out      string `help:"Save the transcript text to this path."`
	Raw      bool   `help:"Print the raw JSON response."`
	Convert  string `help:"Convert audio to mono 16 kHz WAV before upload: ${enum}." enum:"auto,always,never" default:"never"`
	Clean    bool   `help:"Clean the transcript before printing and saving."`
}

func (c *TranscribeCmd) Run(app *App) error {
	if err := app.requireCredential(true); err != nil {
		return err
	}
	path, err := audio.ResolveFile(c.File)
	if err != nil {
		return inputError(err)
	}

	mode, err := audio.ParseMode(c.Convert)
	if err != nil {
		return inputError(err)
	}
	if mode == audio.ModeAuto && !audio.Available() {
		app.log.Debug().Msg("sox not found in PATH, uploading original audio")
	}
	upload, cleanup, err := audio.Convert(app.ctx, path, mode)
	defer cleanup()
	if err != nil {
		if mode == audio.ModeAlways || errors.Is(err, audio.ErrConverterUnavailable) {
			return inputError(err)
		}
		app.log.Warn().Err(err).Msg("audio conversion failed, uploading original file")
	}

	exec, err := app.executor()
	if err != nil {
		return err
	}
	req := speech.TranscribeRequest{
		FilePath: upload,
		Endpoint: app.cfg.STTEndpoint,
		Model:    app.cfg.STTModel,
	}
	if !c.Clean {
		req.SaveTo = c.Out
	}

	var res *speech.TranscriptionResult
	err = speech.Retry(app.ctx, app.retryPolicy(), app.log, func(ctx context.Context, attempt int) error {
		r, err := exec.Transcribe(ctx, req)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return failure("Transcription failed", err)
	}

	text := res.Text
	if c.Clean && res.HasText() {
		text = transcript.Clean(res.Text)
		if c.Out != "" {
			if err := writeText(c.Out, text); err != nil {
				app.log.Warn().Err(err).Str("path", c.Out).Msg("failed to save transcript")
			}
		}
	}
	if c.Out != "" && res.HasText() {
		app.archive(c.Out)
	}

	if c.Raw {
		return printJSON(app.stdout, res.Raw)
	}
	if c.Clean && text != "" {
		_, err := fmt.Fprintln(app.stdout, text)
		return err
	}
	_, err = fmt.Fprintln(app.stdout, prettyResult(res.Raw))
	return err
}

// prettyResult renders the first of text, transcript, transcription or
// results found in data (lists joined one item per line), or the whole
// response as indented JSON when none of them has content.
func prettyResult(data map[string]any) string {
	for _, key := range []string{"text", "transcript", "transcription", "results"} {
		v, ok := data[key]
		if !ok {
			continue
		}
		if s := displayValue(v); s != "" {
			return s
		}
		break
	}
	var buf bytes.Buffer
	printJSON(&buf, data)
	return strings.TrimRight(buf.String(), "\n")
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
				continue
			}
			b, _ := json.Marshal(item)
			lines = append(lines, string(b))
		}
		return strings.Join(lines, "\n")
	case bool:
		if !val {
			return ""
		}
	case float64:
		if val == 0 {
			return ""
		}
	case map[string]any:
		if len(val) == 0 {
			return ""
		}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// printJSON writes v as indented JSON without HTML escaping.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
