package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/arguingbananas/eleven/internal/audio"
	"github.com/arguingbananas/eleven/internal/speech"
)

type SynthesizeCmd struct {
	Text     string `help:"Text to synthesize." xor:"input"`
	Infile   string `help:"Text file to read input from." xor:"input"`
	Voice    string `help:"Voice id or name." default:"alloy"`
	Output   string `short:"o" help:"Output audio path." default:"generated/output.mp3"`
	Format   string `help:"Audio format: ${enum}." enum:"mp3,wav,pcm,ulaw" default:"mp3"`
	Endpoint string `help:"API base URL (default ELEVENLABS_BASE_URL)."`
	NoPrefix bool   `name:"no-prefix" help:"Do not prefix the output filename with the voice label."`
}

func (c *SynthesizeCmd) Run(app *App) error {
	if err := app.requireCredential(false); err != nil {
		return err
	}
	text, err := c.loadText()
	if err != nil {
		return inputError(err)
	}
	format, err := speech.ParseFormat(c.Format)
	if err != nil {
		return inputError(err)
	}

	exec, err := app.executor()
	if err != nil {
		return err
	}

	voice := exec.ResolveVoice(app.ctx, c.Voice)
	if voice.Resolved() {
		app.log.Info().Str("voice", voice.Requested).Str("voice_id", voice.ID).Msg("resolved voice")
	}

	out := c.Output
	if !c.NoPrefix {
		if p, ok := speech.TryNormalizeOutputFilename(c.Voice, out); ok {
			out = p
		} else {
			app.log.Warn().Str("voice", c.Voice).Str("path", out).Msg("could not prefix output filename with voice label")
		}
	}

	res, err := exec.Synthesize(app.ctx, speech.SynthesizeRequest{
		Text:    text,
		VoiceID: voice.ID,
		Target:  speech.OutputTarget{Path: out, Format: format},
	})
	if err != nil {
		if errors.Is(err, speech.ErrNoText) {
			return inputError(err)
		}
		return failure("Synthesis failed", err)
	}
	app.log.Debug().Str("via", res.Via).Msg("synthesis complete")

	fmt.Fprintf(app.stdout, "Wrote audio: %s (%d bytes)\n", res.Path, res.Bytes)
	app.archive(res.Path)
	return nil
}

// loadText returns --text or the contents of --infile. Blank input is
// ErrNoText.
func (c *SynthesizeCmd) loadText() (string, error) {
	text := c.Text
	if c.Infile != "" {
		path, err := audio.ResolveFile(c.Infile)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", c.Infile, err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: pass --text or a non-empty --infile", speech.ErrNoText)
	}
	return text, nil
}
