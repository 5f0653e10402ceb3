package main

import (
	"fmt"
	"os"

	"github.com/arguingbananas/eleven/internal/audio"
	"github.com/arguingbananas/eleven/internal/transcript"
)

type CleanCmd struct {
	In  string `arg:"" help:"Transcript text file."`
	Out string `arg:"" help:"Where to write the cleaned transcript."`
}

func (c *CleanCmd) Run(app *App) error {
	path, err := audio.ResolveFile(c.In)
	if err != nil {
		return inputError(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.In, err)
	}
	if err := writeText(c.Out, transcript.Clean(string(data))); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	fmt.Fprintf(app.stdout, "Wrote cleaned transcript: %s\n", c.Out)
	return nil
}
