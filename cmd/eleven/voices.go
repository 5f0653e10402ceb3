package main

import (
	"fmt"
	"text/tabwriter"
)

type VoicesCmd struct {
	JSON     bool   `help:"Print the catalog as JSON."`
	Endpoint string `help:"API base URL (default ELEVENLABS_BASE_URL)."`
}

func (c *VoicesCmd) Run(app *App) error {
	if err := app.requireCredential(false); err != nil {
		return err
	}
	exec, err := app.executor()
	if err != nil {
		return err
	}
	voices, err := exec.ListVoices(app.ctx)
	if err != nil {
		return failure("Listing voices failed", err)
	}

	if c.JSON {
		return printJSON(app.stdout, voices)
	}
	tw := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, v := range voices {
		fmt.Fprintf(tw, "%s\t%s\n", v.ID, v.Name)
	}
	return tw.Flush()
}
