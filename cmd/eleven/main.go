package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/arguingbananas/eleven/internal/audio"
	"github.com/arguingbananas/eleven/internal/config"
	"github.com/arguingbananas/eleven/internal/metrics"
	"github.com/arguingbananas/eleven/internal/speech"
)

var version = "dev"

type CLI struct {
	EnvFile     string           `name:"env-file" help:"Path to .env file." default:".env"`
	APIKey      string           `name:"api-key" help:"ElevenLabs API key (overrides ELEVENLABS_API_KEY)."`
	LogLevel    string           `name:"log-level" help:"Log level: debug, info, warn, error."`
	ForceHTTP   bool             `name:"force-http" help:"Skip the vendor client and call the raw HTTP API."`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus textfile metrics to this path on exit."`
	Version     kong.VersionFlag `help:"Print version and exit."`

	Transcribe TranscribeCmd `cmd:"" help:"Transcribe an audio file with ElevenLabs speech-to-text."`
	Synthesize SynthesizeCmd `cmd:"" help:"Synthesize speech from text with ElevenLabs text-to-speech."`
	Voices     VoicesCmd     `cmd:"" help:"List the voices available to the account."`
	Clean      CleanCmd      `cmd:"" help:"Clean a transcript file (cues, fillers, repeated sentences)."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code:
// 0 on success, 2 for credential and input errors, 1 for everything else.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("eleven"),
		kong.Description("Command-line access to the ElevenLabs speech API."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(config.Overrides{
		EnvFile:     cli.EnvFile,
		APIKey:      cli.APIKey,
		LogLevel:    cli.LogLevel,
		STTEndpoint: cli.Transcribe.Endpoint,
		BaseURL:     firstNonEmpty(cli.Synthesize.Endpoint, cli.Voices.Endpoint),
		Model:       cli.Transcribe.Model,
		ForceHTTP:   cli.ForceHTTP,
		MetricsFile: cli.MetricsFile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 2
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(level)

	command := commandName(kctx.Command())
	runStats := metrics.NewRunCollector(command, version)
	log.Debug().Str("version", version).Str("command", command).Msg("eleven starting")

	app := &App{
		ctx:    ctx,
		cfg:    cfg,
		log:    log,
		stdout: stdout,
		stderr: stderr,
	}
	err = kctx.Run(app)
	runStats.Finish(err == nil)

	if cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsFile, runStats); werr != nil {
			log.Warn().Err(werr).Str("path", cfg.MetricsFile).Msg("failed to write metrics")
		}
	}

	if err != nil {
		fmt.Fprintln(stderr, displayError(err))
		return exitCode(err)
	}
	return 0
}

// exitError carries an exit code and an optional message prefix.
type exitError struct {
	code   int
	prefix string
	err    error
}

func (e *exitError) Error() string {
	if e.prefix == "" {
		return e.err.Error()
	}
	return e.prefix + ": " + e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func inputError(err error) error { return &exitError{code: 2, err: err} }

func failure(prefix string, err error) error { return &exitError{code: 1, prefix: prefix, err: err} }

func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, config.ErrMissingCredential),
		errors.Is(err, config.ErrMalformedCredential),
		errors.Is(err, audio.ErrFileNotFound),
		errors.Is(err, speech.ErrNoText):
		return 2
	default:
		return 1
	}
}

func displayError(err error) string {
	var ee *exitError
	if errors.As(err, &ee) && ee.prefix != "" {
		return ee.Error()
	}
	return "Error: " + err.Error()
}

// commandName returns the subcommand word of a kong command path such as
// "transcribe <file>".
func commandName(path string) string {
	if fields := strings.Fields(path); len(fields) > 0 {
		return fields[0]
	}
	return "eleven"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
