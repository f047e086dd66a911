package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/germanamz/piecesllm/pkg/llms/pieces"
	"github.com/germanamz/piecesllm/pkg/piecesos"
	"github.com/joho/godotenv"
)

// defaultConfigPath is used when -config is not given and the file exists.
const defaultConfigPath = "pieces.yaml"

// options are the flags shared by every command.
type options struct {
	configPath string
	envFile    string
	model      string
	verbose    bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (default: "+defaultConfigPath+" if present)")
	fs.StringVar(&o.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.StringVar(&o.model, "model", "", "model name reported by the backend")
	fs.BoolVar(&o.verbose, "verbose", false, "log requests to stderr")
}

func newFlagSet(name, args, about string) (*flag.FlagSet, *options) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pieces %s [flags] %s\n\n%s\n\nFlags:\n", name, args, about)
		fs.PrintDefaults()
	}

	o := &options{}
	o.register(fs)

	return fs, o
}

// session bundles what a command needs after setup.
type session struct {
	cfg        piecesos.Config
	configPath string
	client     *piecesos.Client
	adapter    *pieces.Adapter
	llm        llms.LLM
	log        *slog.Logger
}

// setup loads the environment and configuration, connects to Pieces OS and
// builds the adapter. The adapter prints its notices to out.
func (o *options) setup(ctx context.Context, out io.Writer) (*session, error) {
	if err := loadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	path := resolveConfigPath(o.configPath)

	cfg, err := piecesos.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log := newLogger(o.verbose)

	client, err := piecesos.Connect(ctx, cfg, piecesos.WithLogger(log))
	if err != nil {
		return nil, err
	}

	adapter := pieces.New(client, pieces.WithOutput(out), pieces.WithLogger(log))
	if o.model != "" {
		adapter.SetModel(o.model)
	}

	return &session{
		cfg:        cfg,
		configPath: path,
		client:     client,
		adapter:    adapter,
		llm:        llms.WithLogger(adapter, log),
		log:        log,
	}, nil
}

// loadDotEnv loads environment variables from path. A missing file is not
// an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the explicit path, else defaultConfigPath when it
// exists, else "" (defaults and environment only).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}

	return ""
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
