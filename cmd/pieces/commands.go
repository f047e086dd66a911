package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/germanamz/piecesllm/pkg/mcpserver"
	"github.com/germanamz/piecesllm/pkg/piecesos"
)

var errNoPrompt = errors.New("a prompt is required")

func runAsk(ctx context.Context, args []string) error {
	fs, o := newFlagSet("ask", "<prompt>", "Ask one question and print the answer.")
	raw := fs.Bool("raw", false, "print the answer without markdown rendering")
	_ = fs.Parse(args)

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return errNoPrompt
	}

	s, err := o.setup(ctx, os.Stdout)
	if err != nil {
		return err
	}

	answer, err := s.llm.Call(ctx, prompt)
	if err != nil {
		return err
	}

	if *raw {
		fmt.Println(answer)
		return nil
	}

	initMarkdownRenderer()
	fmt.Println(renderMarkdown(answer))

	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs, o := newFlagSet("generate", "<prompt>...", "Ask each argument as a separate question, in order.")
	_ = fs.Parse(args)

	prompts := fs.Args()
	if len(prompts) == 0 {
		return errNoPrompt
	}

	s, err := o.setup(ctx, os.Stdout)
	if err != nil {
		return err
	}

	res, err := s.llm.Generate(ctx, prompts)
	if err != nil {
		return err
	}

	initMarkdownRenderer()

	for i, text := range res.Texts() {
		fmt.Println(promptHeading(i, prompts[i]))
		fmt.Println(renderMarkdown(text))
	}

	return nil
}

func runStream(ctx context.Context, args []string) error {
	fs, o := newFlagSet("stream", "<prompt>", "Ask one question and print the answer as it arrives.")
	_ = fs.Parse(args)

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return errNoPrompt
	}

	s, err := o.setup(ctx, os.Stdout)
	if err != nil {
		return err
	}

	streamer, ok := s.llm.(llms.Streamer)
	if !ok {
		return fmt.Errorf("%s backend cannot stream", s.llm.Type())
	}

	for chunk, err := range streamer.Stream(ctx, prompt) {
		if err != nil {
			fmt.Println()
			return err
		}
		fmt.Print(chunk.Text)
	}
	fmt.Println()

	return nil
}

func runModels(ctx context.Context, args []string) error {
	fs, o := newFlagSet("models", "", "List the models Pieces OS supports.")
	pick := fs.Bool("pick", false, "choose the copilot model interactively and save it to the config file")
	_ = fs.Parse(args)

	s, err := o.setup(ctx, os.Stdout)
	if err != nil {
		return err
	}

	if !*pick {
		fmt.Print(formatModels(s.client.Models(), s.cfg.Model))
		return nil
	}

	names := s.adapter.SupportedModels()
	if len(names) == 0 {
		return errors.New("pieces os reports no models")
	}

	choice := s.cfg.Model
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Copilot model").
			Options(huh.NewOptions(names...)...).
			Value(&choice),
	)).Run(); err != nil {
		return err
	}

	path, err := saveModel(s.configPath, choice)
	if err != nil {
		return err
	}

	s.adapter.SetModel(choice)
	fmt.Println(dimStyle.Render("saved to " + path))

	return nil
}

// saveModel writes choice to the config file the session loaded, or to
// defaultConfigPath when none was used, and returns the path written. Only
// the model key changes; env overrides of this run are not persisted.
func saveModel(configPath, choice string) (string, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath
	}

	if err := piecesos.SaveModel(path, choice); err != nil {
		return "", err
	}

	return path, nil
}

func runMCP(ctx context.Context, args []string) error {
	fs, o := newFlagSet("mcp", "", "Serve the copilot as MCP tools over stdin/stdout.")
	_ = fs.Parse(args)

	// Stdout carries the MCP protocol, so notices go to stderr.
	s, err := o.setup(ctx, os.Stderr)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "serving mcp", "version", version)

	return mcpserver.New("pieces", version, s.llm).Serve(ctx, os.Stdin, os.Stdout)
}
