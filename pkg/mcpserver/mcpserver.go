// Package mcpserver serves an LLM backend as MCP tools using the official MCP
// Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const askSchema = `{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "description": "Question to ask"}
  },
  "required": ["prompt"]
}`

// MCPServer exposes an llms.LLM over the MCP protocol. It always registers
// an "ask" tool, and a "models" tool when the LLM implements
// llms.ModelManager.
type MCPServer struct {
	server *mcp.Server
	llm    llms.LLM
}

// New creates an MCPServer with the given implementation name and version.
func New(name, version string, llm llms.LLM) *MCPServer {
	s := &MCPServer{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		llm:    llm,
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "ask",
		Description: "Ask the " + llm.Type() + " copilot a question and return its answer.",
		InputSchema: json.RawMessage(askSchema),
	}, s.handleAsk)

	if _, ok := llm.(llms.ModelManager); ok {
		s.server.AddTool(&mcp.Tool{
			Name:        "models",
			Description: "List the models the copilot supports, one per line.",
			InputSchema: json.RawMessage(`{"type":"object"}`),
		}, s.handleModels)
	}

	return s
}

// Serve answers MCP clients speaking newline-delimited JSON-RPC on in/out,
// typically a process's stdin and stdout. It returns when ctx is done or the
// client disconnects. in and out are left open.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: unclosable{out},
	})
}

func (s *MCPServer) run(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

func (s *MCPServer) handleAsk(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Prompt string `json:"prompt"`
	}

	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(err), nil
		}
	}

	if strings.TrimSpace(args.Prompt) == "" {
		return errorResult(errors.New("prompt is required")), nil
	}

	answer, err := s.llm.Call(ctx, args.Prompt)
	if err != nil {
		return errorResult(err), nil
	}

	return textResult(answer), nil
}

func (s *MCPServer) handleModels(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mm, _ := s.llm.(llms.ModelManager)

	return textResult(strings.Join(mm.SupportedModels(), "\n")), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// unclosable keeps the transport from closing the caller's stdout.
type unclosable struct{ io.Writer }

func (unclosable) Close() error { return nil }
