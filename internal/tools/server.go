// Package tools publishes the editor and runtime operations as MCP tools,
// resources and prompts.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hktproto/hktmcp/internal/editor"
	"github.com/hktproto/hktmcp/internal/game"
	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/notify"
)

// ServerName is the MCP implementation name.
const ServerName = "hkt-unreal"

// Runtime controls the runtime bridge connection.
type Runtime interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	URL() string
}

// Deps are the collaborators the MCP surface forwards to.
type Deps struct {
	Editor        *editor.Editor
	Game          *game.Game
	Runtime       Runtime
	Notifications *notify.Hub
	// Status returns the document served as unreal://server/status.
	Status func(ctx context.Context) any
}

type handlers struct {
	Deps
}

type entry struct {
	tool   mcp.Tool
	handle server.ToolHandlerFunc
}

// NewServer builds the MCP server with every tool, resource and prompt registered.
func NewServer(d Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)
	h := &handlers{Deps: d}
	for _, e := range h.catalog() {
		s.AddTool(e.tool, logged(e.tool.Name, e.handle))
	}
	h.addResources(s)
	addPrompts(s)
	return s
}

// catalog lists every tool in the order clients see them.
func (h *handlers) catalog() []entry {
	var out []entry
	out = append(out, h.assetTools()...)
	out = append(out, h.levelTools()...)
	out = append(out, h.queryTools()...)
	out = append(out, h.editorTools()...)
	out = append(out, h.runtimeTools()...)
	out = append(out, h.utilityTools()...)
	return out
}

func logged(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		logx.Log.Info().Str("tool", name).Interface("arguments", req.GetArguments()).Msg("calling tool")
		res, err := next(ctx, req)
		ev := logx.Log.Debug()
		if err != nil || (res != nil && res.IsError) {
			ev = logx.Log.Warn()
		}
		ev.Err(err).Str("tool", name).Dur("elapsed", time.Since(start)).Msg("tool finished")
		return res, err
	}
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// rawResult renders a JSON document returned by the editor, re-indented when valid.
func rawResult(raw json.RawMessage) (*mcp.CallToolResult, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return mcp.NewToolResultText(string(raw)), nil
	}
	return jsonResult(v)
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func message(ok bool, success, failure string) string {
	if ok {
		return success
	}
	return failure
}
