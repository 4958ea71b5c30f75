package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) editorTools() []entry {
	return []entry{
		{
			tool:   mcp.NewTool("start_pie", mcp.WithDescription("Start Play In Editor (PIE) session")),
			handle: h.startPIE,
		},
		{
			tool:   mcp.NewTool("stop_pie", mcp.WithDescription("Stop the current PIE session")),
			handle: h.stopPIE,
		},
		{
			tool:   mcp.NewTool("is_pie_running", mcp.WithDescription("Check whether a PIE session is running")),
			handle: h.isPIERunning,
		},
		{
			tool: mcp.NewTool("execute_console_command",
				mcp.WithDescription("Execute a console command in the editor"),
				mcp.WithString("command", mcp.Required(), mcp.Description("Console command to execute")),
			),
			handle: h.executeConsoleCommand,
		},
	}
}

func (h *handlers) runtimeTools() []entry {
	return []entry{
		{
			tool:   mcp.NewTool("get_game_state", mcp.WithDescription("Get current game state (requires running PIE or connected runtime)")),
			handle: h.getGameState,
		},
		{
			tool: mcp.NewTool("get_runtime_actors",
				mcp.WithDescription("Get actors from the running game"),
				mcp.WithString("class_filter", mcp.Description("Optional class filter")),
			),
			handle: h.getRuntimeActors,
		},
		{
			tool:   mcp.NewTool("get_player_info", mcp.WithDescription("Get player information from the running game")),
			handle: h.getPlayerInfo,
		},
		{
			tool: mcp.NewTool("teleport_player",
				mcp.WithDescription("Teleport the player to a location in the running game"),
				mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate")),
				mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate")),
				mcp.WithNumber("z", mcp.Required(), mcp.Description("Z coordinate")),
			),
			handle: h.teleportPlayer,
		},
		{
			tool: mcp.NewTool("runtime_command",
				mcp.WithDescription("Execute a console command in the running game"),
				mcp.WithString("command", mcp.Required(), mcp.Description("Console command")),
			),
			handle: h.runtimeCommand,
		},
		{
			tool:   mcp.NewTool("connect_runtime", mcp.WithDescription("Connect to the running game instance")),
			handle: h.connectRuntime,
		},
		{
			tool:   mcp.NewTool("disconnect_runtime", mcp.WithDescription("Disconnect from the running game instance")),
			handle: h.disconnectRuntime,
		},
	}
}

func (h *handlers) startPIE(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := h.Editor.StartPIE(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"success": ok,
		"message": message(ok, "PIE session started", "Failed to start PIE"),
	})
}

func (h *handlers) stopPIE(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := h.Editor.StopPIE(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"success": ok,
		"message": message(ok, "PIE session stopped", "Failed to stop PIE (maybe not running?)"),
	})
}

func (h *handlers) isPIERunning(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	running, err := h.Editor.IsPIERunning(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"is_running": running,
		"message":    message(running, "PIE is running", "PIE is not running"),
	})
}

func (h *handlers) executeConsoleCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd, err := req.RequireString("command")
	if err != nil {
		return errorResult(err)
	}
	if err := h.Editor.ExecuteCommand(ctx, cmd); err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"command": cmd,
		"success": true,
		"message": "Executed command: " + cmd,
	})
}

// Runtime tools report failures inside the payload, next to the connection
// flag, so a client can tell an absent game from a failing one.

func runtimeError(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func (h *handlers) getGameState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state any
	res, err := h.Game.GameState(ctx)
	if err != nil {
		state = map[string]any{"error": err.Error(), "connected": h.Game.Connected()}
	} else {
		state = res
	}
	return jsonResult(map[string]any{
		"connected": h.Game.Connected(),
		"state":     state,
	})
}

func (h *handlers) getRuntimeActors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := req.GetString("class_filter", "")
	out := map[string]any{"class_filter": filter}
	actors, err := h.Game.ActorList(ctx, filter)
	if err != nil {
		actors = []json.RawMessage{}
		out["error"] = err.Error()
	}
	out["connected"] = h.Game.Connected()
	out["count"] = len(actors)
	out["actors"] = actors
	return jsonResult(out)
}

func (h *handlers) getPlayerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var player any
	info, err := h.Game.PlayerInfo(ctx)
	if err != nil {
		player = runtimeError(err)
	} else {
		player = info
	}
	return jsonResult(map[string]any{
		"connected": h.Game.Connected(),
		"player":    player,
	})
}

func (h *handlers) teleportPlayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var loc xyz
	var err error
	if loc.X, err = number(args, "x", true, 0); err != nil {
		return errorResult(err)
	}
	if loc.Y, err = number(args, "y", true, 0); err != nil {
		return errorResult(err)
	}
	if loc.Z, err = number(args, "z", true, 0); err != nil {
		return errorResult(err)
	}
	out := map[string]any{"location": loc}
	err = h.Game.TeleportPlayer(ctx, loc.X, loc.Y, loc.Z)
	if err != nil {
		out["error"] = err.Error()
	}
	out["success"] = err == nil
	out["message"] = message(err == nil, "Player teleported", "Failed to teleport player")
	return jsonResult(out)
}

func (h *handlers) runtimeCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd, err := req.RequireString("command")
	if err != nil {
		return errorResult(err)
	}
	var result any
	res, err := h.Game.ExecuteConsoleCommand(ctx, cmd)
	if err != nil {
		result = runtimeError(err)
	} else {
		result = res
	}
	return jsonResult(map[string]any{
		"command":   cmd,
		"result":    result,
		"connected": h.Game.Connected(),
	})
}

func (h *handlers) connectRuntime(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := h.Runtime.Connect(ctx)
	out := map[string]any{
		"url":       h.Runtime.URL(),
		"connected": err == nil,
		"message":   message(err == nil, "Connected to runtime", "Failed to connect"),
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return jsonResult(out)
}

func (h *handlers) disconnectRuntime(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.Runtime.Disconnect(ctx); err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"connected": false,
		"message":   "Disconnected from runtime",
	})
}
