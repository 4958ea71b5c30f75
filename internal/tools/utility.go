package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) utilityTools() []entry {
	return []entry{
		{
			tool:   mcp.NewTool("get_viewport_camera", mcp.WithDescription("Get the current viewport camera position and rotation")),
			handle: h.getViewportCamera,
		},
		{
			tool: mcp.NewTool("set_viewport_camera",
				mcp.WithDescription("Set the viewport camera position and rotation"),
				mcp.WithObject("location", mcp.Required(), mcp.Description("Camera location"), mcp.Properties(vectorSchema)),
				mcp.WithObject("rotation", mcp.Required(), mcp.Description("Camera rotation"), mcp.Properties(rotatorSchema)),
			),
			handle: h.setViewportCamera,
		},
		{
			tool: mcp.NewTool("focus_actor",
				mcp.WithDescription("Move the viewport camera to look at an actor"),
				mcp.WithString("actor_name", mcp.Required(), mcp.Description("Name or label of the actor")),
			),
			handle: h.focusActor,
		},
		{
			tool: mcp.NewTool("show_notification",
				mcp.WithDescription("Show a notification in the editor"),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message to display")),
				mcp.WithNumber("duration", mcp.Description("Duration in seconds (default: 3.0)")),
			),
			handle: h.showNotification,
		},
	}
}

func (h *handlers) getViewportCamera(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.Editor.GetViewportCamera(ctx)
	if err != nil {
		return errorResult(err)
	}
	var cam struct {
		Location json.RawMessage `json:"location"`
		Rotation json.RawMessage `json:"rotation"`
	}
	if err := json.Unmarshal(res, &cam); err != nil {
		return rawResult(res)
	}
	return jsonResult(map[string]any{
		"location": orNull(cam.Location),
		"rotation": orNull(cam.Rotation),
		"success":  len(cam.Location) > 0,
	})
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func (h *handlers) setViewportCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	loc, ok, err := vectorArg(args, "location")
	if err != nil {
		return errorResult(err)
	}
	if !ok {
		return mcp.NewToolResultError("missing location"), nil
	}
	rot, ok, err := rotatorArg(args, "rotation", true)
	if err != nil {
		return errorResult(err)
	}
	if !ok {
		return mcp.NewToolResultError("missing rotation"), nil
	}
	moved, err := h.Editor.SetViewportCamera(ctx, loc.vector(), rot.rotator())
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"location": loc,
		"rotation": rot,
		"success":  moved,
		"message":  message(moved, "Camera moved successfully", "Failed to move camera"),
	})
}

func (h *handlers) focusActor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("actor_name")
	if err != nil {
		return errorResult(err)
	}
	ok, err := h.Editor.FocusActor(ctx, name)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"actor_name": name,
		"success":    ok,
		"message":    message(ok, "Focused on actor: "+name, "Actor not found"),
	})
}

func (h *handlers) showNotification(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := req.RequireString("message")
	if err != nil {
		return errorResult(err)
	}
	duration := req.GetFloat("duration", 3)
	if err := h.Editor.ShowNotification(ctx, msg, duration); err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"message":  msg,
		"duration": duration,
		"success":  true,
	})
}
