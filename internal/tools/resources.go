package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hktproto/hktmcp/internal/notify"
)

const (
	ProjectInfoURI   = "unreal://project/info"
	CurrentLevelURI  = "unreal://level/current"
	NotificationsURI = "unreal://runtime/notifications"
	ServerStatusURI  = "unreal://server/status"
)

const jsonMIME = "application/json"

func (h *handlers) addResources(s *server.MCPServer) {
	s.AddResource(mcp.NewResource(ProjectInfoURI, "Project Information",
		mcp.WithResourceDescription("Current Unreal Engine project information"),
		mcp.WithMIMEType(jsonMIME),
	), h.readProjectInfo)
	s.AddResource(mcp.NewResource(CurrentLevelURI, "Current Level",
		mcp.WithResourceDescription("Information about the currently open level"),
		mcp.WithMIMEType(jsonMIME),
	), h.readCurrentLevel)
	s.AddResource(mcp.NewResource(NotificationsURI, "Runtime Notifications",
		mcp.WithResourceDescription("Most recent notifications pushed by the running game"),
		mcp.WithMIMEType(jsonMIME),
	), h.readNotifications)
	s.AddResource(mcp.NewResource(ServerStatusURI, "Server Status",
		mcp.WithResourceDescription("Runtime bridge connection state and pending calls"),
		mcp.WithMIMEType(jsonMIME),
	), h.readStatus)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: jsonMIME, Text: string(b)},
	}, nil
}

func (h *handlers) readProjectInfo(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.Editor.ProjectInfo(ctx))
}

func (h *handlers) readCurrentLevel(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info, err := h.Editor.GetCurrentLevelInfo(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, info)
}

func (h *handlers) readNotifications(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc := struct {
		Stats  notify.Stats   `json:"stats"`
		Events []notify.Event `json:"events"`
	}{Events: []notify.Event{}}
	if h.Notifications != nil {
		doc.Stats = h.Notifications.Stats()
		doc.Events = h.Notifications.Recent(0)
	}
	return jsonContents(req.Params.URI, doc)
}

func (h *handlers) readStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var doc any = map[string]any{"runtime_connected": h.Runtime.IsConnected()}
	if h.Status != nil {
		doc = h.Status(ctx)
	}
	return jsonContents(req.Params.URI, doc)
}
