package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) queryTools() []entry {
	return []entry{
		{
			tool: mcp.NewTool("search_classes",
				mcp.WithDescription("Search for classes by name"),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
				mcp.WithBoolean("blueprint_only", mcp.Description("Search only Blueprint classes")),
			),
			handle: h.searchClasses,
		},
		{
			tool: mcp.NewTool("get_class_properties",
				mcp.WithDescription("Get all properties of a class"),
				mcp.WithString("class_name", mcp.Required(), mcp.Description("Name of the class")),
			),
			handle: h.getClassProperties,
		},
		{
			tool: mcp.NewTool("get_project_structure",
				mcp.WithDescription("Get the folder structure of the project"),
				mcp.WithString("root_path", mcp.Description("Root path to start from (default: '/Game')")),
			),
			handle: h.getProjectStructure,
		},
		{
			tool:   mcp.NewTool("get_level_info", mcp.WithDescription("Get information about the current level")),
			handle: h.getLevelInfo,
		},
	}
}

func (h *handlers) searchClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return errorResult(err)
	}
	bpOnly := req.GetBool("blueprint_only", false)
	classes, err := h.Editor.SearchClasses(ctx, query, bpOnly)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		Query         string            `json:"query"`
		BlueprintOnly bool              `json:"blueprint_only"`
		Count         int               `json:"count"`
		Classes       []json.RawMessage `json:"classes"`
	}{query, bpOnly, len(classes), classes})
}

func (h *handlers) getClassProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := req.RequireString("class_name")
	if err != nil {
		return errorResult(err)
	}
	props, err := h.Editor.GetClassProperties(ctx, class)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		ClassName  string            `json:"class_name"`
		Count      int               `json:"count"`
		Properties []json.RawMessage `json:"properties"`
	}{class, len(props), props})
}

func (h *handlers) getProjectStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.Editor.GetProjectStructure(ctx, req.GetString("root_path", ""))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(res)
}

func (h *handlers) getLevelInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.Editor.GetCurrentLevelInfo(ctx)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(res)
}
