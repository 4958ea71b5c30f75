package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) assetTools() []entry {
	return []entry{
		{
			tool: mcp.NewTool("list_assets",
				mcp.WithDescription("List assets in a specified path. Returns asset names, classes, and paths."),
				mcp.WithString("path", mcp.Required(), mcp.Description("Asset path to search (e.g., '/Game/Blueprints')")),
				mcp.WithString("class_filter", mcp.Description("Optional class name to filter (e.g., 'Blueprint', 'StaticMesh')")),
			),
			handle: h.listAssets,
		},
		{
			tool: mcp.NewTool("get_asset_info",
				mcp.WithDescription("Get detailed information about a specific asset"),
				mcp.WithString("asset_path", mcp.Required(), mcp.Description("Full asset path (e.g., '/Game/Blueprints/BP_Player')")),
			),
			handle: h.getAssetInfo,
		},
		{
			tool: mcp.NewTool("search_assets",
				mcp.WithDescription("Search for assets by name across the project"),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
				mcp.WithString("class_filter", mcp.Description("Optional class name to filter results")),
			),
			handle: h.searchAssets,
		},
		{
			tool: mcp.NewTool("modify_asset",
				mcp.WithDescription("Modify a property of an asset"),
				mcp.WithString("asset_path", mcp.Required(), mcp.Description("Full asset path")),
				mcp.WithString("property_name", mcp.Required(), mcp.Description("Property name to modify")),
				mcp.WithString("new_value", mcp.Required(), mcp.Description("New value for the property")),
			),
			handle: h.modifyAsset,
		},
	}
}

func (h *handlers) listAssets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return errorResult(err)
	}
	filter := req.GetString("class_filter", "")
	assets, err := h.Editor.ListAssets(ctx, path, filter)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		Path        string            `json:"path"`
		ClassFilter string            `json:"class_filter"`
		Count       int               `json:"count"`
		Assets      []json.RawMessage `json:"assets"`
	}{path, filter, len(assets), assets})
}

func (h *handlers) getAssetInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("asset_path")
	if err != nil {
		return errorResult(err)
	}
	details, err := h.Editor.GetAssetDetails(ctx, path)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(details)
}

func (h *handlers) searchAssets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return errorResult(err)
	}
	filter := req.GetString("class_filter", "")
	assets, err := h.Editor.SearchAssets(ctx, query, filter)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		Query       string            `json:"query"`
		ClassFilter string            `json:"class_filter"`
		Count       int               `json:"count"`
		Assets      []json.RawMessage `json:"assets"`
	}{query, filter, len(assets), assets})
}

func (h *handlers) modifyAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("asset_path")
	if err != nil {
		return errorResult(err)
	}
	prop, err := req.RequireString("property_name")
	if err != nil {
		return errorResult(err)
	}
	value, err := req.RequireString("new_value")
	if err != nil {
		return errorResult(err)
	}
	ok, err := h.Editor.ModifyAssetProperty(ctx, path, prop, value)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"asset_path":    path,
		"property_name": prop,
		"new_value":     value,
		"success":       ok,
		"message":       message(ok, "Property modified successfully", "Failed to modify property"),
	})
}
