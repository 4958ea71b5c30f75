package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func addPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("level_setup",
		mcp.WithPromptDescription("Generate a prompt for setting up a new level with specific requirements"),
		mcp.WithArgument("theme", mcp.ArgumentDescription("Level theme (e.g., 'sci-fi', 'fantasy', 'urban')"), mcp.RequiredArgument()),
		mcp.WithArgument("size", mcp.ArgumentDescription("Level size (small, medium, large)")),
	), levelSetupPrompt)
	s.AddPrompt(mcp.NewPrompt("actor_placement",
		mcp.WithPromptDescription("Generate a prompt for placing actors in a level"),
		mcp.WithArgument("actor_type", mcp.ArgumentDescription("Type of actors to place"), mcp.RequiredArgument()),
		mcp.WithArgument("count", mcp.ArgumentDescription("Number of actors to place")),
	), actorPlacementPrompt)
}

func argOr(args map[string]string, key, def string) string {
	if v, ok := args[key]; ok && v != "" {
		return v
	}
	return def
}

func userPrompt(desc, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(desc, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func levelSetupPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	theme := argOr(req.Params.Arguments, "theme", "default")
	size := argOr(req.Params.Arguments, "size", "medium")
	text := fmt.Sprintf(`You are helping to set up a new Unreal Engine 5 level with the following specifications:

Theme: %s
Size: %s

Please analyze the current level state and suggest:
1. What actors should be added
2. Recommended lighting setup
3. Suggested blueprint actors to spawn
4. Environment considerations

Use the available MCP tools to:
- List current actors with list_actors
- Check available assets with list_assets
- Spawn new actors with spawn_actor
- Modify existing actors with modify_actor`, theme, size)
	return userPrompt("Level setup", text), nil
}

func actorPlacementPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	actorType := argOr(req.Params.Arguments, "actor_type", "StaticMesh")
	count := argOr(req.Params.Arguments, "count", "5")
	text := fmt.Sprintf(`You are placing %s actors of type %s in the current level.

Use the following workflow:
1. Get current level info with get_level_info
2. Search for available %s assets with search_assets
3. Use spawn_actor to place each actor at appropriate positions
4. Use modify_actor to adjust transforms as needed

Consider spacing, visual composition, and gameplay requirements.`, count, actorType, actorType)
	return userPrompt("Actor placement", text), nil
}
