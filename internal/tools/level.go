package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) levelTools() []entry {
	return []entry{
		{
			tool: mcp.NewTool("list_actors",
				mcp.WithDescription("List all actors in the current level"),
				mcp.WithString("class_filter", mcp.Description("Optional class name to filter actors")),
			),
			handle: h.listActors,
		},
		{
			tool: mcp.NewTool("spawn_actor",
				mcp.WithDescription("Spawn a new actor in the level from a Blueprint"),
				mcp.WithString("blueprint_path", mcp.Required(), mcp.Description("Path to the Blueprint asset")),
				mcp.WithObject("location", mcp.Required(), mcp.Description("Spawn location"), mcp.Properties(vectorSchema)),
				mcp.WithObject("rotation", mcp.Description("Spawn rotation (optional)"), mcp.Properties(rotatorSchema)),
				mcp.WithString("label", mcp.Description("Actor label (optional)")),
			),
			handle: h.spawnActor,
		},
		{
			tool: mcp.NewTool("spawn_actor_by_class",
				mcp.WithDescription("Spawn a new actor in the level from a native class name"),
				mcp.WithString("class_name", mcp.Required(), mcp.Description("Class name (e.g., 'PointLight', 'StaticMeshActor')")),
				mcp.WithObject("location", mcp.Required(), mcp.Description("Spawn location"), mcp.Properties(vectorSchema)),
				mcp.WithObject("rotation", mcp.Description("Spawn rotation (optional)"), mcp.Properties(rotatorSchema)),
			),
			handle: h.spawnActorByClass,
		},
		{
			tool: mcp.NewTool("modify_actor",
				mcp.WithDescription("Modify an actor's transform or properties"),
				mcp.WithString("actor_name", mcp.Required(), mcp.Description("Name or label of the actor")),
				mcp.WithObject("location", mcp.Description("New location (optional)"), mcp.Properties(vectorSchema)),
				mcp.WithObject("rotation", mcp.Description("New rotation (optional)"), mcp.Properties(rotatorSchema)),
				mcp.WithObject("scale", mcp.Description("New scale (optional)"), mcp.Properties(vectorSchema)),
			),
			handle: h.modifyActor,
		},
		{
			tool: mcp.NewTool("delete_actor",
				mcp.WithDescription("Delete an actor from the level"),
				mcp.WithString("actor_name", mcp.Required(), mcp.Description("Name or label of the actor to delete")),
			),
			handle: h.deleteActor,
		},
		{
			tool: mcp.NewTool("select_actor",
				mcp.WithDescription("Select an actor in the editor viewport"),
				mcp.WithString("actor_name", mcp.Required(), mcp.Description("Name or label of the actor to select")),
			),
			handle: h.selectActor,
		},
		{
			tool:   mcp.NewTool("get_selected_actors", mcp.WithDescription("List the actors currently selected in the editor")),
			handle: h.getSelectedActors,
		},
		{
			tool: mcp.NewTool("open_level",
				mcp.WithDescription("Open a level in the editor"),
				mcp.WithString("level_path", mcp.Required(), mcp.Description("Level asset path (e.g., '/Game/Maps/MainMap')")),
			),
			handle: h.openLevel,
		},
		{
			tool:   mcp.NewTool("save_level", mcp.WithDescription("Save the current level")),
			handle: h.saveLevel,
		},
	}
}

func (h *handlers) listActors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := req.GetString("class_filter", "")
	actors, err := h.Editor.ListActors(ctx, filter)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		ClassFilter string            `json:"class_filter"`
		Count       int               `json:"count"`
		Actors      []json.RawMessage `json:"actors"`
	}{filter, len(actors), actors})
}

func (h *handlers) spawnActor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bp, err := req.RequireString("blueprint_path")
	if err != nil {
		return errorResult(err)
	}
	args := req.GetArguments()
	loc, ok, err := vectorArg(args, "location")
	if err != nil {
		return errorResult(err)
	}
	if !ok {
		return mcp.NewToolResultError("missing location"), nil
	}
	rot, _, err := rotatorArg(args, "rotation", false)
	if err != nil {
		return errorResult(err)
	}
	label := req.GetString("label", "")
	name, err := h.Editor.SpawnActor(ctx, bp, loc.vector(), rot.rotator(), label)
	if err != nil {
		return errorResult(err)
	}
	spawned := name != ""
	msg := "Failed to spawn actor"
	if spawned {
		msg = "Spawned actor: " + name
	}
	return jsonResult(map[string]any{
		"blueprint_path": bp,
		"location":       loc,
		"rotation":       rot,
		"label":          label,
		"success":        spawned,
		"actor_name":     name,
		"message":        msg,
	})
}

func (h *handlers) spawnActorByClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := req.RequireString("class_name")
	if err != nil {
		return errorResult(err)
	}
	args := req.GetArguments()
	loc, ok, err := vectorArg(args, "location")
	if err != nil {
		return errorResult(err)
	}
	if !ok {
		return mcp.NewToolResultError("missing location"), nil
	}
	rot, _, err := rotatorArg(args, "rotation", false)
	if err != nil {
		return errorResult(err)
	}
	name, err := h.Editor.SpawnActorByClass(ctx, class, loc.vector(), rot.rotator())
	if err != nil {
		return errorResult(err)
	}
	spawned := name != ""
	msg := "Failed to spawn actor"
	if spawned {
		msg = "Spawned actor: " + name
	}
	return jsonResult(map[string]any{
		"class_name": class,
		"location":   loc,
		"rotation":   rot,
		"success":    spawned,
		"actor_name": name,
		"message":    msg,
	})
}

// modifyActor fills transform parts the caller left out from the actor's
// current transform, since the editor applies all three at once.
func (h *handlers) modifyActor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("actor_name")
	if err != nil {
		return errorResult(err)
	}
	args := req.GetArguments()
	loc, hasLoc, err := vectorArg(args, "location")
	if err != nil {
		return errorResult(err)
	}
	rot, hasRot, err := rotatorArg(args, "rotation", false)
	if err != nil {
		return errorResult(err)
	}
	scale, hasScale, err := vectorArg(args, "scale")
	if err != nil {
		return errorResult(err)
	}

	target := name
	if !hasLoc || !hasRot || !hasScale {
		current, found, err := h.Editor.FindActor(ctx, name)
		if err != nil {
			return errorResult(err)
		}
		if !found {
			return jsonResult(map[string]any{
				"actor_name": name,
				"success":    false,
				"message":    "Actor not found: " + name,
			})
		}
		target = current.Name
		if !hasLoc {
			loc = xyz{current.Location.X, current.Location.Y, current.Location.Z}
		}
		if !hasRot {
			rot = pyr{current.Rotation.Pitch, current.Rotation.Yaw, current.Rotation.Roll}
		}
		if !hasScale {
			scale = xyz{1, 1, 1}
			if current.Scale != nil {
				scale = xyz{current.Scale.X, current.Scale.Y, current.Scale.Z}
			}
		}
	}

	ok, err := h.Editor.ModifyActorTransform(ctx, target, loc.vector(), rot.rotator(), scale.vector())
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"actor_name": name,
		"location":   loc,
		"rotation":   rot,
		"scale":      scale,
		"success":    ok,
		"message":    message(ok, "Actor modified successfully", "Failed to modify actor"),
	})
}

func (h *handlers) deleteActor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("actor_name")
	if err != nil {
		return errorResult(err)
	}
	ok, err := h.Editor.DeleteActor(ctx, name)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"actor_name": name,
		"success":    ok,
		"message":    message(ok, "Deleted actor: "+name, "Failed to delete actor"),
	})
}

func (h *handlers) selectActor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("actor_name")
	if err != nil {
		return errorResult(err)
	}
	ok, err := h.Editor.SelectActor(ctx, name)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"actor_name": name,
		"success":    ok,
		"message":    message(ok, "Selected actor: "+name, "Failed to select actor"),
	})
}

func (h *handlers) getSelectedActors(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actors, err := h.Editor.GetSelectedActors(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(struct {
		Count  int               `json:"count"`
		Actors []json.RawMessage `json:"actors"`
	}{len(actors), actors})
}

func (h *handlers) openLevel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("level_path")
	if err != nil {
		return errorResult(err)
	}
	ok, err := h.Editor.OpenLevel(ctx, path)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"level_path": path,
		"success":    ok,
		"message":    message(ok, "Opened level: "+path, "Failed to open level"),
	})
}

func (h *handlers) saveLevel(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := h.Editor.SaveCurrentLevel(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"success": ok,
		"message": message(ok, "Level saved", "Failed to save level"),
	})
}
