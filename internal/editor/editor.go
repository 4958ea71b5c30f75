// Package editor exposes the editor's MCP function library as typed Go calls.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hktproto/hktmcp/internal/remotecontrol"
)

// FunctionCaller invokes a named function library entry.
type FunctionCaller interface {
	CallFunction(ctx context.Context, name string, params map[string]any) remotecontrol.Result
}

// Vector mirrors FVector as serialized by the Remote Control API.
type Vector struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
}

// Rotator mirrors FRotator as serialized by the Remote Control API.
type Rotator struct {
	Pitch float64 `json:"Pitch"`
	Yaw   float64 `json:"Yaw"`
	Roll  float64 `json:"Roll"`
}

// UnitScale is the identity scale.
var UnitScale = Vector{X: 1, Y: 1, Z: 1}

// Editor wraps the function library exposed by the editor plugin.
type Editor struct {
	rc          FunctionCaller
	projectName string
	projectPath string
}

// New returns an Editor calling through rc.
func New(rc FunctionCaller, projectName, projectPath string) *Editor {
	return &Editor{rc: rc, projectName: projectName, projectPath: projectPath}
}

// call returns the data of a successful call, turning both transport failures
// and {"error": ...} payloads into errors.
func (e *Editor) call(ctx context.Context, fn string, params map[string]any) (json.RawMessage, error) {
	res := e.rc.CallFunction(ctx, fn, params)
	if !res.Success {
		if res.Error == "" {
			res.Error = "Unknown error"
		}
		return nil, fmt.Errorf("%s: %s", fn, res.Error)
	}
	var probe struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal(res.Data, &probe) == nil && probe.Error != nil {
		return nil, fmt.Errorf("%s: %s", fn, *probe.Error)
	}
	return res.Data, nil
}

func (e *Editor) list(ctx context.Context, fn string, params map[string]any) ([]json.RawMessage, error) {
	data, err := e.call(ctx, fn, params)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return items, nil
}

// decodeItems accepts either {"count": n, "items": [...]} or a bare array.
func decodeItems(data json.RawMessage) ([]json.RawMessage, error) {
	var wrapped struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if wrapped.Items == nil {
			wrapped.Items = []json.RawMessage{}
		}
		return wrapped.Items, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.New("unexpected list payload")
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func (e *Editor) boolean(ctx context.Context, fn string, params map[string]any) (bool, error) {
	data, err := e.call(ctx, fn, params)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := json.Unmarshal(data, &ok); err != nil {
		return false, fmt.Errorf("%s: expected bool, got %s", fn, data)
	}
	return ok, nil
}

func (e *Editor) str(ctx context.Context, fn string, params map[string]any) (string, error) {
	data, err := e.call(ctx, fn, params)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return string(data), nil
	}
	return s, nil
}

// Assets

func (e *Editor) ListAssets(ctx context.Context, path, classFilter string) ([]json.RawMessage, error) {
	return e.list(ctx, "McpListAssets", map[string]any{"Path": path, "ClassFilter": classFilter})
}

func (e *Editor) SearchAssets(ctx context.Context, query, classFilter string) ([]json.RawMessage, error) {
	return e.list(ctx, "McpSearchAssets", map[string]any{"SearchQuery": query, "ClassFilter": classFilter})
}

func (e *Editor) GetAssetDetails(ctx context.Context, assetPath string) (json.RawMessage, error) {
	return e.call(ctx, "McpGetAssetDetails", map[string]any{"AssetPath": assetPath})
}

func (e *Editor) ModifyAssetProperty(ctx context.Context, assetPath, property, value string) (bool, error) {
	return e.boolean(ctx, "McpModifyAssetProperty", map[string]any{"AssetPath": assetPath, "PropertyName": property, "NewValue": value})
}

// Level

func (e *Editor) ListActors(ctx context.Context, classFilter string) ([]json.RawMessage, error) {
	return e.list(ctx, "McpListActors", map[string]any{"ClassFilter": classFilter})
}

// SpawnActor spawns a Blueprint and returns the new actor's name, empty when
// the editor refused.
func (e *Editor) SpawnActor(ctx context.Context, blueprintPath string, loc Vector, rot Rotator, label string) (string, error) {
	return e.str(ctx, "McpSpawnActor", map[string]any{"BlueprintPath": blueprintPath, "Location": loc, "Rotation": rot, "ActorLabel": label})
}

func (e *Editor) SpawnActorByClass(ctx context.Context, className string, loc Vector, rot Rotator) (string, error) {
	return e.str(ctx, "McpSpawnActorByClass", map[string]any{"ClassName": className, "Location": loc, "Rotation": rot})
}

func (e *Editor) ModifyActorTransform(ctx context.Context, actorName string, loc Vector, rot Rotator, scale Vector) (bool, error) {
	return e.boolean(ctx, "McpModifyActorTransform", map[string]any{"ActorName": actorName, "NewLocation": loc, "NewRotation": rot, "NewScale": scale})
}

func (e *Editor) DeleteActor(ctx context.Context, actorName string) (bool, error) {
	return e.boolean(ctx, "McpDeleteActor", map[string]any{"ActorName": actorName})
}

func (e *Editor) SelectActor(ctx context.Context, actorName string) (bool, error) {
	return e.boolean(ctx, "McpSelectActor", map[string]any{"ActorName": actorName})
}

func (e *Editor) GetSelectedActors(ctx context.Context) ([]json.RawMessage, error) {
	return e.list(ctx, "McpGetSelectedActors", nil)
}

// Actor is the subset of an actor entry needed to locate it.
type Actor struct {
	Name     string `json:"actor_name"`
	Label    string `json:"actor_label"`
	Class    string `json:"actor_class"`
	Location struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"location"`
	Rotation struct {
		Pitch float64 `json:"pitch"`
		Yaw   float64 `json:"yaw"`
		Roll  float64 `json:"roll"`
	} `json:"rotation"`
	Scale *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"scale"`
}

// FindActor looks an actor up by name or label. It returns false when absent.
func (e *Editor) FindActor(ctx context.Context, nameOrLabel string) (Actor, bool, error) {
	items, err := e.ListActors(ctx, "")
	if err != nil {
		return Actor{}, false, err
	}
	for _, raw := range items {
		var a Actor
		if json.Unmarshal(raw, &a) != nil {
			continue
		}
		if a.Name == nameOrLabel || a.Label == nameOrLabel {
			return a, true, nil
		}
	}
	return Actor{}, false, nil
}

// FocusActor moves the viewport camera to look at the named actor.
func (e *Editor) FocusActor(ctx context.Context, nameOrLabel string) (bool, error) {
	a, ok, err := e.FindActor(ctx, nameOrLabel)
	if err != nil || !ok {
		return false, err
	}
	loc := Vector{X: a.Location.X - 500, Y: a.Location.Y - 500, Z: a.Location.Z + 200}
	return e.SetViewportCamera(ctx, loc, Rotator{Pitch: 20, Yaw: 45})
}

// Query

func (e *Editor) SearchClasses(ctx context.Context, query string, blueprintOnly bool) ([]json.RawMessage, error) {
	return e.list(ctx, "McpSearchClasses", map[string]any{"SearchQuery": query, "bBlueprintOnly": blueprintOnly})
}

func (e *Editor) GetClassProperties(ctx context.Context, className string) ([]json.RawMessage, error) {
	return e.list(ctx, "McpGetClassProperties", map[string]any{"ClassName": className})
}

func (e *Editor) GetProjectStructure(ctx context.Context, rootPath string) (json.RawMessage, error) {
	if rootPath == "" {
		rootPath = "/Game"
	}
	return e.call(ctx, "McpGetProjectStructure", map[string]any{"RootPath": rootPath})
}

func (e *Editor) GetCurrentLevelInfo(ctx context.Context) (json.RawMessage, error) {
	return e.call(ctx, "McpGetCurrentLevelInfo", nil)
}

// Editor control

func (e *Editor) OpenLevel(ctx context.Context, levelPath string) (bool, error) {
	return e.boolean(ctx, "McpOpenLevel", map[string]any{"LevelPath": levelPath})
}

func (e *Editor) SaveCurrentLevel(ctx context.Context) (bool, error) {
	return e.boolean(ctx, "McpSaveCurrentLevel", nil)
}

func (e *Editor) StartPIE(ctx context.Context) (bool, error) {
	return e.boolean(ctx, "McpStartPIE", nil)
}

func (e *Editor) StopPIE(ctx context.Context) (bool, error) {
	return e.boolean(ctx, "McpStopPIE", nil)
}

func (e *Editor) IsPIERunning(ctx context.Context) (bool, error) {
	return e.boolean(ctx, "McpIsPIERunning", nil)
}

// ExecuteCommand runs a console command in the editor world.
func (e *Editor) ExecuteCommand(ctx context.Context, command string) error {
	_, err := e.call(ctx, "McpExecuteCommand", map[string]any{"Command": command})
	return err
}

// Utility

func (e *Editor) ShowNotification(ctx context.Context, message string, duration float64) error {
	if duration <= 0 {
		duration = 3
	}
	_, err := e.call(ctx, "McpShowNotification", map[string]any{"Message": message, "Duration": duration})
	return err
}

func (e *Editor) Ping(ctx context.Context) (json.RawMessage, error) {
	return e.call(ctx, "McpPing", nil)
}

func (e *Editor) GetViewportCamera(ctx context.Context) (json.RawMessage, error) {
	return e.call(ctx, "McpGetViewportCamera", nil)
}

func (e *Editor) SetViewportCamera(ctx context.Context, loc Vector, rot Rotator) (bool, error) {
	return e.boolean(ctx, "McpSetViewportCamera", map[string]any{"Location": loc, "Rotation": rot})
}

// ProjectInfo describes the configured project.
type ProjectInfo struct {
	Name            string `json:"name"`
	Path            string `json:"path,omitempty"`
	Type            string `json:"type"`
	EditorConnected bool   `json:"editor_connected"`
	BridgeVersion   string `json:"bridge_version,omitempty"`
}

// ProjectInfo reports the configured project and whether the editor answers.
func (e *Editor) ProjectInfo(ctx context.Context) ProjectInfo {
	info := ProjectInfo{Name: e.projectName, Path: e.projectPath, Type: "Remote Control"}
	data, err := e.Ping(ctx)
	if err != nil {
		return info
	}
	info.EditorConnected = true
	var ping struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &ping) == nil {
		info.BridgeVersion = ping.Version
	}
	return info
}
