package editor

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hktproto/hktmcp/internal/remotecontrol"
)

type call struct {
	name   string
	params map[string]any
}

// fakeCaller answers each function with a canned result and records calls.
type fakeCaller struct {
	results map[string]remotecontrol.Result
	calls   []call
}

func (f *fakeCaller) CallFunction(_ context.Context, name string, params map[string]any) remotecontrol.Result {
	f.calls = append(f.calls, call{name: name, params: params})
	if r, ok := f.results[name]; ok {
		return r
	}
	return remotecontrol.Result{Error: "Function not found"}
}

func ok(data string) remotecontrol.Result {
	return remotecontrol.Result{Success: true, Data: json.RawMessage(data)}
}

func TestListAssets(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpListAssets": ok(`{"count":2,"items":[{"asset_name":"A"},{"asset_name":"B"}]}`),
	}}
	e := New(f, "HktProto", "")
	items, err := e.ListAssets(context.Background(), "/Game/Blueprints", "Blueprint")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	got := f.calls[0]
	if got.name != "McpListAssets" || got.params["Path"] != "/Game/Blueprints" || got.params["ClassFilter"] != "Blueprint" {
		t.Fatalf("unexpected call %+v", got)
	}
}

func TestSubsystemErrorPayload(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpListActors": ok(`{"error": "Subsystem not available"}`),
	}}
	_, err := New(f, "", "").ListActors(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "Subsystem not available") {
		t.Fatalf("expected subsystem error, got %v", err)
	}
}

func TestCallFailure(t *testing.T) {
	f := &fakeCaller{}
	if _, err := New(f, "", "").DeleteActor(context.Background(), "Cube"); err == nil || !strings.Contains(err.Error(), "McpDeleteActor") {
		t.Fatalf("expected error naming the function, got %v", err)
	}
}

func TestSpawnActorParams(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpSpawnActor": ok(`"BP_Enemy_C_0"`),
	}}
	name, err := New(f, "", "").SpawnActor(context.Background(), "/Game/BP_Enemy", Vector{X: 1, Y: 2, Z: 3}, Rotator{Yaw: 90}, "Enemy")
	if err != nil || name != "BP_Enemy_C_0" {
		t.Fatalf("spawn: %q %v", name, err)
	}
	b, _ := json.Marshal(f.calls[0].params)
	want := `{"ActorLabel":"Enemy","BlueprintPath":"/Game/BP_Enemy","Location":{"X":1,"Y":2,"Z":3},"Rotation":{"Pitch":0,"Yaw":90,"Roll":0}}`
	if string(b) != want {
		t.Fatalf("params = %s", b)
	}
}

func TestBooleanResults(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpStartPIE":     ok(`true`),
		"McpIsPIERunning": ok(`false`),
		"McpStopPIE":      ok(`{"unexpected":1}`),
	}}
	e := New(f, "", "")
	if started, err := e.StartPIE(context.Background()); err != nil || !started {
		t.Fatalf("start: %v %v", started, err)
	}
	if running, err := e.IsPIERunning(context.Background()); err != nil || running {
		t.Fatalf("running: %v %v", running, err)
	}
	if _, err := e.StopPIE(context.Background()); err == nil {
		t.Fatalf("expected error for non-bool payload")
	}
}

func TestFocusActor(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpListActors":        ok(`{"count":1,"items":[{"actor_name":"Cube_1","actor_label":"Cube","location":{"x":1000,"y":0,"z":50}}]}`),
		"McpSetViewportCamera": ok(`true`),
	}}
	e := New(f, "", "")
	found, err := e.FocusActor(context.Background(), "Cube")
	if err != nil || !found {
		t.Fatalf("focus: %v %v", found, err)
	}
	loc := f.calls[1].params["Location"].(Vector)
	if loc != (Vector{X: 500, Y: -500, Z: 250}) {
		t.Fatalf("camera location %+v", loc)
	}
	if found, _ := e.FocusActor(context.Background(), "Missing"); found {
		t.Fatalf("missing actor reported as found")
	}
}

func TestProjectInfo(t *testing.T) {
	f := &fakeCaller{results: map[string]remotecontrol.Result{
		"McpPing": ok(`{"success":true,"message":"MCP Bridge is running","version":"1.0.0"}`),
	}}
	info := New(f, "HktProto", "/proj").ProjectInfo(context.Background())
	if !info.EditorConnected || info.BridgeVersion != "1.0.0" || info.Name != "HktProto" {
		t.Fatalf("unexpected info %+v", info)
	}
	info = New(&fakeCaller{}, "HktProto", "").ProjectInfo(context.Background())
	if info.EditorConnected {
		t.Fatalf("editor should be unreachable")
	}
}
