package game

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeRuntime struct {
	method  string
	params  any
	timeout time.Duration
	result  string
	err     error
}

func (f *fakeRuntime) Call(_ context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	f.method, f.params, f.timeout = method, params, timeout
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.result), nil
}

func (f *fakeRuntime) IsConnected() bool { return f.err == nil }

func TestGameStateDecodesJSONString(t *testing.T) {
	rt := &fakeRuntime{result: `"{\"world_name\":\"L_Arena\",\"is_playing\":true}"`}
	res, err := New(rt).GameState(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if string(res) != `{"world_name":"L_Arena","is_playing":true}` {
		t.Fatalf("unexpected state %s", res)
	}
	if rt.method != "get_game_state" || rt.timeout != 0 {
		t.Fatalf("unexpected call %s %s", rt.method, rt.timeout)
	}
}

func TestActorList(t *testing.T) {
	rt := &fakeRuntime{result: `{"actors":[{"name":"A"},{"name":"B"}]}`}
	actors, err := New(rt).ActorList(context.Background(), "Pawn")
	if err != nil || len(actors) != 2 {
		t.Fatalf("actors: %v %v", actors, err)
	}
	if p := rt.params.(map[string]any); p["class_filter"] != "Pawn" {
		t.Fatalf("params %+v", p)
	}
	rt.result = `{}`
	if actors, _ := New(rt).ActorList(context.Background(), ""); actors == nil || len(actors) != 0 {
		t.Fatalf("expected empty list, got %v", actors)
	}
}

func TestPlayerInfo(t *testing.T) {
	rt := &fakeRuntime{result: `{"player_location":{"x":1,"y":2,"z":3},"world_name":"L_Arena","is_playing":true}`}
	info, err := New(rt).PlayerInfo(context.Background())
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if string(info.World) != `"L_Arena"` || !info.IsPlaying || string(info.Location) != `{"x":1,"y":2,"z":3}` {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestTeleportPlayer(t *testing.T) {
	rt := &fakeRuntime{result: `{}`}
	if err := New(rt).TeleportPlayer(context.Background(), 100, -20.5, 300); err != nil {
		t.Fatalf("teleport: %v", err)
	}
	if rt.method != "execute_command" {
		t.Fatalf("method %s", rt.method)
	}
	if p := rt.params.(map[string]any); p["command"] != "setpos 100 -20.5 300" {
		t.Fatalf("command %v", p["command"])
	}
}

func TestPing(t *testing.T) {
	rt := &fakeRuntime{result: `{}`}
	g := New(rt)
	if !g.Ping(context.Background()) || rt.timeout != PingTimeout {
		t.Fatalf("ping should succeed with %s timeout, got %s", PingTimeout, rt.timeout)
	}
	rt.err = errors.New("request timeout: get_game_state")
	if g.Ping(context.Background()) {
		t.Fatalf("ping should fail")
	}
}
