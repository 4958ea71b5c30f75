// Package game wraps the runtime bridge methods served by the game instance.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hktproto/hktmcp/internal/remotecontrol"
)

// PingTimeout bounds the liveness probe.
const PingTimeout = 5 * time.Second

// Caller issues runtime calls; *runtimebridge.Bridge satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error)
	IsConnected() bool
}

// Game exposes typed runtime operations.
type Game struct {
	rt Caller
}

// New returns a Game issuing calls through rt.
func New(rt Caller) *Game { return &Game{rt: rt} }

// Connected reports whether the runtime connection is up.
func (g *Game) Connected() bool { return g.rt.IsConnected() }

func (g *Game) call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	res, err := g.rt.Call(ctx, method, params, timeout)
	if err != nil {
		return nil, err
	}
	return remotecontrol.DecodeJSONString(res), nil
}

// GameState returns the runtime's get_game_state payload.
func (g *Game) GameState(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "get_game_state", nil, 0)
}

// ExecuteConsoleCommand runs command inside the game.
func (g *Game) ExecuteConsoleCommand(ctx context.Context, command string) (json.RawMessage, error) {
	return g.call(ctx, "execute_command", map[string]any{"command": command}, 0)
}

// ActorList returns the actors of the running world, optionally filtered by class.
func (g *Game) ActorList(ctx context.Context, classFilter string) ([]json.RawMessage, error) {
	res, err := g.call(ctx, "get_actor_list", map[string]any{"class_filter": classFilter}, 0)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Actors []json.RawMessage `json:"actors"`
	}
	if err := json.Unmarshal(res, &wrapped); err != nil {
		return nil, fmt.Errorf("get_actor_list: unexpected payload: %w", err)
	}
	if wrapped.Actors == nil {
		wrapped.Actors = []json.RawMessage{}
	}
	return wrapped.Actors, nil
}

// PlayerInfo is the player portion of the game state.
type PlayerInfo struct {
	Location  json.RawMessage `json:"location"`
	World     json.RawMessage `json:"world"`
	IsPlaying bool            `json:"is_playing"`
}

// PlayerInfo extracts the player fields from the game state.
func (g *Game) PlayerInfo(ctx context.Context) (PlayerInfo, error) {
	res, err := g.GameState(ctx)
	if err != nil {
		return PlayerInfo{}, err
	}
	var state struct {
		PlayerLocation json.RawMessage `json:"player_location"`
		WorldName      json.RawMessage `json:"world_name"`
		IsPlaying      bool            `json:"is_playing"`
	}
	if err := json.Unmarshal(res, &state); err != nil {
		return PlayerInfo{}, fmt.Errorf("get_game_state: unexpected payload: %w", err)
	}
	info := PlayerInfo{Location: state.PlayerLocation, World: state.WorldName, IsPlaying: state.IsPlaying}
	if len(info.Location) == 0 {
		info.Location = json.RawMessage("null")
	}
	if len(info.World) == 0 {
		info.World = json.RawMessage("null")
	}
	return info, nil
}

// TeleportPlayer moves the player with the setpos console command.
func (g *Game) TeleportPlayer(ctx context.Context, x, y, z float64) error {
	_, err := g.ExecuteConsoleCommand(ctx, "setpos "+formatCoord(x)+" "+formatCoord(y)+" "+formatCoord(z))
	return err
}

// Ping reports whether the runtime answers get_game_state within PingTimeout.
func (g *Game) Ping(ctx context.Context) bool {
	_, err := g.rt.Call(ctx, "get_game_state", nil, PingTimeout)
	return err == nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
