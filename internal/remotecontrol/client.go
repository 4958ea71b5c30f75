// Package remotecontrol calls functions of the editor's MCP function library
// through the Unreal Remote Control HTTP API.
package remotecontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/metrics"
)

// FunctionLibraryPath is the class default object exposing the editor functions.
const FunctionLibraryPath = "/Script/HktMcpBridgeEditor.Default__HktMcpFunctionLibrary"

const defaultTimeout = 30 * time.Second

// Result is the reshaped outcome of a function call.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Decode unmarshals Data into v.
func (r Result) Decode(v any) error {
	if !r.Success {
		return errors.New(r.Error)
	}
	if len(r.Data) == 0 {
		return errors.New("empty result")
	}
	return json.Unmarshal(r.Data, v)
}

// Client talks to one editor instance.
type Client struct {
	baseURL   string
	http      *http.Client
	connected atomic.Bool
}

// New returns a client for the Remote Control API at baseURL
// (e.g. http://127.0.0.1:30010). A nil httpClient uses one with a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// IsConnected reports the result of the last Ping.
func (c *Client) IsConnected() bool { return c.connected.Load() }

// Ping calls McpPing and records whether the editor answered.
func (c *Client) Ping(ctx context.Context) bool {
	ok := c.CallFunction(ctx, "McpPing", nil).Success
	if ok && !c.connected.Load() {
		logx.Log.Info().Str("url", c.baseURL).Msg("connected to Remote Control API")
	}
	c.connected.Store(ok)
	return ok
}

type callRequest struct {
	ObjectPath          string         `json:"objectPath"`
	FunctionName        string         `json:"functionName"`
	Parameters          map[string]any `json:"parameters"`
	GenerateTransaction bool           `json:"generateTransaction"`
}

// CallFunction invokes name with params keyed by the C++ argument names.
// Failures are reported in the Result rather than as an error.
func (c *Client) CallFunction(ctx context.Context, name string, params map[string]any) Result {
	res := c.call(ctx, name, params)
	metrics.RecordEditorCall(name, res.Success)
	if !res.Success {
		logx.Log.Warn().Str("function", name).Str("error", res.Error).Msg("editor call failed")
	}
	return res
}

func (c *Client) call(ctx context.Context, name string, params map[string]any) Result {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(callRequest{
		ObjectPath:          FunctionLibraryPath,
		FunctionName:        name,
		Parameters:          params,
		GenerateTransaction: true,
	})
	if err != nil {
		return Result{Error: fmt.Sprintf("encode parameters: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/remote/object/call", bytes.NewReader(body))
	if err != nil {
		return Result{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		logx.Log.Debug().Int("status", resp.StatusCode).Str("function", name).Msg("remote control request failed")
		return Result{Error: msg}
	}
	return parseResponse(b)
}

func parseResponse(b []byte) Result {
	if len(bytes.TrimSpace(b)) == 0 {
		return Result{Error: "No response from server"}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		if json.Valid(b) {
			return Result{Success: true, Data: json.RawMessage(b)}
		}
		return Result{Error: fmt.Sprintf("invalid response: %v", err)}
	}
	if raw, ok := obj["errorMessage"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) != nil {
			msg = string(raw)
		}
		return Result{Error: msg}
	}
	rv, ok := obj["ReturnValue"]
	if !ok {
		rv = json.RawMessage(b)
	}
	return Result{Success: true, Data: DecodeJSONString(rv)}
}

// DecodeJSONString unwraps a JSON string whose content is itself JSON, which
// is how the function library returns structured values. Other values are
// returned unchanged.
func DecodeJSONString(raw json.RawMessage) json.RawMessage {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return raw
	}
	inner := bytes.TrimSpace([]byte(s))
	if len(inner) == 0 || !json.Valid(inner) {
		return raw
	}
	return json.RawMessage(inner)
}
