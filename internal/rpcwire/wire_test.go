package rpcwire

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewRequestEncoding(t *testing.T) {
	b, err := json.Marshal(NewRequest("abc", "get_game_state", nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"jsonrpc":"2.0","id":"abc","method":"get_game_state","params":{}}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		kind    Kind
		id      string
		result  string
		message string
	}{
		{name: "result", in: `{"id":"a1","result":{"ok":true}}`, kind: KindResult, id: "a1", result: `{"ok":true}`},
		{name: "null result", in: `{"jsonrpc":"2.0","id":"a2"}`, kind: KindResult, id: "a2", result: `null`},
		{name: "numeric id", in: `{"id":17,"result":1}`, kind: KindResult, id: "17", result: `1`},
		{name: "error object", in: `{"id":"a3","error":{"code":-32601,"message":"no such method"}}`, kind: KindError, id: "a3", message: "no such method"},
		{name: "error string", in: `{"id":"a4","error":"boom"}`, kind: KindError, id: "a4", message: "boom"},
		{name: "error without message", in: `{"id":"a5","error":{}}`, kind: KindError, id: "a5", message: "Unknown error"},
		{name: "null error is result", in: `{"id":"a6","result":2,"error":null}`, kind: KindResult, id: "a6", result: `2`},
		{name: "notification", in: `{"method":"actor_spawned","params":{"name":"A"}}`, kind: KindNotification},
		{name: "null id notification", in: `{"id":null,"method":"tick"}`, kind: KindNotification},
		{name: "empty id notification", in: `{"id":"","event":"x"}`, kind: KindNotification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if m.Kind != tt.kind {
				t.Fatalf("kind = %s want %s", m.Kind, tt.kind)
			}
			if m.ID != tt.id {
				t.Fatalf("id = %q want %q", m.ID, tt.id)
			}
			if tt.result != "" && string(m.Result) != tt.result {
				t.Fatalf("result = %s want %s", m.Result, tt.result)
			}
			if tt.message != "" && (m.Error == nil || m.Error.Message != tt.message) {
				t.Fatalf("error = %+v want %q", m.Error, tt.message)
			}
			if string(m.Raw) != tt.in {
				t.Fatalf("raw frame not preserved")
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{`not json`, `[1,2]`, `{"id":{"x":1},"result":1}`, `{"id":true}`} {
		if _, err := Decode([]byte(in)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", in, err)
		}
	}
}
