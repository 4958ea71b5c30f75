// Package rpcwire encodes and classifies the JSON-RPC frames exchanged with the
// runtime bridge subsystem inside the game.
package rpcwire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the JSON-RPC protocol version sent on every request.
const Version = "2.0"

// ErrMalformed indicates a frame that cannot be interpreted as a response or
// notification.
var ErrMalformed = errors.New("malformed frame")

// Request is an outbound call.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// NewRequest builds a request envelope. Nil params are sent as an empty object.
func NewRequest(id, method string, params any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{JSONRPC: Version, ID: id, Method: method, Params: params}
}

// Error is the error object of a failed response.
type Error struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Kind classifies an inbound frame.
type Kind int

const (
	KindResult Kind = iota
	KindError
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindError:
		return "error"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Message is a decoded inbound frame.
type Message struct {
	Kind   Kind
	ID     string
	Result json.RawMessage
	Error  *Error
	// Method and Params are set for notifications that carry them.
	Method string
	Params json.RawMessage
	// Raw is the complete frame as received.
	Raw json.RawMessage
}

type inbound struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

var null = []byte("null")

// Decode parses a frame. Frames without an id, or with a null id, are
// notifications. String and numeric ids are both accepted; numeric ids keep
// their literal text.
func Decode(data []byte) (Message, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg := Message{Raw: json.RawMessage(data), Method: in.Method, Params: in.Params}
	id := bytes.TrimSpace(in.ID)
	if len(id) == 0 || bytes.Equal(id, null) {
		msg.Kind = KindNotification
		return msg, nil
	}
	switch id[0] {
	case '"':
		if err := json.Unmarshal(id, &msg.ID); err != nil {
			return Message{}, fmt.Errorf("%w: id: %v", ErrMalformed, err)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		msg.ID = string(id)
	default:
		return Message{}, fmt.Errorf("%w: unsupported id %s", ErrMalformed, id)
	}
	if msg.ID == "" {
		msg.Kind = KindNotification
		return msg, nil
	}
	if e := bytes.TrimSpace(in.Error); len(e) > 0 && !bytes.Equal(e, null) {
		msg.Kind = KindError
		msg.Error = decodeError(e)
		return msg, nil
	}
	msg.Kind = KindResult
	msg.Result = in.Result
	if len(msg.Result) == 0 {
		msg.Result = json.RawMessage(null)
	}
	return msg, nil
}

// decodeError accepts the error object as well as bare strings some runtime
// builds send.
func decodeError(raw []byte) *Error {
	var e Error
	if json.Unmarshal(raw, &e) == nil {
		if e.Message == "" {
			e.Message = "Unknown error"
		}
		return &e
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return &Error{Message: s}
	}
	return &Error{Message: "Unknown error"}
}
