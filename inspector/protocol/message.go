package protocol

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is a command sent by a front end.
type Request struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a request. Exactly one of Result and Error is set.
type Response struct {
	ID     int64        `json:"id"`
	Result interface{}  `json:"result,omitempty"`
	Error  *ErrorObject `json:"error,omitempty"`
}

// ErrorObject is the wire form of an error.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewErrorObject converts an error to its wire form.
func NewErrorObject(err error) *ErrorObject {
	return &ErrorObject{Code: KindOf(err).Code(), Message: err.Error()}
}

// Empty is the result of commands which return nothing.
type Empty struct{}

// Handler executes a command with raw parameters.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Typed wraps a handler with typed parameters and results. Missing params
// decode to the zero value of P; malformed params are an invalid argument.
func Typed[P any, R any](f func(context.Context, P) (R, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
		var params P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, Errorf(InvalidArgument, "invalid parameters: %v", err)
			}
		}
		result, err := f(ctx, params)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// HandlerTable maps method names to handlers.
type HandlerTable map[string]Handler

// Register adds a handler, replacing an existing one for the same method.
func (t HandlerTable) Register(method string, h Handler) {
	t[method] = h
}

// Lookup finds the handler for a method.
func (t HandlerTable) Lookup(method string) (Handler, error) {
	h, ok := t[method]
	if !ok {
		return nil, Errorf(MethodNotFound, "'%s' wasn't found", method)
	}
	return h, nil
}

// Encode serializes a response or event.
func Encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode message: %w", err)
	}
	return b, nil
}
