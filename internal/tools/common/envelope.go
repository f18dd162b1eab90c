package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/outlook-mcp/internal/outlook"
)

// Envelope is the JSON object every tool answers with. Handlers fill in
// their payload; the boundary adds "success" and the error fields.
type Envelope map[string]any

// List builds the payload of a listing: the count plus the records under
// their entity key ("emails", "events", ...).
func List[T any](entity string, items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	return Envelope{
		"count": len(items),
		entity:  items,
	}
}

// With adds key to the envelope and returns it for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// ErrorType maps err to the error_type reported to clients.
func ErrorType(err error) string {
	return outlook.KindOf(err).String()
}

// errorMessage returns the client-facing message for err.
func errorMessage(err error) string {
	var oe *outlook.Error
	if errors.As(err, &oe) {
		return oe.Message()
	}
	return err.Error()
}

// failureEnvelope converts err into the error envelope.
func failureEnvelope(err error) Envelope {
	env := Envelope{
		"success":    false,
		"error":      errorMessage(err),
		"error_type": ErrorType(err),
	}
	var oe *outlook.Error
	if errors.As(err, &oe) {
		if oe.Hint != "" {
			env["hint"] = oe.Hint
		}
		for k, v := range oe.Details {
			env[k] = v
		}
	}
	return env
}

// panicError turns a recovered panic into a host error.
func panicError(op string, r any) error {
	return &outlook.Error{Kind: outlook.KindHost, Op: op, Msg: fmt.Sprintf("internal error: %v", r)}
}

// SuccessResult renders a successful envelope.
func SuccessResult(env Envelope) *mcp.CallToolResult {
	out := Envelope{"success": true}
	for k, v := range env {
		out[k] = v
	}
	return render(out, false)
}

// ErrorResult renders err as an error envelope with IsError set.
func ErrorResult(err error) *mcp.CallToolResult {
	return render(failureEnvelope(err), true)
}

func render(env Envelope, isError bool) *mcp.CallToolResult {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		data, _ = json.Marshal(Envelope{
			"success":    false,
			"error":      "failed to encode result: " + err.Error(),
			"error_type": outlook.KindHost.String(),
		})
		isError = true
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = isError
	return result
}
