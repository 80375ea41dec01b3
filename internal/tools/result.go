package tools

import (
	"github.com/goccy/go-json"

	"medcompanion-server/internal/models"
)

// Result statuses
const (
	StatusSuccess         = "success"
	StatusError           = "error"
	StatusWaitingForInput = "waiting_for_input"
)

// Fields is the payload of a result, flattened next to "status" on the wire
type Fields map[string]any

// Result is the tagged outcome of a tool call. It marshals as
// {"status": ..., <fields>} or {"status": "error", "error_kind", "error_message"}.
type Result struct {
	Status       string
	Fields       Fields
	ErrorKind    string
	ErrorMessage string
}

func Success(fields Fields) Result {
	return Result{Status: StatusSuccess, Fields: fields}
}

func WaitingForInput(fields Fields) Result {
	return Result{Status: StatusWaitingForInput, Fields: fields}
}

// Failure converts err into an error result classified by its sentinel
func Failure(err error) Result {
	return Result{Status: StatusError, ErrorKind: models.ErrorKind(err), ErrorMessage: err.Error()}
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["status"] = r.Status
	if r.Status == StatusError {
		out["error_kind"] = r.ErrorKind
		out["error_message"] = r.ErrorMessage
	}
	return json.Marshal(out)
}
