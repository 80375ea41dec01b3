package tools

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"medcompanion-server/internal/models"
	"medcompanion-server/internal/utils"
)

// Param describes one argument of a tool
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Tool is a named operation an agent can call with JSON arguments
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`

	invoke func(ctx context.Context, raw []byte) Result
}

// Invoke decodes and validates raw arguments and runs the tool. Empty input
// is treated as an empty object.
func (t *Tool) Invoke(ctx context.Context, raw []byte) Result {
	return t.invoke(ctx, raw)
}

// newTool binds a typed handler. Arguments are decoded into A and checked
// against its validate tags before fn runs.
func newTool[A any](name, description string, fn func(ctx context.Context, args A) (Result, error)) *Tool {
	var zero A
	return &Tool{
		Name:        name,
		Description: description,
		Params:      paramsOf(reflect.TypeOf(zero)),
		invoke: func(ctx context.Context, raw []byte) Result {
			var args A
			if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
				if err := json.Unmarshal(trimmed, &args); err != nil {
					return Failure(fmt.Errorf("%w: malformed arguments: %w", models.ErrInvalidInput, err))
				}
			}
			if reflect.TypeOf(args).Kind() == reflect.Struct && reflect.TypeOf(args).NumField() > 0 {
				if err := utils.Validate(args); err != nil {
					return Failure(fmt.Errorf("%w: %s", models.ErrInvalidInput, utils.FormatValidationError(err)))
				}
			}
			res, err := fn(ctx, args)
			if err != nil {
				return Failure(err)
			}
			return res
		},
	}
}

func paramsOf(t reflect.Type) []Param {
	params := []Param{}
	if t == nil || t.Kind() != reflect.Struct {
		return params
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		params = append(params, Param{
			Name:     name,
			Type:     jsonType(f.Type.Kind()),
			Required: hasRule(f.Tag.Get("validate"), "required"),
		})
	}
	return params
}

func jsonType(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}
