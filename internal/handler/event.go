package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Event is an inbound invocation payload. Query arguments live in the
// "arguments" object, the shape a GraphQL resolver forwards.
type Event map[string]any

// Argument returns the named argument rendered as a string, or nil when the
// event has no arguments object or the key is absent or null.
func (e Event) Argument(name string) *string {
	arguments, ok := e["arguments"].(map[string]any)
	if !ok {
		return nil
	}
	value, ok := arguments[name]
	if !ok || value == nil {
		return nil
	}
	rendered := renderArgument(value)
	return &rendered
}

// LimitArgument reads a row-limit argument. Typed JSON values follow integer
// conversion: zero and false mean "use the default" (nil) and fractions are
// truncated. Strings are passed through for the query layer to validate.
func (e Event) LimitArgument(name string) *string {
	arguments, ok := e["arguments"].(map[string]any)
	if !ok {
		return nil
	}
	value, ok := arguments[name]
	if !ok || value == nil {
		return nil
	}
	var number float64
	switch typed := value.(type) {
	case bool:
		if !typed {
			return nil
		}
		number = 1
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			rendered := typed.String()
			return &rendered
		}
		number = parsed
	case float64:
		number = typed
	case float32:
		number = float64(typed)
	case int:
		number = float64(typed)
	case int64:
		number = float64(typed)
	default:
		rendered := renderArgument(value)
		return &rendered
	}
	if number == 0 {
		return nil
	}
	rendered := strconv.FormatFloat(math.Trunc(number), 'f', -1, 64)
	return &rendered
}

// Numbers and booleans arrive typed when the event is JSON; the query layer
// parses strings, so nrows: 10 and nrows: "10" behave the same.
func renderArgument(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(raw)
	}
}
