package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// decodeTolerantUint accepts a JSON number, a string holding a base-10
// integer, or a boolean (true=1, false=0). Producers of these profiles are not
// consistent about which one they emit for flags and frame indexes.
func decodeTolerantUint(raw json.RawMessage) (uint32, error) {
	value, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case json.Number:
		return parseUint32(v.String())
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrNotNumeric, v, err)
		}
		return uint32(n), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: got %s", ErrNotNumeric, describe(value))
	}
}

// decodeStrictUint only accepts a JSON integer.
func decodeStrictUint(raw json.RawMessage) (uint32, error) {
	value, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}
	num, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: got %s", ErrNotNumeric, describe(value))
	}
	return parseUint32(num.String())
}

func parseUint32(literal string) (uint32, error) {
	n, err := strconv.ParseUint(literal, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotNumeric, literal, err)
	}
	return uint32(n), nil
}

func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
