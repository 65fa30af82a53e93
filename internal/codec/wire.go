package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToWire serializes v into a camelCase mapping ready to be written to the
// gateway. v may be a struct tagged with snake_case json names, a map, or an
// already camelCase mapping (which passes through unchanged). Keys whose value
// is absent (nil pointer, nil map, null) are omitted at every depth.
func ToWire(v any) (map[string]any, error) {
	tree, err := toTree(v)
	if err != nil {
		return nil, err
	}
	m, ok := CamelKeys(tree).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("codec: %T does not serialize to an object", v)
	}
	return m, nil
}

// FromWire decodes a camelCase JSON document into a snake_case value tree.
func FromWire(data []byte) (any, error) {
	var tree any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("codec: decode wire payload: %w", err)
	}
	return SnakeKeys(tree), nil
}

// DecodeWire converts a camelCase document into dst, whose json tags use
// snake_case names.
func DecodeWire(data []byte, dst any) error {
	tree, err := FromWire(data)
	if err != nil {
		return err
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("codec: re-encode value tree: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("codec: decode into %T: %w", dst, err)
	}
	return nil
}

// toTree turns any JSON-marshalable value into a generic value tree, keeping
// numbers as json.Number so integers survive the round trip untouched.
func toTree(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %T: %w", v, err)
	}
	var tree any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("codec: rebuild value tree: %w", err)
	}
	return tree, nil
}
