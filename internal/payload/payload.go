// Package payload inspects and rewrites event payloads as JSON.
//
// The mediator never interprets payloads. Host-side actors that want to
// look inside one use this package, which treats any payload as a JSON
// document: raw JSON bytes and JSON strings are used as-is, everything else
// goes through encoding/json first.
package payload

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Marshal returns the JSON form of v.
func Marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case json.RawMessage:
		return val, nil
	case []byte:
		if gjson.ValidBytes(val) {
			return val, nil
		}
		return json.Marshal(string(val))
	case string:
		if gjson.Valid(val) {
			return []byte(val), nil
		}
		return json.Marshal(val)
	case gjson.Result:
		return []byte(val.Raw), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		return data, nil
	}
}

// Get looks up a gjson path in v. The bool is false if v cannot be
// marshalled or the path does not exist.
func Get(v any, path string) (gjson.Result, bool) {
	data, err := Marshal(v)
	if err != nil {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(data, path)
	return res, res.Exists()
}

// Fields looks up several paths at once, keyed by path.
// Missing paths are omitted.
func Fields(v any, paths []string) map[string]any {
	if len(paths) == 0 {
		return nil
	}
	data, err := Marshal(v)
	if err != nil {
		return nil
	}

	fields := make(map[string]any, len(paths))
	for i, res := range gjson.GetManyBytes(data, paths...) {
		if res.Exists() {
			fields[paths[i]] = res.Value()
		}
	}
	return fields
}

// Set writes values into the JSON form of v and returns the result.
// Paths are applied in sorted order so overlapping paths are deterministic.
// A non-object payload is replaced by an object.
func Set(v any, values map[string]any) (json.RawMessage, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	if gjson.ParseBytes(data).IsObject() {
		data = append([]byte(nil), data...)
	} else {
		data = []byte("{}")
	}

	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		data, err = sjson.SetBytes(data, p, values[p])
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", p, err)
		}
	}
	return json.RawMessage(data), nil
}

// Decode converts a JSON payload into plain Go values
// (map[string]any, []any, string, float64, bool, nil).
func Decode(v any) (any, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return gjson.ParseBytes(data).Value(), nil
}
