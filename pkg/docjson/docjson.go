// Package docjson keeps the keys of a JSON object that a struct does not
// model, so open documents survive a decode and re-encode unchanged.
package docjson

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

var knownKeys sync.Map // reflect.Type -> map[string]bool, lower-cased

// Split decodes data into dst, a pointer to a struct, and returns the
// members of the object that none of dst's json fields claim. Matching is
// case-insensitive like encoding/json. Returns nil when nothing is left.
func Split(data []byte, dst interface{}) (map[string]interface{}, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	known := keysOf(reflect.TypeOf(dst))
	for k := range all {
		if known[strings.ToLower(k)] {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// Merge encodes v, which must encode to an object, and adds every extra
// member whose key v did not already write.
func Merge(v interface{}, extra map[string]interface{}) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, exists := out[k]; exists {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// Without returns extra minus the named keys, or nil when nothing is left
func Without(extra map[string]interface{}, keys ...string) map[string]interface{} {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func keysOf(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := knownKeys.Load(t); ok {
		return cached.(map[string]bool)
	}

	keys := make(map[string]bool)
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag := f.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			if name == "" {
				name = f.Name
			}
			keys[strings.ToLower(name)] = true
		}
	}
	knownKeys.Store(t, keys)
	return keys
}
