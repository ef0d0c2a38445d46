// Package normalize turns list responses of any shape into a plain ordered sequence.
//
// The back-office API is inconsistent about list envelopes: some endpoints
// return a bare array, some wrap it as {"results": [...]} (paginated), some as
// {"data": [...]}, and some under a resource name such as {"employees": [...]}.
// A Normalizer resolves all of them with one fixed priority order:
//
//  1. a bare array is returned unchanged
//  2. the priority keys (default "results", then "data"), then the caller's named keys
//  3. the first array-valued property of the object
//  4. otherwise an empty sequence
//
// Lookup is one level deep only: {"data": {"results": [1, 2]}} normalizes to [].
// The result is never nil and normalizing a normalized value returns it unchanged.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"

	"github.com/brizzai/backoffice/internal/config"
)

var errInvalidJSON = errors.New("invalid JSON")

// DefaultKeys are the envelope keys checked before any named key
var DefaultKeys = []string{"results", "data"}

// Normalizer resolves list envelopes with a fixed key priority
type Normalizer struct {
	keys []string
}

// New creates a Normalizer checking keys in order. With no keys it uses DefaultKeys.
func New(keys ...string) *Normalizer {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	return &Normalizer{keys: append([]string(nil), keys...)}
}

// NewFromConfig creates a Normalizer from the normalize config section
func NewFromConfig(cfg *config.NormalizeConfig) *Normalizer {
	return New(cfg.Keys...)
}

// Keys returns the priority keys, without any per-call names
func (n *Normalizer) Keys() []string {
	return append([]string(nil), n.keys...)
}

var std = New()

// Normalize uses the default priority keys
func Normalize(body any, names ...string) []any {
	return std.Normalize(body, names...)
}

// NormalizeJSON uses the default priority keys
func NormalizeJSON(data []byte, names ...string) []any {
	return std.NormalizeJSON(data, names...)
}

func (n *Normalizer) priority(names []string) []string {
	if len(names) == 0 {
		return n.keys
	}
	out := make([]string, 0, len(n.keys)+len(names))
	out = append(out, n.keys...)
	return append(out, names...)
}

// Normalize resolves an already decoded body. Raw JSON given as []byte or
// json.RawMessage is decoded first. When no priority key matches, object
// properties are scanned in sorted key order, since a decoded map has no
// document order.
func (n *Normalizer) Normalize(body any, names ...string) []any {
	switch v := body.(type) {
	case nil:
		return []any{}
	case []byte:
		return n.NormalizeJSON(v, names...)
	case json.RawMessage:
		return n.NormalizeJSON(v, names...)
	case []any:
		if v == nil {
			return []any{}
		}
		return v
	case map[string]any:
		return n.fromMap(v, names)
	}

	if list, ok := asList(body); ok {
		return list
	}
	if m, ok := asMap(body); ok {
		return n.fromMap(m, names)
	}
	return []any{}
}

func (n *Normalizer) fromMap(m map[string]any, names []string) []any {
	for _, key := range n.priority(names) {
		if list, ok := asList(m[key]); ok {
			return list
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if list, ok := asList(m[k]); ok {
			return list
		}
	}
	return []any{}
}

// asList reports whether v is a sequence and returns it as []any
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []any:
		if l == nil {
			return []any{}, true
		}
		return l, true
	case []byte, json.RawMessage:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// NormalizeJSON resolves a raw JSON body. Object properties are scanned in
// document order. Invalid JSON yields an empty sequence. Numbers are kept as
// json.Number.
func (n *Normalizer) NormalizeJSON(data []byte, names ...string) []any {
	raw, ok := n.findList(data, names)
	if !ok {
		return []any{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var list []any
	if err := dec.Decode(&list); err != nil || list == nil {
		return []any{}
	}
	return list
}

type field struct {
	key   string
	value json.RawMessage
}

// findList locates the raw array inside data
func (n *Normalizer) findList(data []byte, names []string) (json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}

	switch data[0] {
	case '[':
		if !json.Valid(data) {
			return nil, false
		}
		return data, true
	case '{':
		fields, err := objectFields(data)
		if err != nil {
			return nil, false
		}
		for _, key := range n.priority(names) {
			if raw, ok := lookup(fields, key); ok && isArray(raw) {
				return raw, true
			}
		}
		for _, f := range fields {
			if isArray(f.value) {
				return f.value, true
			}
		}
	}
	return nil, false
}

// objectFields splits a JSON object into its properties, keeping their order
func objectFields(data []byte) ([]field, error) {
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	return fields, nil
}

// lookup returns the last value for key, matching encoding/json on duplicate keys
func lookup(fields []field, key string) (json.RawMessage, bool) {
	var (
		raw   json.RawMessage
		found bool
	)
	for _, f := range fields {
		if f.key == key {
			raw, found = f.value, true
		}
	}
	return raw, found
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	return len(raw) > 0 && raw[0] == '['
}
