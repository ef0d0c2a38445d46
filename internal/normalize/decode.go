package normalize

import (
	"encoding/json"
	"fmt"
)

// DecodeList finds the list in data the same way NormalizeJSON does and
// decodes its elements into T. A body without a list gives an empty slice.
func DecodeList[T any](data []byte, names ...string) ([]T, error) {
	return DecodeListWith[T](std, data, names...)
}

// DecodeListWith is DecodeList with an explicit Normalizer
func DecodeListWith[T any](n *Normalizer, data []byte, names ...string) ([]T, error) {
	raw, ok := n.findList(data, names)
	if !ok {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
