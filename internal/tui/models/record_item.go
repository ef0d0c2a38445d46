package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// titleKeys are tried in order to label a record
var titleKeys = []string{"name", "title", "full_name", "email", "id"}

const maxSummaryFields = 4

// RecordItem wraps one normalized API record for display in the list
// Implements list.Item
type RecordItem struct {
	Value    any
	Excluded bool
}

func (i RecordItem) Title() string {
	obj, ok := i.Value.(map[string]any)
	if !ok {
		return compact(i.Value)
	}
	if key := titleKey(obj); key != "" {
		return fmt.Sprint(obj[key])
	}
	return "(record)"
}

func (i RecordItem) Description() string {
	if i.Excluded {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Render("[Excluded]")
	}

	obj, ok := i.Value.(map[string]any)
	if !ok {
		return fmt.Sprintf("%T", i.Value)
	}

	skip := titleKey(obj)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, maxSummaryFields)
	for _, k := range keys {
		if len(parts) == maxSummaryFields {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, k+": "+compact(obj[k]))
	}
	return strings.Join(parts, ", ")
}

func (i RecordItem) FilterValue() string {
	return i.Title() + " " + compact(i.Value)
}

func (i RecordItem) ToggleExcluded() RecordItem {
	i.Excluded = !i.Excluded
	return i
}

// JSON returns the record indented for the detail view
func (i RecordItem) JSON() string {
	data, err := json.MarshalIndent(i.Value, "", "  ")
	if err != nil {
		return fmt.Sprint(i.Value)
	}
	return string(data)
}

func titleKey(obj map[string]any) string {
	for _, k := range titleKeys {
		if v, ok := obj[k]; ok && v != nil && fmt.Sprint(v) != "" {
			return k
		}
	}
	return ""
}

func compact(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
