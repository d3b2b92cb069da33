package store

import "encoding/json"

// valuesJSON converts an annotation's value map to JSON text for storage.
// Unserializable values are stringified by the graph before they get here;
// anything that still fails marshals to the empty object.
func valuesJSON(values map[string]any) string {
	if len(values) == 0 {
		return "{}"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(b)
}
