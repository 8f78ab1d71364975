package types

// JSONMap is a free-form JSON object persisted through gorm's json serializer.
type JSONMap map[string]any

// Clone returns a shallow copy so callers can add keys without mutating input.
func (j JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}
