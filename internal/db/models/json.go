package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a JSON object column. It is merged field by field across the
// lifetime of a row, never wholesale-replaced.
type JSONMap map[string]interface{}

// Value implements driver.Valuer so gorm can persist the map as JSONB
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}

	return json.Unmarshal(data, m)
}

// Merge overlays patch onto a copy of the map and returns it. The receiver
// is not modified.
func (m JSONMap) Merge(patch JSONMap) JSONMap {
	merged := make(JSONMap, len(m)+len(patch))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
