package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type propertyJSON struct {
	Type  Type     `json:"type"`
	Boost *float64 `json:"boost,omitempty"`
}

// MarshalJSON renders {"properties": {...}} keeping schema order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"properties":{`)
	for i, p := range m.props {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(p.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal property name: %w", err)
		}
		body, err := json.Marshal(propertyJSON{Type: p.Type, Boost: p.Boost})
		if err != nil {
			return nil, fmt.Errorf("marshal property %s: %w", p.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}
