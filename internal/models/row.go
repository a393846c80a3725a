package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field is one named cell of a dataset row.
type Field struct {
	Name  string
	Value json.RawMessage
}

// Row is a dataset row with fields in the order the dataset declares them.
type Row struct {
	Index  int
	Fields []Field
	// Truncated names the cells the dataset service cut short.
	Truncated []string
}

// ValueString renders a cell for display: strings raw, everything else as
// compact JSON. A missing value renders as null.
func (f Field) ValueString() string {
	raw := bytes.TrimSpace(f.Value)
	if len(raw) == 0 {
		return "null"
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// MarshalJSON keeps the declared field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		if len(f.Value) == 0 {
			b.WriteString("null")
		} else {
			b.Write(f.Value)
		}
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
