package parser

import (
	"strings"

	"github.com/raphaelgruber/datagen/internal/models"
)

// FlattenRow renders a row as "key: value" lines in field order.
func FlattenRow(row models.Row) string {
	lines := make([]string, 0, len(row.Fields))
	for _, f := range row.Fields {
		lines = append(lines, f.Name+": "+f.ValueString())
	}
	return strings.Join(lines, "\n")
}
