package parser

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var conversationSchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": []string{"conversations"},
	"properties": map[string]any{
		"conversations": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"from", "value"},
				"properties": map[string]any{
					"from":  map[string]any{"type": "string", "enum": []string{"human", "gpt"}},
					"value": map[string]any{"type": "string"},
				},
			},
		},
	},
})

// ValidateConversation checks that output is a single conversations object
// of the shape requested by the code prompt.
func ValidateConversation(output string) error {
	result, err := gojsonschema.Validate(conversationSchema, gojsonschema.NewStringLoader(strings.TrimSpace(output)))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("conversation failed validation: %s", strings.Join(details, "; "))
}
