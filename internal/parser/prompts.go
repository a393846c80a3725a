package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Templates holds the instruction texts wrapped around inputs.
// The surrounding tags are fixed; only their bodies are configurable.
type Templates struct {
	CodeInstruction   string `yaml:"code_instruction"`
	CodeFormat        string `yaml:"code_format"`
	RatingInstruction string `yaml:"rating_instruction"`
	RatingCondition   string `yaml:"rating_condition"`
}

// DefaultTemplates returns the built-in instructions.
func DefaultTemplates() Templates {
	return Templates{
		CodeInstruction: "respond with a flat jsonl in the given format, simulating a 3-6 turn conversation " +
			"between a user(human) and assistant(gpt), demonstrating a plausable situation requiring the " +
			"assistant to articulate a strong understanding of the logical elements of the content in the example",
		CodeFormat: `{"conversations": [{"from": "human", "value": "..."}, {"from": "gpt", "value": "..."}, ` +
			`{"from": "human", "value": "..."}, ...]}`,
		RatingInstruction: "rate the quality of this piece of data on a scale of 1 to 10 where 1 is useless, " +
			"nonsensical, or otherwise blatantly wrong, and 10 is perfect, verbose, reasoning-heavy, etc   " +
			"the use case is for training data.",
		RatingCondition: "ONLY REPLY WITH THE INTEGER CORRESPONDING TO YOUR RATING. DO NOT RESPOND WITH ANYTHING BUT THE VALUE",
	}
}

// LoadTemplates reads YAML overrides from path on top of the defaults.
// An empty path returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read prompts file: %w", err)
	}

	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("parse prompts file: %w", err)
	}

	if override.CodeInstruction != "" {
		t.CodeInstruction = override.CodeInstruction
	}
	if override.CodeFormat != "" {
		t.CodeFormat = override.CodeFormat
	}
	if override.RatingInstruction != "" {
		t.RatingInstruction = override.RatingInstruction
	}
	if override.RatingCondition != "" {
		t.RatingCondition = override.RatingCondition
	}
	return t, nil
}

// CodePrompt wraps source code in the conversation-generation instruction.
func (t Templates) CodePrompt(content string) string {
	return content + ParagraphSeparator +
		"<instruction>" + t.CodeInstruction + "</instruction>\n" +
		"<format>" + t.CodeFormat + "</format>"
}

// RatingPrompt asks for a bare 1-10 score of the given text.
func (t Templates) RatingPrompt(text string) string {
	return text + ParagraphSeparator +
		"<instruction>" + t.RatingInstruction + "</instruction>\n" +
		"<condition>" + t.RatingCondition + "</condition>"
}
