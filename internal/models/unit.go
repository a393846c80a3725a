// Package models defines data structures for the datagen pipeline.
package models

// UnitKind identifies where an InputUnit came from.
type UnitKind string

const (
	// KindText is one paragraph of a .txt file.
	KindText UnitKind = "text"
	// KindCode is a whole .py file wrapped in the conversation prompt.
	KindCode UnitKind = "code"
	// KindRow is one flattened dataset row.
	KindRow UnitKind = "row"
)

// InputUnit is one piece of text submitted for generation and rating.
type InputUnit struct {
	Kind UnitKind
	// Source is the file path or "<repo>#<row>" the unit was built from.
	Source string
	// Position is the paragraph index within a file, or the row index.
	Position int
	Text     string
	// Truncated is set for rows the dataset service returned incomplete.
	Truncated bool
}
