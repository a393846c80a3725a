// Package parser turns raw inputs into prompt text.
package parser

import (
	"path/filepath"
	"strings"
)

// ParagraphSeparator splits .txt content into paragraphs.
const ParagraphSeparator = "\n\n"

// Supported input file extensions.
const (
	ExtText = ".txt"
	ExtCode = ".py"
)

// SplitParagraphs splits content on every literal blank-line separator.
// Empty pieces are kept so positions line up with the source file.
func SplitParagraphs(content string) []string {
	return strings.Split(content, ParagraphSeparator)
}

// IsBlank reports whether a paragraph has nothing worth sending.
func IsBlank(paragraph string) bool {
	return strings.TrimSpace(paragraph) == ""
}

// Supported reports whether a file name ends in a supported extension.
func Supported(name string) bool {
	switch filepath.Ext(name) {
	case ExtText, ExtCode:
		return true
	}
	return false
}

// IsCode reports whether a file is treated as source code.
func IsCode(name string) bool {
	return filepath.Ext(name) == ExtCode
}
