// Package export writes run results to disk.
package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/datagen/internal/models"
)

// Output file names, relative to the output directory.
const (
	DatasetFile = "dataset.json"
	RatingsFile = "ratings.jsonl"
)

// WriteDataset writes examples as a 2-space indented JSON array, replacing any
// existing file. Zero examples produce "[]".
func WriteDataset(dir string, examples []models.GenerationExample) (string, error) {
	if examples == nil {
		examples = []models.GenerationExample{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(examples); err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, DatasetFile)
	if err := os.WriteFile(path, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), 0644); err != nil {
		return "", fmt.Errorf("write dataset: %w", err)
	}
	return path, nil
}

// WriteRatings writes one JSON object per line, replacing any existing file.
func WriteRatings(dir string, ratings []models.RatingExample) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, RatingsFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create ratings file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range ratings {
		if err := enc.Encode(r); err != nil {
			return "", fmt.Errorf("encode rating: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write ratings: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close ratings file: %w", err)
	}
	return path, nil
}
