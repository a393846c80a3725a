// Package selection picks dataset rows by index, upfront or interactively.
package selection

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raphaelgruber/datagen/internal/models"
)

// ErrInvalidIndex is returned for non-numeric or out-of-range row indices.
var ErrInvalidIndex = errors.New("invalid row index")

// PromptText is shown before each interactive selection line.
const PromptText = "Enter the row numbers to select (comma-separated) or press Enter to finish: "

// LineReader yields one line of user input at a time. It returns io.EOF when
// input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

// NewLineReader reads lines from r.
func NewLineReader(r io.Reader) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r)}
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// ParseIndices parses a comma-separated list of zero-based indices below total.
func ParseIndices(input string, total int) ([]int, error) {
	parts := strings.Split(input, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", part, ErrInvalidIndex)
		}
		if n < 0 || n >= total {
			return nil, fmt.Errorf("%d out of range [0, %d): %w", n, total, ErrInvalidIndex)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// Prompt reads selection lines until an empty line or end of input,
// accumulating indices in the order given. Duplicates are kept.
// The prompt text is written to out only when out is non-nil.
func Prompt(r LineReader, out io.Writer, total int) ([]int, error) {
	var selected []int
	for {
		if out != nil {
			fmt.Fprint(out, PromptText)
		}
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read selection: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			break
		}

		indices, err := ParseIndices(line, total)
		if err != nil {
			return nil, err
		}
		selected = append(selected, indices...)
	}
	return selected, nil
}

// Pick returns the rows at the given indices, in order.
func Pick(rows []models.Row, indices []int) []models.Row {
	picked := make([]models.Row, 0, len(indices))
	for _, i := range indices {
		picked = append(picked, rows[i])
	}
	return picked
}

// PrintRows lists every row with its index for manual inspection.
func PrintRows(out io.Writer, rows []models.Row) error {
	if _, err := fmt.Fprintln(out, "Dataset rows:"); err != nil {
		return err
	}
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("render row %d: %w", i, err)
		}
		if _, err := fmt.Fprintf(out, "%d: %s\n", i, data); err != nil {
			return err
		}
	}
	return nil
}
