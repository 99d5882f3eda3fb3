// Package csvout writes synthetic task records as CSV for bulk import.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"taskseed/internal/dummy"
)

const (
	// DefaultFile is the output path when none is given.
	DefaultFile = "tasks1000.csv"

	// DefaultCount is the number of records when none is given.
	DefaultCount = 1000
)

// Header is the column header row.
var Header = []string{"Name", "Description", "Assignee", "Due Date"}

// Row converts a record to its CSV columns. Assignee is always empty.
func Row(rec dummy.Record) []string {
	return []string{rec.Name, rec.Notes, "", rec.USDate()}
}

// Write writes the header and n records (indices 1..n) to w.
func Write(w io.Writer, gen *dummy.Generator, n int) error {
	if n < 0 {
		return fmt.Errorf("invalid record count: %d", n)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		if err := cw.Write(Row(gen.Record(i))); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes n records to it.
// A failure part way through leaves a partial file behind.
func WriteFile(path string, gen *dummy.Generator, n int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return Write(f, gen, n)
}
