// Package export writes the result table of a run.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"xrpl-trustcheck/internal/trustline"
)

// Header is the first row of every result table.
var Header = []string{"address", "has_trustline"}

// Flag renders a result as the literal TRUE or FALSE.
func Flag(has bool) string {
	if has {
		return "TRUE"
	}
	return "FALSE"
}

// Write emits the header followed by one row per result, in order.
func Write(w io.Writer, results []trustline.WalletStatus) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Address, Flag(r.HasTrustline)}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSV writes results to path, replacing any existing file.
func WriteCSV(path string, results []trustline.WalletStatus) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Write(file, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
