// Package wallets reads the address list a run checks.
package wallets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"xrpl-trustcheck/internal/apperr"
)

// AddressColumn is the required header of the input CSV.
const AddressColumn = "address"

var (
	// ErrMissingColumn means the header has no address column.
	ErrMissingColumn = errors.New("csv file must have a column named 'address'")
	// ErrNoAddresses means no non-empty address was found.
	ErrNoAddresses = errors.New("no wallet addresses found in csv file")
)

// Load reads addresses from the CSV file at path.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.E("wallets.load", apperr.KindInput, fmt.Errorf("open %s: %w", path, err))
	}
	defer file.Close()
	return Read(file)
}

// Read parses a CSV stream with an address column, trimming values and skipping blanks.
// A leading UTF-8 byte order mark is ignored.
func Read(r io.Reader) ([]string, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.E("wallets.read", apperr.KindInput, ErrMissingColumn)
	}
	if err != nil {
		return nil, apperr.E("wallets.read", apperr.KindInput, fmt.Errorf("read header: %w", err))
	}
	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == AddressColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, apperr.E("wallets.read", apperr.KindInput, ErrMissingColumn)
	}

	var addresses []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.E("wallets.read", apperr.KindInput, fmt.Errorf("read row: %w", err))
		}
		if col >= len(record) {
			continue
		}
		if addr := strings.TrimSpace(record[col]); addr != "" {
			addresses = append(addresses, addr)
		}
	}
	if len(addresses) == 0 {
		return nil, apperr.E("wallets.read", apperr.KindInput, ErrNoAddresses)
	}
	return addresses, nil
}
