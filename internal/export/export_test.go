package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"xrpl-trustcheck/internal/trustline"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	results := []trustline.WalletStatus{
		{Address: "rA", HasTrustline: true},
		{Address: "rB", HasTrustline: false},
	}
	if err := Write(&buf, results); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	want := "address,has_trustline\nrA,TRUE\nrB,FALSE\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "status.csv")
	if err := WriteCSV(path, []trustline.WalletStatus{{Address: "rA"}}); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "address,has_trustline\nrA,FALSE\n" {
		t.Fatalf("unexpected file contents: %q", data)
	}
}

func TestWriteCSVEmptyTableHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "address,has_trustline\n" {
		t.Fatalf("unexpected file contents: %q", data)
	}
}
