// Package journal keeps a per-address record of every evaluation in a run.
package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"xrpl-trustcheck/internal/trustline"
)

// Entry is one evaluated address.
type Entry struct {
	RunID        string           `json:"run_id"`
	Seq          int              `json:"seq"`
	Address      string           `json:"address"`
	HasTrustline bool             `json:"has_trustline"`
	Status       trustline.Status `json:"status"`
	Balance      string           `json:"balance,omitempty"`
	Limit        string           `json:"limit,omitempty"`
	Lines        int              `json:"lines"`
	Truncated    bool             `json:"truncated,omitempty"`
	Error        string           `json:"error,omitempty"`
	CheckedAt    time.Time        `json:"checked_at"`
}

// NewEntry flattens an outcome into a journal entry.
func NewEntry(runID string, seq int, out trustline.Outcome, at time.Time) Entry {
	e := Entry{
		RunID:        runID,
		Seq:          seq,
		Address:      out.Address,
		HasTrustline: out.HasTrustline(),
		Status:       out.Status,
		Lines:        out.LineCount,
		Truncated:    out.Truncated,
		CheckedAt:    at.UTC(),
	}
	if out.Line != nil {
		e.Balance = out.Line.Balance
		e.Limit = out.Line.Limit
	}
	if out.Err != nil {
		e.Error = out.Err.Error()
	}
	return e
}

// Recorder captures journal entries.
type Recorder interface {
	Record(Entry)
}

// Discard drops every entry.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(Entry) {}

// Memory stores entries in memory for quick inspection.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory creates an empty journal optionally pre-sizing storage.
func NewMemory(capacity int) *Memory {
	if capacity < 0 {
		capacity = 0
	}
	return &Memory{entries: make([]Entry, 0, capacity)}
}

// Record appends an entry.
func (m *Memory) Record(e Entry) {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

// Snapshot returns a copy of the recorded entries.
func (m *Memory) Snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// JSONLRecorder appends entries as JSON lines.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{file: file, enc: json.NewEncoder(file)}, nil
}

// Record writes a single entry; write failures are dropped.
func (r *JSONLRecorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	_ = r.enc.Encode(e)
}

// Close closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
