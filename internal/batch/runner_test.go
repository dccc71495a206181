package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xrpl-trustcheck/internal/apperr"
	"xrpl-trustcheck/internal/journal"
	"xrpl-trustcheck/internal/ledger"
	"xrpl-trustcheck/internal/trustline"
)

const issuer = "rIssuer"

// scriptedConn answers account_lines from a map and tracks lifecycle calls.
type scriptedConn struct {
	lines     map[string]string // address -> lines json
	fail      map[string]bool
	openErr   error
	opens     int
	closes    int
	inFlight  int
	maxPar    int
	requests  []string
	onRequest func(address string)
}

func (c *scriptedConn) Open(context.Context) error {
	c.opens++
	return c.openErr
}

func (c *scriptedConn) Close() error {
	c.closes++
	return nil
}

func (c *scriptedConn) Request(_ context.Context, req ledger.Request) (*ledger.Response, error) {
	c.inFlight++
	defer func() { c.inFlight-- }()
	if c.inFlight > c.maxPar {
		c.maxPar = c.inFlight
	}
	addr := req.Params["account"].(string)
	c.requests = append(c.requests, addr)
	if c.onRequest != nil {
		c.onRequest(addr)
	}
	if c.fail[addr] {
		return nil, apperr.E("ledger.request", apperr.KindTransport, errors.New("connection reset"))
	}
	lines, ok := c.lines[addr]
	if !ok {
		lines = `[]`
	}
	return &ledger.Response{ID: 1, Status: "success", Result: json.RawMessage(`{"lines":` + lines + `}`)}, nil
}

func line(limit string) string {
	return `[{"account":"` + issuer + `","currency":"USD","balance":"1","limit":"` + limit + `"}]`
}

func newRunner(conn Conn, opts ...Option) *Runner {
	ev := trustline.NewEvaluator(trustline.NewTargetAsset(issuer, "USD"), zerolog.Nop())
	return NewRunner(conn, ev, zerolog.Nop(), opts...)
}

func TestRunPreservesLengthAndOrder(t *testing.T) {
	conn := &scriptedConn{lines: map[string]string{"rA": line("10"), "rC": line("0"), "rD": line("5")}}
	addresses := []string{"rA", "rB", "rC", "rD", "rA"}

	results, err := newRunner(conn).Run(context.Background(), addresses)
	require.NoError(t, err)
	require.Len(t, results, len(addresses))

	want := []bool{true, false, false, true, true}
	for i, ws := range results {
		assert.Equal(t, addresses[i], ws.Address)
		assert.Equal(t, want[i], ws.HasTrustline, "address %d", i)
	}
	assert.Equal(t, addresses, conn.requests)
	assert.Equal(t, 1, conn.opens)
	assert.Equal(t, 1, conn.closes)
	assert.Equal(t, 1, conn.maxPar)
}

func TestRunContinuesAfterPerAddressFailure(t *testing.T) {
	conn := &scriptedConn{
		lines: map[string]string{"rA": line("1"), "rC": line("1")},
		fail:  map[string]bool{"rB": true},
	}
	mem := journal.NewMemory(3)
	results, err := newRunner(conn, WithJournal(mem), WithRunID("run-42")).Run(context.Background(), []string{"rA", "rB", "rC"})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, true}, []bool{results[0].HasTrustline, results[1].HasTrustline, results[2].HasTrustline})
	assert.Equal(t, trustline.StatusFailed, results[1].Status)

	entries := mem.Snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "run-42", entries[1].RunID)
	assert.Equal(t, 2, entries[1].Seq)
	assert.Contains(t, entries[1].Error, "connection reset")
}

func TestRunOpenFailureStillCloses(t *testing.T) {
	conn := &scriptedConn{openErr: apperr.E("ledger.open", apperr.KindConnection, errors.New("refused"))}
	results, err := newRunner(conn).Run(context.Background(), []string{"rA"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConnection))
	assert.Nil(t, results)
	assert.Empty(t, conn.requests)
	assert.Equal(t, 1, conn.closes)
}

func TestRunCanceledMidBatchDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := &scriptedConn{onRequest: func(addr string) {
		if addr == "rB" {
			cancel()
		}
	}}

	results, err := newRunner(conn).Run(ctx, []string{"rA", "rB", "rC"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
	assert.Equal(t, []string{"rA", "rB"}, conn.requests)
	assert.Equal(t, 1, conn.closes)
}

func TestRunClosesOnPanic(t *testing.T) {
	conn := &scriptedConn{}
	runner := newRunner(conn, WithProgress(func(int, int, trustline.Outcome) { panic("render failed") }))
	assert.Panics(t, func() { _, _ = runner.Run(context.Background(), []string{"rA"}) })
	assert.Equal(t, 1, conn.closes)
}

func TestRunLogsLostSessionOnce(t *testing.T) {
	conn := &scriptedConn{}
	lost := false
	conn.onRequest = func(addr string) {
		if addr == "rB" {
			lost = true
		}
	}
	gone := &lostConn{scriptedConn: conn, lost: &lost}

	var buf bytes.Buffer
	ev := trustline.NewEvaluator(trustline.NewTargetAsset(issuer, "USD"), zerolog.Nop())
	results, err := NewRunner(gone, ev, zerolog.New(&buf)).Run(context.Background(), []string{"rA", "rB", "rC", "rD"})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, trustline.StatusFailed, results[2].Status)
	assert.Equal(t, trustline.StatusFailed, results[3].Status)
	assert.Equal(t, 1, strings.Count(buf.String(), "ledger session lost"))
}

// lostConn reports ErrNotOpen for every request after lost is set.
type lostConn struct {
	*scriptedConn
	lost *bool
}

func (c *lostConn) Request(ctx context.Context, req ledger.Request) (*ledger.Response, error) {
	if *c.lost {
		return nil, apperr.E("ledger.request", apperr.KindTransport, ledger.ErrNotOpen)
	}
	return c.scriptedConn.Request(ctx, req)
}

func TestRunReportsProgress(t *testing.T) {
	conn := &scriptedConn{}
	var seen []int
	runner := newRunner(conn, WithProgress(func(done, total int, out trustline.Outcome) {
		assert.Equal(t, 2, total)
		seen = append(seen, done)
	}))
	_, err := runner.Run(context.Background(), []string{"rA", "rB"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
	assert.NotEmpty(t, runner.RunID())
}
