// Package batch evaluates an ordered list of addresses over one ledger session.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xrpl-trustcheck/internal/journal"
	"xrpl-trustcheck/internal/ledger"
	"xrpl-trustcheck/internal/metrics"
	"xrpl-trustcheck/internal/trustline"
)

// Conn is the session lifecycle the runner drives.
type Conn interface {
	trustline.Requester
	Open(ctx context.Context) error
	Close() error
}

// ProgressFunc is called after each address with its 1-based position.
type ProgressFunc func(done, total int, out trustline.Outcome)

// Runner evaluates addresses strictly one after another.
type Runner struct {
	conn     Conn
	eval     *trustline.Evaluator
	log      zerolog.Logger
	journal  journal.Recorder
	runID    string
	progress ProgressFunc
	now      func() time.Time
}

// Option configures Runner construction parameters.
type Option func(*Runner)

// WithJournal records every outcome into rec.
func WithJournal(rec journal.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.journal = rec
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithProgress registers a per-address callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner wires a session and an evaluator together.
func NewRunner(conn Conn, eval *trustline.Evaluator, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		conn:    conn,
		eval:    eval,
		journal: journal.Discard{},
		runID:   uuid.NewString(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = log.With().Str("run_id", r.runID).Logger()
	return r
}

// RunID identifies this runner's batch in logs and the journal.
func (r *Runner) RunID() string { return r.runID }

// Run opens the session once, evaluates every address in order and closes the session on every exit path.
// The result has one WalletStatus per address. If the context ends mid-batch the partial results are discarded.
func (r *Runner) Run(ctx context.Context, addresses []string) ([]trustline.WalletStatus, error) {
	defer func() {
		if err := r.conn.Close(); err != nil {
			r.log.Warn().Err(err).Msg("close ledger session")
		}
	}()

	if err := r.conn.Open(ctx); err != nil {
		return nil, err
	}

	target := r.eval.Target()
	r.log.Info().
		Int("wallets", len(addresses)).
		Str("currency", target.Currency()).
		Str("issuer", target.Issuer()).
		Msg("checking trust lines")

	results := make([]trustline.WalletStatus, 0, len(addresses))
	sessionLost := false
	for i, addr := range addresses {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch interrupted after %d of %d wallets: %w", i, len(addresses), err)
		}

		out := r.eval.Evaluate(ctx, r.conn, addr)
		ws := out.WalletStatus()
		results = append(results, ws)
		if !sessionLost && errors.Is(out.Err, ledger.ErrNotOpen) {
			sessionLost = true
			r.log.Error().Int("remaining", len(addresses)-i).Msg("ledger session lost; remaining wallets will report no trust line")
		}

		metrics.WalletsTotal.WithLabelValues(strconv.FormatBool(ws.HasTrustline)).Inc()
		r.journal.Record(journal.NewEntry(r.runID, i+1, out, r.now()))
		r.log.Info().
			Int("n", i+1).
			Str("address", addr).
			Bool("has_trustline", ws.HasTrustline).
			Str("status", string(out.Status)).
			Msg("wallet checked")
		if r.progress != nil {
			r.progress(i+1, len(addresses), out)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch interrupted after %d of %d wallets: %w", len(addresses), len(addresses), err)
	}
	return results, nil
}
