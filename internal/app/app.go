// Package app runs one trust line check end to end: pre-flight checks, the batch, the output table and the summary.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"xrpl-trustcheck/internal/apperr"
	"xrpl-trustcheck/internal/batch"
	"xrpl-trustcheck/internal/config"
	"xrpl-trustcheck/internal/export"
	"xrpl-trustcheck/internal/journal"
	"xrpl-trustcheck/internal/ledger"
	"xrpl-trustcheck/internal/report"
	"xrpl-trustcheck/internal/trustline"
	"xrpl-trustcheck/internal/wallets"
)

// ConnFactory builds the ledger session for a run.
type ConnFactory func(cfg config.Ledger, log zerolog.Logger) batch.Conn

// Deps are the collaborators of Run. Zero values select the production defaults.
type Deps struct {
	Log      zerolog.Logger
	Console  io.Writer // receives the final summary
	NewConn  ConnFactory
	Journal  journal.Recorder
	Progress batch.ProgressFunc
}

// Result is what a completed run produced.
type Result struct {
	RunID   string
	Wallets []trustline.WalletStatus
	Summary report.Summary
}

// LedgerConn is the default ConnFactory backed by a websocket ledger.Client.
func LedgerConn(cfg config.Ledger, log zerolog.Logger) batch.Conn {
	return ledger.NewClient(cfg.WebsocketURL, log,
		ledger.WithHandshakeTimeout(cfg.HandshakeTimeout()),
		ledger.WithRequestTimeout(cfg.RequestTimeout()),
		ledger.WithPingInterval(cfg.PingInterval()),
	)
}

// Run validates cfg and the address list before any network activity, then checks every wallet.
// The output table is written only when the batch completes.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	if cfg == nil {
		return nil, apperr.E("app.run", apperr.KindConfiguration, fmt.Errorf("nil config"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.NewConn == nil {
		deps.NewConn = LedgerConn
	}
	if deps.Console == nil {
		deps.Console = io.Discard
	}
	log := deps.Log

	addresses, err := wallets.Load(cfg.Files.InputCSV)
	if err != nil {
		return nil, err
	}
	log.Info().Int("wallets", len(addresses)).Str("path", cfg.Files.InputCSV).Msg("loaded wallet addresses")

	rec := deps.Journal
	if rec == nil && cfg.Files.JournalPath != "" {
		jsonl, err := journal.NewJSONLRecorder(cfg.Files.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		defer jsonl.Close()
		rec = jsonl
	}

	target := trustline.NewTargetAsset(cfg.Token.Issuer, cfg.Token.Currency)
	runner := batch.NewRunner(
		deps.NewConn(cfg.Ledger, log),
		trustline.NewEvaluator(target, log),
		log,
		batch.WithJournal(rec),
		batch.WithProgress(deps.Progress),
	)

	results, err := runner.Run(ctx, addresses)
	if err != nil {
		return nil, err
	}

	if err := export.WriteCSV(cfg.Files.OutputCSV, results); err != nil {
		return nil, fmt.Errorf("save results: %w", err)
	}
	log.Info().Str("path", cfg.Files.OutputCSV).Msg("results saved")

	summary := report.Summarize(results)
	if len(summary.Unparsed) > 0 {
		log.Warn().Strs("addresses", summary.Unparsed).Msg("balances left out of the held total")
	}
	if err := report.Write(deps.Console, summary); err != nil {
		log.Warn().Err(err).Msg("write summary")
	}
	return &Result{RunID: runner.RunID(), Wallets: results, Summary: summary}, nil
}
