package trustline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"xrpl-trustcheck/internal/apperr"
	"xrpl-trustcheck/internal/ledger"
	"xrpl-trustcheck/internal/metrics"
)

// Requester sends one ledger request and waits for its reply.
type Requester interface {
	Request(ctx context.Context, req ledger.Request) (*ledger.Response, error)
}

type accountLinesResult struct {
	Account string      `json:"account"`
	Lines   []TrustLine `json:"lines"`
	Marker  any         `json:"marker"`
}

// Evaluator checks accounts against a single TargetAsset.
type Evaluator struct {
	target TargetAsset
	log    zerolog.Logger
}

// NewEvaluator binds an evaluator to target.
func NewEvaluator(target TargetAsset, log zerolog.Logger) *Evaluator {
	return &Evaluator{target: target, log: log}
}

// Target returns the asset the evaluator checks for.
func (e *Evaluator) Target() TargetAsset { return e.target }

// Evaluate queries the trust lines of address and decides whether it holds a usable one.
// Every failure is contained in the returned Outcome with StatusFailed.
func (e *Evaluator) Evaluate(ctx context.Context, r Requester, address string) (out Outcome) {
	out = Outcome{Address: address, Status: StatusMissing}
	log := e.log.With().Str("address", address).Logger()
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Address: address, Status: StatusFailed, Err: fmt.Errorf("evaluate %s: panic: %v", address, p)}
		}
		metrics.QuerySeconds.Observe(time.Since(start).Seconds())
		metrics.QueriesTotal.WithLabelValues(string(out.Status)).Inc()
		if out.Err != nil {
			log.Warn().Err(out.Err).Msg("trust line query failed")
		}
	}()

	resp, err := r.Request(ctx, ledger.AccountLines(address))
	if err != nil {
		return failed(address, err)
	}
	if err := resp.Err(); err != nil {
		return failed(address, err)
	}
	var result accountLinesResult
	if err := resp.DecodeResult(&result); err != nil {
		return failed(address, err)
	}

	out.LineCount = len(result.Lines)
	out.Truncated = result.Marker != nil
	if out.Truncated {
		log.Warn().Int("lines", out.LineCount).Msg("account has more trust lines than one page; only the first page is checked")
	}
	if out.LineCount == 0 {
		log.Debug().Msg("no trust lines found")
	}

	for i, line := range result.Lines {
		match := e.target.Matches(line)
		log.Debug().
			Int("n", i+1).
			Str("currency", line.Currency).
			Str("issuer", line.Account).
			Str("balance", line.Balance).
			Str("limit", line.Limit).
			Bool("target", match).
			Msg("trust line")
		if !match || out.Line != nil {
			continue
		}
		matched := line
		out.Line = &matched
		if line.Active() {
			out.Status = StatusActive
		} else {
			out.Status = StatusInactive
		}
		if e.log.GetLevel() > zerolog.DebugLevel {
			break
		}
	}
	return out
}

func failed(address string, err error) Outcome {
	if apperr.KindOf(err) == "" {
		err = apperr.E("trustline.evaluate", apperr.KindTransport, err)
	}
	return Outcome{Address: address, Status: StatusFailed, Err: err}
}
