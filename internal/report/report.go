// Package report summarizes the results of a run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"xrpl-trustcheck/internal/trustline"
)

// Summary counts a run's results.
type Summary struct {
	Total            int
	WithTrustline    int
	WithoutTrustline int
	Failed           int             // queries that errored, included in WithoutTrustline
	Missing          []string        // addresses without a trust line, in input order
	HeldBalance      decimal.Decimal // sum of balances on active trust lines
	Unparsed         []string        // active addresses whose balance is left out of HeldBalance
}

// Summarize is a pure function of results.
func Summarize(results []trustline.WalletStatus) Summary {
	s := Summary{Total: len(results), Missing: []string{}, HeldBalance: decimal.Zero}
	for _, r := range results {
		if r.HasTrustline {
			s.WithTrustline++
			bal, err := decimal.NewFromString(r.Balance)
			if err != nil {
				s.Unparsed = append(s.Unparsed, r.Address)
				continue
			}
			s.HeldBalance = s.HeldBalance.Add(bal)
			continue
		}
		s.WithoutTrustline++
		s.Missing = append(s.Missing, r.Address)
		if r.Status == trustline.StatusFailed {
			s.Failed++
		}
	}
	return s
}

// Write renders the final summary for an operator.
func Write(w io.Writer, s Summary) error {
	var b strings.Builder
	b.WriteString("\nFinal Summary:\n")
	fmt.Fprintf(&b, "Total wallets checked: %d\n", s.Total)
	fmt.Fprintf(&b, "Wallets with trustline: %d\n", s.WithTrustline)
	fmt.Fprintf(&b, "Wallets without trustline: %d\n", s.WithoutTrustline)
	if s.Failed > 0 {
		fmt.Fprintf(&b, "Failed queries (counted as without): %d\n", s.Failed)
	}
	fmt.Fprintf(&b, "Balance held on active trust lines: %s\n", s.HeldBalance.String())
	if len(s.Unparsed) > 0 {
		fmt.Fprintf(&b, "Balances not counted (unparseable): %d\n", len(s.Unparsed))
	}

	if len(s.Missing) > 0 {
		b.WriteString("\nWallets missing trust lines:\n")
		for i, addr := range s.Missing {
			fmt.Fprintf(&b, "%d. %s\n", i+1, addr)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
