// Package trustline decides whether an account holds a usable trust line for one issued asset.
package trustline

import "strings"

// NamespaceSeparator splits a namespaced issuer such as "xrpl.rIssuer".
const NamespaceSeparator = "."

// TargetAsset is the issued asset being checked. Build it with NewTargetAsset.
type TargetAsset struct {
	issuer   string
	currency string
}

// NewTargetAsset normalizes issuer by keeping only the text after the last separator.
func NewTargetAsset(issuer, currency string) TargetAsset {
	if i := strings.LastIndex(issuer, NamespaceSeparator); i >= 0 {
		issuer = issuer[i+len(NamespaceSeparator):]
	}
	return TargetAsset{issuer: issuer, currency: currency}
}

// Issuer returns the normalized issuer account.
func (a TargetAsset) Issuer() string { return a.issuer }

// Currency returns the currency code, compared case-sensitively.
func (a TargetAsset) Currency() string { return a.currency }

// Matches reports whether line is issued by this asset's issuer in this asset's currency.
func (a TargetAsset) Matches(line TrustLine) bool {
	return line.Account == a.issuer && line.Currency == a.currency
}

// TrustLine is one entry of an account_lines reply.
type TrustLine struct {
	Account  string `json:"account"` // counterparty
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Limit    string `json:"limit"`
}

// Active reports whether the line extends credit. A missing limit counts as "0".
func (l TrustLine) Active() bool { return l.Limit != "" && l.Limit != "0" }

// WalletStatus is the per-address result of a run.
type WalletStatus struct {
	Address      string
	HasTrustline bool
	Status       Status
	Balance      string // balance of the matched line, empty when none matched
}
