package trustline

// Status details why an evaluation ended the way it did.
type Status string

const (
	// StatusActive means a matching trust line with a non-zero limit exists.
	StatusActive Status = "active"
	// StatusInactive means the matching trust line has a limit of "0".
	StatusInactive Status = "inactive"
	// StatusMissing means no trust line matches the target asset.
	StatusMissing Status = "missing"
	// StatusFailed means the query failed; the address counts as having no trust line.
	StatusFailed Status = "failed"
)

// Outcome is the result of evaluating one address.
type Outcome struct {
	Address   string
	Status    Status
	Line      *TrustLine // matched line, nil when none matched
	LineCount int
	Truncated bool // the node reported more pages that were not fetched
	Err       error
}

// HasTrustline folds the outcome into the reported boolean.
func (o Outcome) HasTrustline() bool { return o.Status == StatusActive }

// WalletStatus converts the outcome into the reported record.
func (o Outcome) WalletStatus() WalletStatus {
	ws := WalletStatus{Address: o.Address, HasTrustline: o.HasTrustline(), Status: o.Status}
	if o.Line != nil {
		ws.Balance = o.Line.Balance
	}
	return ws
}
