package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"xrpl-trustcheck/internal/apperr"
)

// CommandAccountLines lists the trust lines of one account.
const CommandAccountLines = "account_lines"

// Request is one command sent to the ledger node. The id is assigned by the Client.
type Request struct {
	Command string
	Params  map[string]any
}

// AccountLines builds an account_lines request for a single page. No marker is sent.
func AccountLines(account string) Request {
	return Request{
		Command: CommandAccountLines,
		Params:  map[string]any{"account": account},
	}
}

func (r Request) payload(id uint64) map[string]any {
	out := make(map[string]any, len(r.Params)+2)
	for k, v := range r.Params {
		out[k] = v
	}
	out["id"] = id
	out["command"] = r.Command
	return out
}

// Response is the envelope every reply shares.
type Response struct {
	ID           uint64          `json:"id"`
	Status       string          `json:"status"`
	Type         string          `json:"type"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
}

// ProtocolError is an error reply from the ledger node, e.g. actNotFound.
type ProtocolError struct {
	Code    string
	Number  int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger error %s: %s", e.Code, e.Message)
	}
	return "ledger error " + e.Code
}

// ErrMalformedResponse is returned when a reply cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// Err returns the protocol error carried by the response, at the top level or inside result.
func (r *Response) Err() error {
	if r == nil {
		return apperr.E("ledger.response", apperr.KindProtocol, ErrMalformedResponse)
	}
	if r.Error != "" || r.Status == "error" {
		return apperr.E("ledger.response", apperr.KindProtocol, &ProtocolError{
			Code: orDefault(r.Error, "unknown"), Number: r.ErrorCode, Message: r.ErrorMessage,
		})
	}
	if len(r.Result) > 0 {
		var inner struct {
			Error        string `json:"error"`
			ErrorCode    int    `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(r.Result, &inner); err == nil && inner.Error != "" {
			return apperr.E("ledger.response", apperr.KindProtocol, &ProtocolError{
				Code: inner.Error, Number: inner.ErrorCode, Message: inner.ErrorMessage,
			})
		}
	}
	return nil
}

// DecodeResult unmarshals the result object into v.
func (r *Response) DecodeResult(v any) error {
	if r == nil || len(r.Result) == 0 {
		return apperr.E("ledger.response", apperr.KindProtocol, fmt.Errorf("%w: empty result", ErrMalformedResponse))
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return apperr.E("ledger.response", apperr.KindProtocol, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
