// Package ledger observes donations on a distributed ledger. It never
// constructs or signs payments; it only watches for one that matches a
// session's correlation token.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status tags a verification outcome.
type Status string

const (
	StatusVerified   Status = "verified"
	StatusUnverified Status = "unverified"
)

// Unverified reasons.
const (
	ReasonTimeout = "timeout"
)

// VerifyRequest describes the payment the verifier should wait for.
type VerifyRequest struct {
	Account      string
	Memo         string
	MinAmount    decimal.Decimal
	Timeout      time.Duration
	PollInterval time.Duration
}

// Result is the tagged outcome of a verification attempt. It is produced
// exactly once per session and never mutated after creation.
type Result struct {
	Status Status
	Amount decimal.Decimal
	TxHash string
	Reason string
}

// Verified reports whether a matching payment was observed.
func (r Result) Verified() bool {
	return r.Status == StatusVerified
}

// Verifier polls ledger state until a matching payment appears or the
// timeout elapses. The call blocks for up to Timeout; the error return is
// reserved for context cancellation.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (Result, error)
}
