package advisory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase is one discrete step of the consultation flow.
type Phase string

const (
	PhaseIntake          Phase = "intake"
	PhaseFollowup        Phase = "followup"
	PhaseSummary         Phase = "summary"
	PhaseDonationRequest Phase = "donation_request"
	PhaseVerifying       Phase = "verifying"
	PhaseAdvising        Phase = "advising"
	PhasePremiumAddon    Phase = "premium_addon"
	PhaseClosed          Phase = "closed"
)

// Turn roles as stored in the dialogue transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single role-tagged entry of the dialogue history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FollowupQuestion pairs a clarifying question with the user's answer.
type FollowupQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session is the unit of work for one consultation. The initial query is
// immutable once set, and the verified amount may be recorded at most once.
type Session struct {
	ID           string
	Memo         string
	InitialQuery string
	Phase        Phase
	StartedAt    time.Time

	verifiedAmount decimal.Decimal
	verified       bool
}

// NewSession starts a session in the intake phase.
func NewSession(id, initialQuery string) *Session {
	return &Session{
		ID:           id,
		InitialQuery: initialQuery,
		Phase:        PhaseIntake,
		StartedAt:    time.Now().UTC(),
	}
}

// RecordVerifiedAmount stores the observed donation amount. Only the first
// call takes effect; later calls report false and leave the session unchanged.
func (s *Session) RecordVerifiedAmount(amount decimal.Decimal) bool {
	if s.verified {
		return false
	}
	s.verifiedAmount = amount
	s.verified = true
	return true
}

// VerifiedAmount returns the observed donation amount, if one was recorded.
func (s *Session) VerifiedAmount() (decimal.Decimal, bool) {
	return s.verifiedAmount, s.verified
}

// PremiumEligible reports whether this session unlocks the premium tier.
// It is derived from the verified amount and never stored independently.
func (s *Session) PremiumEligible(threshold decimal.Decimal, oracleAvailable bool) bool {
	if !s.verified || !oracleAvailable {
		return false
	}
	return s.verifiedAmount.GreaterThanOrEqual(threshold)
}
