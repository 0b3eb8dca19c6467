// Package orchestrator drives the donation-gated consultation: intake,
// clarifying questions, advice preview, donation request, on-ledger
// verification, and tiered advice delivery.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kairoslabs/kairos/internal/console"
	"github.com/kairoslabs/kairos/internal/ledger"
	"github.com/kairoslabs/kairos/internal/memo"
	"github.com/kairoslabs/kairos/internal/model/advisory"
	"github.com/kairoslabs/kairos/internal/service/advisor"
	"github.com/kairoslabs/kairos/internal/service/transcript"
	"github.com/kairoslabs/kairos/pkg/metrics"
)

// Terminal abort causes. Each ends the session without advice; the caller
// maps them to user-facing messages.
var (
	ErrEmptyQuery           = errors.New("initial query is empty")
	ErrDonationNotConfirmed = errors.New("donation not confirmed by user")
	ErrPaymentUnverified    = errors.New("payment could not be verified")
)

const (
	confirmationKeyword = "DONATED"
	followupCount       = 3
)

// Generator produces advisory text. Implementations never return an error;
// they degrade to advisor.Fallback instead.
type Generator interface {
	Generate(ctx context.Context, req advisor.Request) string
}

// Oracle is the premium collaborator. Its failures are absorbed here, never
// surfaced to the user as a session failure.
type Oracle interface {
	Available() bool
	Vision(ctx context.Context, query string) (string, error)
}

// Config carries the injected settings the flow depends on. There are no
// ambient lookups inside the state machine.
type Config struct {
	WalletAddress        string
	MinAmount            decimal.Decimal
	PremiumThreshold     decimal.Decimal
	Timeout              time.Duration
	PollInterval         time.Duration
	SystemPrompt         string
	FollowupSystemPrompt string
}

// Orchestrator owns one consultation flow end to end. It is safe to run
// multiple sessions concurrently; each Run call owns its own session state.
type Orchestrator struct {
	cfg         Config
	generator   Generator
	oracle      Oracle
	verifier    ledger.Verifier
	memos       *memo.Generator
	transcripts *transcript.Service
}

// New wires the consultation flow to its collaborators.
func New(cfg Config, generator Generator, oracle Oracle, verifier ledger.Verifier, memos *memo.Generator, transcripts *transcript.Service) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		generator:   generator,
		oracle:      oracle,
		verifier:    verifier,
		memos:       memos,
		transcripts: transcripts,
	}
}

// Run executes one consultation over the supplied prompter. It returns the
// advice bundle, or one of the Err* aborts, or an I/O error from the
// interaction surface.
func (o *Orchestrator) Run(ctx context.Context, prompter console.Prompter, initialQuery string) (*advisory.Bundle, error) {
	query := strings.TrimSpace(initialQuery)
	if query == "" {
		metrics.SessionsAborted.WithLabelValues("empty_query").Inc()
		return nil, ErrEmptyQuery
	}

	metrics.SessionsStarted.Inc()

	sess := advisory.NewSession(o.transcripts.Create(ctx), query)
	if err := o.transcripts.Append(ctx, sess.ID, advisory.RoleUser, query); err != nil {
		return nil, err
	}
	log.Printf("[orchestrator] session %s started, query length=%d", sess.ID, len(query))

	sess.Phase = advisory.PhaseFollowup
	if err := o.runFollowups(ctx, prompter, sess); err != nil {
		return nil, err
	}

	sess.Phase = advisory.PhaseSummary
	if err := o.runSummary(ctx, prompter, sess); err != nil {
		return nil, err
	}

	sess.Phase = advisory.PhaseDonationRequest
	if err := o.requestDonation(ctx, prompter, sess); err != nil {
		if errors.Is(err, ErrDonationNotConfirmed) {
			metrics.SessionsAborted.WithLabelValues("donation_not_confirmed").Inc()
		}
		return nil, err
	}

	sess.Phase = advisory.PhaseVerifying
	if err := o.verifyDonation(ctx, prompter, sess); err != nil {
		if errors.Is(err, ErrPaymentUnverified) {
			metrics.SessionsAborted.WithLabelValues("payment_unverified").Inc()
		}
		return nil, err
	}

	premium := sess.PremiumEligible(o.cfg.PremiumThreshold, o.oracle.Available())

	sess.Phase = advisory.PhaseAdvising
	bundle, err := o.runAdvising(ctx, prompter, sess, premium)
	if err != nil {
		return nil, err
	}

	if premium {
		sess.Phase = advisory.PhasePremiumAddon
		if err := o.runPremiumAddon(ctx, prompter, sess, bundle); err != nil {
			return nil, err
		}
	}

	sess.Phase = advisory.PhaseClosed
	tier := "base"
	if bundle.HasAddendum() {
		tier = "premium"
	}
	metrics.SessionsCompleted.WithLabelValues(tier).Inc()
	log.Printf("[orchestrator] session %s closed, tier=%s", sess.ID, tier)

	return bundle, nil
}

// runFollowups asks exactly three clarifying questions, preferring
// generated ones and padding from the defaults by slot index.
func (o *Orchestrator) runFollowups(ctx context.Context, prompter console.Prompter, sess *advisory.Session) error {
	questions := o.followupQuestions(ctx, sess.InitialQuery)

	prompter.Say("\nTo provide you with meaningful guidance, I'd like to understand your situation better:")

	for i, question := range questions {
		prompter.Say(fmt.Sprintf("\n%d. %s", i+1, question))
		answer, err := prompter.Ask("Your answer: ")
		if err != nil {
			return err
		}

		if err := o.transcripts.Append(ctx, sess.ID, advisory.RoleAssistant, question); err != nil {
			return err
		}
		if err := o.transcripts.Append(ctx, sess.ID, advisory.RoleUser, answer); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) followupQuestions(ctx context.Context, initialQuery string) []string {
	raw := o.generator.Generate(ctx, advisor.Request{
		Prompt:       followupPrompt(initialQuery),
		SystemPrompt: o.cfg.FollowupSystemPrompt,
		MaxTokens:    300,
		Temperature:  0.75,
	})

	var questions []string
	if raw != advisor.Fallback {
		questions = advisor.ParseNumberedQuestions(raw)
	}
	if len(questions) > followupCount {
		questions = questions[:followupCount]
	}
	if len(questions) < followupCount {
		log.Printf("[orchestrator] %d generated question(s), padding with defaults", len(questions))
	}
	for len(questions) < followupCount {
		questions = append(questions, defaultQuestions[len(questions)])
	}

	return questions
}

func (o *Orchestrator) runSummary(ctx context.Context, prompter console.Prompter, sess *advisory.Session) error {
	history, err := o.transcripts.History(ctx, sess.ID)
	if err != nil {
		return err
	}

	summary := o.generator.Generate(ctx, advisor.Request{
		Prompt:       summaryPrompt,
		SystemPrompt: o.cfg.SystemPrompt,
		History:      history,
		MaxTokens:    200,
		Temperature:  0.7,
	})
	summary = advisor.TruncateSentences(summary, 2)

	prompter.Say("\nBased on what you've shared, I'm preparing your personalized guidance.")
	prompter.Say("Here's a preview of what I'll explore in detail after your offering:")
	prompter.Say(fmt.Sprintf("\n%q\n", summary))
	return nil
}

// requestDonation generates the session's correlation token (exactly once,
// before any payment instructions are shown) and waits for the user to
// confirm having donated.
func (o *Orchestrator) requestDonation(ctx context.Context, prompter console.Prompter, sess *advisory.Session) error {
	sess.Phase = advisory.PhaseDonationRequest
	sess.Memo = o.memos.Generate()

	prompter.Say(strings.Repeat("-", 70))
	prompter.Say("\nTo receive your full personalized guidance, our service requires")
	prompter.Say(fmt.Sprintf("a donation of at least %s tokens to be sent to:", o.cfg.MinAmount))
	prompter.Say(fmt.Sprintf("\nWallet Address: %s", o.cfg.WalletAddress))
	prompter.Say(fmt.Sprintf("Memo (required): %s", sess.Memo))
	prompter.Say("\nThe memo must be included exactly as shown for verification.")
	prompter.Say(fmt.Sprintf("\nFor premium guidance including Oracle Vision, donate %s tokens or more.", o.cfg.PremiumThreshold))
	prompter.Say(fmt.Sprintf("\nAfter completing your donation, please type '%s' and press Enter.", confirmationKeyword))

	response, err := prompter.Ask(fmt.Sprintf("\nType '%s' when ready: ", confirmationKeyword))
	if err != nil {
		return err
	}

	if !strings.EqualFold(strings.TrimSpace(response), confirmationKeyword) {
		return ErrDonationNotConfirmed
	}
	return nil
}

func (o *Orchestrator) verifyDonation(ctx context.Context, prompter console.Prompter, sess *advisory.Session) error {
	prompter.Say("\nVerifying your donation, please wait...")

	start := time.Now()
	result, err := o.verifier.Verify(ctx, ledger.VerifyRequest{
		Account:      o.cfg.WalletAddress,
		Memo:         sess.Memo,
		MinAmount:    o.cfg.MinAmount,
		Timeout:      o.cfg.Timeout,
		PollInterval: o.cfg.PollInterval,
	})
	metrics.VerificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if !result.Verified() {
		log.Printf("[orchestrator] session %s donation unverified: %s", sess.ID, result.Reason)
		return ErrPaymentUnverified
	}

	amount := result.Amount
	if amount.IsZero() {
		// The verifier matched a payment but could not read its amount.
		// Assume the minimum, which can only under-grant the premium tier.
		log.Printf("[orchestrator] session %s verified without readable amount, assuming minimum", sess.ID)
		amount = o.cfg.MinAmount
	}
	sess.RecordVerifiedAmount(amount)
	log.Printf("[orchestrator] session %s verified, amount=%s tx=%s", sess.ID, amount, result.TxHash)
	return nil
}

func (o *Orchestrator) runAdvising(ctx context.Context, prompter console.Prompter, sess *advisory.Session, premium bool) (*advisory.Bundle, error) {
	prompter.Say("\nYour donation has been received and verified.")
	if premium {
		amount, _ := sess.VerifiedAmount()
		prompter.Say(fmt.Sprintf("\nYou've donated %s tokens - unlocking both standard guidance and Oracle Vision!", amount))
	}
	prompter.Say("\nPreparing your comprehensive purpose guidance...")

	history, err := o.transcripts.History(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	advice := o.generator.Generate(ctx, advisor.Request{
		Prompt:       advicePrompt,
		SystemPrompt: o.cfg.SystemPrompt,
		History:      history,
		MaxTokens:    2000,
		Temperature:  0.8,
	})

	return &advisory.Bundle{BaseAdvice: advice}, nil
}

// runPremiumAddon consults the oracle with the initial query, or a refined
// one if the user asks for it. Oracle failure is non-fatal: the base advice
// has already been earned.
func (o *Orchestrator) runPremiumAddon(ctx context.Context, prompter console.Prompter, sess *advisory.Session, bundle *advisory.Bundle) error {
	prompter.Say("\nConsulting the Oracle for additional wisdom...")

	question := sess.InitialQuery
	choice, err := prompter.Ask(fmt.Sprintf(
		"Do you want to refine your question or continue with your original query:\n%q\nRefine - press R, Original - press O: ",
		sess.InitialQuery,
	))
	if err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(choice), "R") {
		refined, err := prompter.Ask("Please enter your final question for the Oracle: ")
		if err != nil {
			return err
		}
		if strings.TrimSpace(refined) != "" {
			question = strings.TrimSpace(refined)
		}
	}

	vision, visionErr := o.oracle.Vision(ctx, question)
	if visionErr != nil {
		log.Printf("[orchestrator] session %s oracle vision failed, delivering base advice only: %v", sess.ID, visionErr)
		return nil
	}

	bundle.Addendum = vision
	return nil
}
