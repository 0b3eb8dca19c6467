package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kairoslabs/kairos/internal/ledger"
	"github.com/kairoslabs/kairos/internal/memo"
	"github.com/kairoslabs/kairos/internal/orchestrator"
	"github.com/kairoslabs/kairos/internal/service/advisor"
	"github.com/kairoslabs/kairos/internal/service/transcript"
)

// scriptPrompter replays canned answers and records everything shown.
type scriptPrompter struct {
	answers []string
	next    int
	said    []string
	asked   []string
}

func (p *scriptPrompter) Say(text string) {
	p.said = append(p.said, text)
}

func (p *scriptPrompter) Ask(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if p.next >= len(p.answers) {
		return "", fmt.Errorf("no scripted answer for prompt %q", prompt)
	}
	answer := p.answers[p.next]
	p.next++
	return answer, nil
}

func (p *scriptPrompter) saidContaining(substr string) string {
	for _, line := range p.said {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

// stubGenerator keys its responses off the per-purpose token budgets.
type stubGenerator struct {
	followups string
	summary   string
	advice    string
	calls     int
	budgets   []int
}

func (g *stubGenerator) Generate(_ context.Context, req advisor.Request) string {
	g.calls++
	g.budgets = append(g.budgets, req.MaxTokens)
	switch req.MaxTokens {
	case 300:
		return g.followups
	case 200:
		return g.summary
	default:
		return g.advice
	}
}

type stubOracle struct {
	available bool
	vision    string
	err       error
	calls     int
	lastQuery string
}

func (o *stubOracle) Available() bool { return o.available }

func (o *stubOracle) Vision(_ context.Context, query string) (string, error) {
	o.calls++
	o.lastQuery = query
	return o.vision, o.err
}

type stubVerifier struct {
	result  ledger.Result
	calls   int
	lastReq ledger.VerifyRequest
}

func (v *stubVerifier) Verify(_ context.Context, req ledger.VerifyRequest) (ledger.Result, error) {
	v.calls++
	v.lastReq = req
	return v.result, nil
}

func verified(amount int64) ledger.Result {
	return ledger.Result{Status: ledger.StatusVerified, Amount: decimal.NewFromInt(amount)}
}

func newOrchestrator(gen *stubGenerator, orc *stubOracle, ver *stubVerifier) *orchestrator.Orchestrator {
	cfg := orchestrator.Config{
		WalletAddress:        "rKairosTestWallet",
		MinAmount:            decimal.NewFromInt(2),
		PremiumThreshold:     decimal.NewFromInt(10),
		Timeout:              time.Second,
		PollInterval:         100 * time.Millisecond,
		SystemPrompt:         "You are Kairos.",
		FollowupSystemPrompt: "You are a Purpose Coach.",
	}
	return orchestrator.New(cfg, gen, orc, ver, memo.NewGenerator("kairos"), transcript.NewService())
}

func defaultGenerator() *stubGenerator {
	return &stubGenerator{
		followups: "1. What do you value?\n2. What holds you back?\n3. What scares you about AGI?",
		summary:   "You will hear a hard truth. It will point somewhere new.",
		advice:    "Here is your guidance in full.",
	}
}

// premiumAnswers covers three follow-ups, the confirmation keyword, and the
// oracle path choice.
func premiumAnswers() []string {
	return []string{"family", "fear", "obsolescence", "DONATED", "O"}
}

func TestRunEmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		gen := defaultGenerator()
		orc := &stubOracle{available: true}
		ver := &stubVerifier{result: verified(15)}
		o := newOrchestrator(gen, orc, ver)

		_, err := o.Run(context.Background(), &scriptPrompter{}, query)
		if !errors.Is(err, orchestrator.ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", query, err)
		}
		if gen.calls != 0 || orc.calls != 0 || ver.calls != 0 {
			t.Fatalf("query %q: collaborators invoked on empty query: gen=%d oracle=%d verifier=%d",
				query, gen.calls, orc.calls, ver.calls)
		}
	}
}

func TestRunPremiumSession(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: true, vision: "The mists part before you."}
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: premiumAnswers()}

	bundle, err := o.Run(context.Background(), prompter, "What should I do with my life?")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if bundle.BaseAdvice != "Here is your guidance in full." {
		t.Fatalf("unexpected base advice: %q", bundle.BaseAdvice)
	}
	if bundle.Addendum != "The mists part before you." {
		t.Fatalf("unexpected addendum: %q", bundle.Addendum)
	}
	if orc.lastQuery != "What should I do with my life?" {
		t.Fatalf("oracle queried with %q, want the initial query", orc.lastQuery)
	}
}

func TestRunMemoShownMatchesVerification(t *testing.T) {
	gen := defaultGenerator()
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, &stubOracle{available: true, vision: "v"}, ver)
	prompter := &scriptPrompter{answers: premiumAnswers()}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	line := prompter.saidContaining("Memo (required): ")
	if line == "" {
		t.Fatal("payment instructions never showed a memo")
	}
	shown := strings.TrimSpace(strings.TrimPrefix(line, "Memo (required): "))
	if shown != ver.lastReq.Memo {
		t.Fatalf("memo shown %q differs from memo verified %q", shown, ver.lastReq.Memo)
	}
	if !ver.lastReq.MinAmount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected verification minimum: %s", ver.lastReq.MinAmount)
	}
}

func TestRunBaseTierBelowThreshold(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: true, vision: "should never appear"}
	ver := &stubVerifier{result: verified(5)}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	bundle, err := o.Run(context.Background(), prompter, "purpose?")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if bundle.HasAddendum() {
		t.Fatalf("below-threshold donation produced addendum: %q", bundle.Addendum)
	}
	if orc.calls != 0 {
		t.Fatalf("oracle consulted for base tier: %d calls", orc.calls)
	}
}

func TestRunUnverifiedDonation(t *testing.T) {
	gen := defaultGenerator()
	ver := &stubVerifier{result: ledger.Result{Status: ledger.StatusUnverified, Reason: ledger.ReasonTimeout}}
	o := newOrchestrator(gen, &stubOracle{available: true}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	bundle, err := o.Run(context.Background(), prompter, "purpose?")
	if !errors.Is(err, orchestrator.ErrPaymentUnverified) {
		t.Fatalf("expected ErrPaymentUnverified, got %v", err)
	}
	if bundle != nil {
		t.Fatalf("unverified session returned a bundle: %+v", bundle)
	}

	for _, budget := range gen.budgets {
		if budget == 2000 {
			t.Fatal("advice generated before verification succeeded")
		}
	}
}

func TestRunDonationNotConfirmed(t *testing.T) {
	gen := defaultGenerator()
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, &stubOracle{available: true}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "not yet"}}

	_, err := o.Run(context.Background(), prompter, "purpose?")
	if !errors.Is(err, orchestrator.ErrDonationNotConfirmed) {
		t.Fatalf("expected ErrDonationNotConfirmed, got %v", err)
	}
	if ver.calls != 0 {
		t.Fatal("verifier invoked without confirmation")
	}
}

func TestRunConfirmationCaseInsensitive(t *testing.T) {
	gen := defaultGenerator()
	ver := &stubVerifier{result: verified(5)}
	o := newOrchestrator(gen, &stubOracle{}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "donated"}}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("lowercase confirmation rejected: %v", err)
	}
	if ver.calls != 1 {
		t.Fatalf("expected one verification call, got %d", ver.calls)
	}
}

func TestRunFollowupPadding(t *testing.T) {
	gen := defaultGenerator()
	gen.followups = "1. Only one generated question?"
	ver := &stubVerifier{result: verified(5)}
	o := newOrchestrator(gen, &stubOracle{}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if len(prompter.asked) != 4 {
		t.Fatalf("expected exactly 3 follow-ups plus confirmation, got %d prompts", len(prompter.asked))
	}
	if got := prompter.saidContaining("1. Only one generated question?"); got == "" {
		t.Fatal("generated question not asked first")
	}
	if got := prompter.saidContaining("2. If advanced AI systems eventually perform most conventional work"); got == "" {
		t.Fatal("second slot not padded with the matching default")
	}
	if got := prompter.saidContaining("3. If you were granted perfect foresight"); got == "" {
		t.Fatal("third slot not padded with the matching default")
	}
}

func TestRunGeneratorFailureFallsBackToDefaults(t *testing.T) {
	gen := defaultGenerator()
	gen.followups = advisor.Fallback
	ver := &stubVerifier{result: verified(5)}
	o := newOrchestrator(gen, &stubOracle{}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if got := prompter.saidContaining("1. In a world being transformed by advanced AI"); got == "" {
		t.Fatal("first default question not asked")
	}
}

func TestRunSummaryTruncatedToTwoSentences(t *testing.T) {
	gen := defaultGenerator()
	gen.summary = "One insight. Two insights. Three insights. Four."
	ver := &stubVerifier{result: verified(5)}
	o := newOrchestrator(gen, &stubOracle{}, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if got := prompter.saidContaining(`"One insight. Two insights."`); got == "" {
		t.Fatalf("summary not truncated to two sentences; said: %q", prompter.said)
	}
}

func TestRunOracleFailureKeepsBaseAdvice(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: true, err: errors.New("the oracle is silent")}
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: premiumAnswers()}

	bundle, err := o.Run(context.Background(), prompter, "purpose?")
	if err != nil {
		t.Fatalf("oracle failure must not fail the session: %v", err)
	}

	if bundle.BaseAdvice != "Here is your guidance in full." {
		t.Fatalf("base advice lost: %q", bundle.BaseAdvice)
	}
	if bundle.HasAddendum() {
		t.Fatalf("failed oracle still produced addendum: %q", bundle.Addendum)
	}
}

func TestRunOracleUnavailableSkipsPremium(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: false, vision: "should never appear"}
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	bundle, err := o.Run(context.Background(), prompter, "purpose?")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if bundle.HasAddendum() || orc.calls != 0 {
		t.Fatalf("premium ran without an available oracle: addendum=%q calls=%d", bundle.Addendum, orc.calls)
	}
}

func TestRunRefinedOracleQuestion(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: true, vision: "v"}
	ver := &stubVerifier{result: verified(15)}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED", "r", "What comes after work?"}}

	if _, err := o.Run(context.Background(), prompter, "purpose?"); err != nil {
		t.Fatalf("Run err: %v", err)
	}

	if orc.lastQuery != "What comes after work?" {
		t.Fatalf("refined question not used: %q", orc.lastQuery)
	}
}

func TestRunVerifiedWithoutAmountAssumesMinimum(t *testing.T) {
	gen := defaultGenerator()
	orc := &stubOracle{available: true, vision: "should never appear"}
	ver := &stubVerifier{result: ledger.Result{Status: ledger.StatusVerified}}
	o := newOrchestrator(gen, orc, ver)
	prompter := &scriptPrompter{answers: []string{"a", "b", "c", "DONATED"}}

	bundle, err := o.Run(context.Background(), prompter, "purpose?")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}

	// An unreadable amount is treated as the configured minimum, which sits
	// below the premium threshold.
	if bundle.HasAddendum() || orc.calls != 0 {
		t.Fatal("missing amount must never unlock the premium tier")
	}
}
