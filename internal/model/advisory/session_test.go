package advisory_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kairoslabs/kairos/internal/model/advisory"
)

func TestRecordVerifiedAmountOnce(t *testing.T) {
	sess := advisory.NewSession("s1", "what is my purpose?")

	if _, ok := sess.VerifiedAmount(); ok {
		t.Fatal("fresh session should have no verified amount")
	}

	if !sess.RecordVerifiedAmount(decimal.NewFromInt(15)) {
		t.Fatal("first record should succeed")
	}
	if sess.RecordVerifiedAmount(decimal.NewFromInt(99)) {
		t.Fatal("second record should be rejected")
	}

	amount, ok := sess.VerifiedAmount()
	if !ok {
		t.Fatal("verified amount should be set")
	}
	if !amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("amount overwritten: got %s", amount)
	}
}

func TestPremiumEligible(t *testing.T) {
	threshold := decimal.NewFromInt(10)

	cases := []struct {
		name      string
		amount    int64
		available bool
		want      bool
	}{
		{"above threshold with oracle", 15, true, true},
		{"at threshold with oracle", 10, true, true},
		{"below threshold with oracle", 5, true, false},
		{"above threshold without oracle", 15, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := advisory.NewSession("s1", "q")
			sess.RecordVerifiedAmount(decimal.NewFromInt(tc.amount))
			if got := sess.PremiumEligible(threshold, tc.available); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestPremiumEligibleRequiresVerification(t *testing.T) {
	sess := advisory.NewSession("s1", "q")
	if sess.PremiumEligible(decimal.NewFromInt(10), true) {
		t.Fatal("unverified session must not be premium eligible")
	}
}

func TestBundleText(t *testing.T) {
	base := &advisory.Bundle{BaseAdvice: "Walk your own path."}
	if base.HasAddendum() {
		t.Fatal("bundle without addendum reports one")
	}
	if base.Text() != "Walk your own path." {
		t.Fatalf("unexpected text: %q", base.Text())
	}

	premium := &advisory.Bundle{BaseAdvice: "Walk your own path.", Addendum: "The mists part."}
	if !premium.HasAddendum() {
		t.Fatal("bundle with addendum reports none")
	}
	text := premium.Text()
	if !strings.Contains(text, "Oracle Vision") {
		t.Fatalf("rendered text missing delimiter section: %q", text)
	}
	if !strings.Contains(text, "The mists part.") {
		t.Fatalf("rendered text missing addendum: %q", text)
	}
}
