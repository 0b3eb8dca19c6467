package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kairoslabs/kairos/internal/config"
	"github.com/kairoslabs/kairos/internal/console"
	"github.com/kairoslabs/kairos/internal/ledger"
	"github.com/kairoslabs/kairos/internal/memo"
	"github.com/kairoslabs/kairos/internal/orchestrator"
	"github.com/kairoslabs/kairos/internal/service/advisor"
	"github.com/kairoslabs/kairos/internal/service/oracle"
	"github.com/kairoslabs/kairos/internal/service/transcript"
	"github.com/kairoslabs/kairos/pkg/metrics"
)

const rule = "----------------------------------------------------------------------"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	metrics.Init()

	orch, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize services: %v", err)
	}

	prompter := console.NewStdio()
	printWelcome(prompter)

	query, err := prompter.Ask("\nYour question: ")
	if err != nil {
		prompter.Say("\nAn unexpected error has occurred. Please try again later.")
		log.Fatalf("failed to read initial query: %v", err)
	}

	bundle, err := orch.Run(ctx, prompter, query)
	if err != nil {
		exitWithReason(prompter, err)
		return
	}

	prompter.Say("\n" + rule)
	prompter.Say("Your Personalized Purpose Guidance")
	prompter.Say(rule + "\n")
	prompter.Say(bundle.Text())

	prompter.Say("\n" + rule)
	prompter.Say("\nThank you for using Kairos. I hope this guidance provides clarity")
	prompter.Say("and direction as you navigate your path forward.")
	prompter.Say("\nIf you found value in this consultation and wish to support our")
	prompter.Say("ongoing work, additional donations are welcomed at:")
	prompter.Say(fmt.Sprintf("\n%s", cfg.Ledger.WalletAddress))
	prompter.Say("\nWishing you clarity and purpose on your journey.")
}

func buildOrchestrator(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	advisorSvc := advisor.NewService(chatModel)

	oracleSvc, err := oracle.NewService(ctx, chatModel, cfg.Advisor.OracleSystemPrompt)
	if err != nil {
		// The base consultation still works without the oracle.
		log.Printf("warning: oracle unavailable, premium tier disabled: %v", err)
		oracleSvc, _ = oracle.NewService(ctx, nil, cfg.Advisor.OracleSystemPrompt)
	}

	orchCfg := orchestrator.Config{
		WalletAddress:        cfg.Ledger.WalletAddress,
		MinAmount:            cfg.Ledger.MinAmount,
		PremiumThreshold:     cfg.Ledger.PremiumThreshold,
		Timeout:              cfg.Ledger.Timeout,
		PollInterval:         cfg.Ledger.PollInterval,
		SystemPrompt:         cfg.Advisor.SystemPrompt,
		FollowupSystemPrompt: cfg.Advisor.FollowupSystemPrompt,
	}

	return orchestrator.New(
		orchCfg,
		advisorSvc,
		oracleSvc,
		ledger.NewXRPLVerifier(cfg.Ledger.RPCEndpoint, cfg.Ledger.Currency),
		memo.NewGenerator(cfg.Advisor.MemoPrefix),
		transcript.NewService(),
	), nil
}

func printWelcome(prompter console.Prompter) {
	prompter.Say("\n" + rule)
	prompter.Say("Kairos - Purpose Finding Service")
	prompter.Say(rule)
	prompter.Say("\nWelcome to Kairos. I am your Purpose Guide, designed to help you")
	prompter.Say("discover clarity, meaning, and direction in your life journey.")
	prompter.Say("\nThrough our conversation and the token donation process,")
	prompter.Say("I will provide you with personalized guidance tailored to your situation.")
	prompter.Say("\nPlease share your purpose-related question or concern.")
}

func exitWithReason(prompter console.Prompter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyQuery):
		prompter.Say("\nI need a question to work with. Please restart and provide a question.")
	case errors.Is(err, orchestrator.ErrDonationNotConfirmed):
		prompter.Say("\nThe consultation cannot proceed without confirmation. Please restart when ready.")
	case errors.Is(err, orchestrator.ErrPaymentUnverified):
		prompter.Say("\nYour donation could not be verified within the allotted time.")
		prompter.Say("We cannot proceed without a verified transaction.")
		prompter.Say("Please check your transaction details and try again later.")
	case errors.Is(err, context.Canceled):
		prompter.Say("\nSession interrupted. You may restart the consultation at any time.")
	default:
		log.Printf("unexpected error: %v", err)
		prompter.Say("\nAn unexpected error has occurred.")
		prompter.Say("Please try again later.")
		os.Exit(1)
	}
}
