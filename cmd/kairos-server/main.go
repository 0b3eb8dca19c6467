package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kairoslabs/kairos/internal/config"
	"github.com/kairoslabs/kairos/internal/gateway"
	"github.com/kairoslabs/kairos/internal/ledger"
	"github.com/kairoslabs/kairos/internal/memo"
	"github.com/kairoslabs/kairos/internal/model/persona"
	"github.com/kairoslabs/kairos/internal/orchestrator"
	"github.com/kairoslabs/kairos/internal/service/advisor"
	"github.com/kairoslabs/kairos/internal/service/oracle"
	"github.com/kairoslabs/kairos/internal/service/transcript"
	"github.com/kairoslabs/kairos/pkg/metrics"
)

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

	router := gateway.NewRouter(orch, persona.NewMemoryStore(persona.Seed()))
	startServer(ctx, cfg.Server, router)
}

func buildOrchestrator(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	advisorSvc := advisor.NewService(chatModel)

	oracleSvc, err := oracle.NewService(ctx, chatModel, cfg.Advisor.OracleSystemPrompt)
	if err != nil {
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

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Kairos gateway listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
