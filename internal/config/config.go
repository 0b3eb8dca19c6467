package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/shopspring/decimal"

	"github.com/kairoslabs/kairos/internal/model/persona"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Ledger  LedgerConfig
	Advisor AdvisorConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	ledger, err := loadLedgerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Ledger:  ledger,
		Advisor: loadAdvisorConfig(),
	}, nil
}

// ServerConfig describes the HTTP gateway listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used for advice generation.
type AIConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: set ARK_API_KEY + ARK_MODEL, or the AK/SK pair")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	return AIConfig{
		APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

// LedgerConfig describes the donation ledger and verification policy.
// Amounts are exact decimals: they gate monetary thresholds and must never
// pass through floating point.
type LedgerConfig struct {
	RPCEndpoint      string
	WalletAddress    string
	Currency         string
	MinAmount        decimal.Decimal
	PremiumThreshold decimal.Decimal
	Timeout          time.Duration
	PollInterval     time.Duration
}

func loadLedgerConfig() (LedgerConfig, error) {
	minAmount, err := parseDecimalEnv("MIN_AMOUNT", "2")
	if err != nil {
		return LedgerConfig{}, err
	}

	premiumThreshold, err := parseDecimalEnv("MIN_AMOUNT_ADDON", "10")
	if err != nil {
		return LedgerConfig{}, err
	}

	timeout, err := parseSecondsEnv("TIMEOUT", 300)
	if err != nil {
		return LedgerConfig{}, err
	}

	pollInterval, err := parseSecondsEnv("POLL_INTERVAL", 10)
	if err != nil {
		return LedgerConfig{}, err
	}

	return LedgerConfig{
		RPCEndpoint:      getEnvOrDefault("XRPL_RPC_ENDPOINT", "https://xrplcluster.com"),
		WalletAddress:    getEnvOrDefault("WALLET_ADDRESS", "rYourTestWalletAddress"),
		Currency:         getEnvOrDefault("DONATION_CURRENCY", "PFT"),
		MinAmount:        minAmount,
		PremiumThreshold: premiumThreshold,
		Timeout:          timeout,
		PollInterval:     pollInterval,
	}, nil
}

// AdvisorConfig carries the persona prompt texts and the memo prefix.
// The seeded personas supply the defaults; each can be overridden.
type AdvisorConfig struct {
	SystemPrompt         string
	FollowupSystemPrompt string
	OracleSystemPrompt   string
	MemoPrefix           string
}

func loadAdvisorConfig() AdvisorConfig {
	defaults := map[string]string{}
	for _, p := range persona.Seed() {
		defaults[p.ID] = p.SystemPrompt
	}

	return AdvisorConfig{
		SystemPrompt:         getEnvOrDefault("SYSTEM_PROMPT", defaults[persona.KairosID]),
		FollowupSystemPrompt: getEnvOrDefault("FOLLOWUP_SYSTEM_PROMPT", defaults[persona.FollowupCoachID]),
		OracleSystemPrompt:   getEnvOrDefault("PYTHIA_SYSTEM_PROMPT", defaults[persona.PythiaID]),
		MemoPrefix:           getEnvOrDefault("MEMO_PREFIX", "kairos"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDecimalEnv(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnvOrDefault(key, defaultValue)
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseSecondsEnv(key string, defaultSeconds int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(defaultSeconds) * time.Second, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return time.Duration(val) * time.Second, nil
}
