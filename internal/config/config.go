package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"invoice-agent/internal/core"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port           string
	Env            string
	Debug          bool
	DatabaseURL    string
	AllowedOrigins string
	PublicBaseURL  string
	OpenAI         OpenAIConfig
	AgentTimeout   time.Duration
	DraftStore     string // memory | postgres
	DraftTTL       time.Duration
	ReferenceStore string // memory | postgres
	Artifact       ArtifactConfig
	Seller         core.Seller
	Tax            core.TaxPolicy
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type ArtifactConfig struct {
	Backend   string // fs | s3
	Root      string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")
	port := firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), strings.TrimSpace(os.Getenv("SERVER_PORT")), "8080")

	agentTimeout, err := durationEnv("AGENT_TIMEOUT", 90*time.Second)
	if err != nil {
		return nil, err
	}
	draftTTL, err := durationEnv("DRAFT_TTL", core.DefaultDraftTTL)
	if err != nil {
		return nil, err
	}
	tax, err := loadTaxPolicy()
	if err != nil {
		return nil, err
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	defaultStore := "memory"
	if databaseURL != "" {
		defaultStore = "postgres"
	}

	cfg := &Config{
		Port:           NormalizePort(port),
		Env:            env,
		Debug:          boolEnv("APP_DEBUG", false),
		DatabaseURL:    databaseURL,
		AllowedOrigins: strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		PublicBaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:   firstNonEmpty(strings.TrimSpace(os.Getenv("OPENAI_MODEL")), "gpt-4o"),
			BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		},
		AgentTimeout:   agentTimeout,
		DraftStore:     strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("DRAFT_STORE")), defaultStore)),
		DraftTTL:       draftTTL,
		ReferenceStore: strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("REFERENCE_STORE")), defaultStore)),
		Artifact:       loadArtifactConfig(),
		Seller: core.Seller{
			CompanyName: firstNonEmpty(strings.TrimSpace(os.Getenv("SELLER_COMPANY_NAME")), core.DefaultSeller.CompanyName),
			GSTNumber:   firstNonEmpty(strings.TrimSpace(os.Getenv("SELLER_GST_NUMBER")), core.DefaultSeller.GSTNumber),
			State:       firstNonEmpty(strings.TrimSpace(os.Getenv("SELLER_STATE")), core.DefaultSeller.State),
			StateCode:   firstNonEmpty(strings.TrimSpace(os.Getenv("SELLER_STATE_CODE")), core.DefaultSeller.StateCode),
		},
		Tax: tax,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, v := range map[string]string{"DRAFT_STORE": c.DraftStore, "REFERENCE_STORE": c.ReferenceStore} {
		if v != "memory" && v != "postgres" {
			return fmt.Errorf("%s must be memory or postgres, got %q", name, v)
		}
		if v == "postgres" && c.DatabaseURL == "" {
			return fmt.Errorf("%s=postgres requires DATABASE_URL", name)
		}
	}
	if c.Artifact.Backend != "fs" && c.Artifact.Backend != "s3" {
		return fmt.Errorf("ARTIFACT_STORE must be fs or s3, got %q", c.Artifact.Backend)
	}
	return nil
}

// IsLocal reports whether the app runs in a developer environment.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Env, "local") || strings.EqualFold(c.Env, "development")
}

func loadArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		Backend:   strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_STORE")), "fs")),
		Root:      firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_ROOT")), "storage"),
		Endpoint:  strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "invoice-artifacts"),
		UseSSL:    boolEnv("ARTIFACT_S3_USE_SSL", true),
	}
}

// loadTaxPolicy reads GST_RATE as a percentage (18 means 18%).
func loadTaxPolicy() (core.TaxPolicy, error) {
	policy := core.DefaultTaxPolicy()
	if raw := strings.TrimSpace(os.Getenv("GST_RATE")); raw != "" {
		pct, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
		if err != nil || !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return core.TaxPolicy{}, fmt.Errorf("GST_RATE must be a percentage above 0 and at most 100, got %q", raw)
		}
		policy.Rate = pct.Shift(-2)
	}
	policy.SplitInterState = boolEnv("GST_SPLIT_INTERSTATE", false)
	return policy, nil
}

// NormalizePort turns "8080" or ":8080" into ":8080".
func NormalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration (e.g. 90s, 24h), got %q", key, raw)
	}
	return d, nil
}

func boolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
