package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	LogLevel             string
	AccessLog            bool
	CORSAllowOrigins     []string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	EventSubjectPrefix   string
	JWTSecret            string
	ResultsCacheTTL      time.Duration
	EvaluatorTokenTTL    time.Duration
	FeedbackMinGroupSize int
	FeedbackRateLimit    int
	FeedbackRateWindow   time.Duration
	// SubmissionRateLimit caps answer writes (autosave, submit, invites) per user and window.
	SubmissionRateLimit  int
	SubmissionRateWindow time.Duration
	// PlanRequirements maps an assessment type to the lowest plan that unlocks it.
	PlanRequirements map[string]string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from LEADERSHIP_* environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEADERSHIP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Leadership Assessment API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("access_log", false)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("events.subject_prefix", "leadership")
	v.SetDefault("results.cache_ttl", "5m")
	v.SetDefault("evaluator.token_ttl", "720h")
	v.SetDefault("feedback.min_group_size", 3)
	v.SetDefault("feedback.rate_limit", 30)
	v.SetDefault("feedback.rate_window", "1m")
	v.SetDefault("submission.rate_limit", 120)
	v.SetDefault("submission.rate_window", "1m")
	v.SetDefault("plan.requirements", "self_360=pro")

	cacheTTL, err := parseDuration(v, "results.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := parseDuration(v, "evaluator.token_ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "feedback.rate_window")
	if err != nil {
		return Config{}, err
	}
	submissionWindow, err := parseDuration(v, "submission.rate_window")
	if err != nil {
		return Config{}, err
	}
	requirements, err := ParsePlanRequirements(v.GetString("plan.requirements"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
		AccessLog:            v.GetBool("access_log"),
		CORSAllowOrigins:     splitList(v.GetString("cors.allow_origins")),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		EventSubjectPrefix:   v.GetString("events.subject_prefix"),
		JWTSecret:            v.GetString("jwt.secret"),
		ResultsCacheTTL:      cacheTTL,
		EvaluatorTokenTTL:    tokenTTL,
		FeedbackMinGroupSize: v.GetInt("feedback.min_group_size"),
		FeedbackRateLimit:    v.GetInt("feedback.rate_limit"),
		FeedbackRateWindow:   rateWindow,
		SubmissionRateLimit:  v.GetInt("submission.rate_limit"),
		SubmissionRateWindow: submissionWindow,
		PlanRequirements:     requirements,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.EvaluatorTokenTTL < 0 {
		return Config{}, fmt.Errorf("evaluator token ttl must not be negative")
	}
	if cfg.FeedbackMinGroupSize <= 0 {
		cfg.FeedbackMinGroupSize = 3
	}
	if cfg.FeedbackRateLimit <= 0 {
		cfg.FeedbackRateLimit = 30
	}
	if cfg.SubmissionRateLimit <= 0 {
		cfg.SubmissionRateLimit = 120
	}

	return cfg, nil
}

// ParsePlanRequirements reads "type=plan" pairs separated by commas. Validation of the type
// and plan names is left to the plan gate.
func ParsePlanRequirements(raw string) (map[string]string, error) {
	requirements := make(map[string]string)
	for _, entry := range splitList(raw) {
		key, value, ok := strings.Cut(entry, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid plan requirement %q", entry)
		}
		requirements[key] = value
	}
	return requirements, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" || raw == "0" {
		return 0, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
