package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Classification strategies understood by ClassifierConfig.Strategy.
const (
	ClassifierKeyword = "keyword"
	ClassifierLLM     = "llm"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	LLM        LLMConfig
	Classifier ClassifierConfig
	Scheduler  SchedulerConfig
	Evaluation EvaluationConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to verify tokens minted by the identity provider.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ClassifierConfig selects the domain classification strategy.
type ClassifierConfig struct {
	Strategy string
	CacheTTL time.Duration
}

// SchedulerConfig governs mentor distribution runs.
type SchedulerConfig struct {
	Enabled             bool
	SkipAssignedDomains bool
	SummaryTTL          time.Duration
}

// ScoringWeights are percentages applied to the four judging categories.
type ScoringWeights struct {
	Innovation   float64 `json:"innovation" validate:"min=0,max=100"`
	Technical    float64 `json:"technical" validate:"min=0,max=100"`
	Impact       float64 `json:"impact" validate:"min=0,max=100"`
	Presentation float64 `json:"presentation" validate:"min=0,max=100"`
}

var weightValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	return v
}()

// Validate checks every weight is a percentage. Weights need not sum to 100.
// Fields are checked in declaration order and the first violation is reported.
func (w ScoringWeights) Validate() error {
	err := weightValidator.Struct(w)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("weight %s must be between 0 and 100, got %v", fieldErrs[0].Field(), fieldErrs[0].Value())
	}
	return err
}

// EvaluationConfig tunes the AI judging orchestrator.
type EvaluationConfig struct {
	Enabled        bool
	RetryBackoff   []time.Duration
	DefaultWeights ScoringWeights
	JobTTL         time.Duration
	Workers        int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.LLM = LLMConfig{
		BaseURL: v.GetString("LLM_BASE_URL"),
		APIKey:  v.GetString("LLM_API_KEY"),
		Model:   v.GetString("LLM_MODEL"),
		Timeout: parseDuration(v.GetString("LLM_TIMEOUT"), 20*time.Second),
	}

	cfg.Classifier = ClassifierConfig{
		Strategy: strings.ToLower(v.GetString("CLASSIFIER_STRATEGY")),
		CacheTTL: parseDuration(v.GetString("CLASSIFIER_CACHE_TTL"), 24*time.Hour),
	}
	if cfg.Classifier.Strategy != ClassifierLLM {
		cfg.Classifier.Strategy = ClassifierKeyword
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:             v.GetBool("ENABLE_SCHEDULER"),
		SkipAssignedDomains: v.GetBool("SCHEDULER_SKIP_ASSIGNED_DOMAINS"),
		SummaryTTL:          parseDuration(v.GetString("SCHEDULER_SUMMARY_TTL"), 24*time.Hour),
	}

	weights, err := parseWeights(v.GetString("EVALUATION_DEFAULT_WEIGHTS"))
	if err != nil {
		return nil, err
	}
	cfg.Evaluation = EvaluationConfig{
		Enabled:        v.GetBool("ENABLE_EVALUATION"),
		RetryBackoff:   parseDurationList(v.GetString("EVALUATION_RETRY_BACKOFF")),
		DefaultWeights: weights,
		JobTTL:         parseDuration(v.GetString("EVALUATION_JOB_TTL"), time.Hour),
		Workers:        v.GetInt("EVALUATION_WORKERS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hackathon_mentor")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TIMEOUT", "20s")

	v.SetDefault("CLASSIFIER_STRATEGY", ClassifierKeyword)
	v.SetDefault("CLASSIFIER_CACHE_TTL", "24h")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_SKIP_ASSIGNED_DOMAINS", false)
	v.SetDefault("SCHEDULER_SUMMARY_TTL", "24h")

	v.SetDefault("ENABLE_EVALUATION", false)
	v.SetDefault("EVALUATION_RETRY_BACKOFF", "3s,8s,15s")
	v.SetDefault("EVALUATION_DEFAULT_WEIGHTS", "innovation=25,technical=25,impact=25,presentation=25")
	v.SetDefault("EVALUATION_JOB_TTL", "1h")
	v.SetDefault("EVALUATION_WORKERS", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseDurationList(raw string) []time.Duration {
	var result []time.Duration
	for _, part := range splitAndTrim(raw) {
		d, err := time.ParseDuration(part)
		if err != nil || d < 0 {
			continue
		}
		result = append(result, d)
	}
	return result
}

// parseWeights reads "innovation=25,technical=25,..." into ScoringWeights.
func parseWeights(raw string) (ScoringWeights, error) {
	var weights ScoringWeights
	for _, part := range splitAndTrim(raw) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return weights, fmt.Errorf("invalid weight entry %q", part)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return weights, fmt.Errorf("invalid weight value %q: %w", part, err)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "innovation":
			weights.Innovation = parsed
		case "technical":
			weights.Technical = parsed
		case "impact":
			weights.Impact = parsed
		case "presentation":
			weights.Presentation = parsed
		default:
			return weights, fmt.Errorf("unknown weight category %q", key)
		}
	}
	if err := weights.Validate(); err != nil {
		return weights, err
	}
	return weights, nil
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
