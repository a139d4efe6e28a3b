package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
)

// textCompleter is the narrow view of the LLM client used for classification and judging.
type textCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMClassifierConfig tunes the network classifier.
type LLMClassifierConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// LLMClassifier asks an external model for domain tags and falls back to keyword matching on any failure.
type LLMClassifier struct {
	client   textCompleter
	fallback *KeywordClassifier
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      LLMClassifierConfig
}

// NewLLMClassifier constructs the network classifier. cache and metrics may be nil.
func NewLLMClassifier(client textCompleter, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg LLMClassifierConfig) *LLMClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &LLMClassifier{
		client:   client,
		fallback: NewKeywordClassifier(),
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Classify returns the model's tags filtered to the known vocabulary.
func (c *LLMClassifier) Classify(ctx context.Context, text string) models.DomainList {
	log := logger.FromContext(ctx, c.logger)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || c.client == nil {
		return c.useFallback(ctx, text, "empty input or no client", nil)
	}

	key := classificationCacheKey(textDigest(trimmed))
	var cached []string
	if hit, _ := c.cache.Get(ctx, key, &cached); hit {
		if tags, err := models.ParseDomainList(cached); err == nil && len(tags) > 0 {
			c.metrics.RecordClassification(config.ClassifierLLM, "cached")
			return tags
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	raw, err := c.client.Complete(callCtx, buildClassificationPrompt(trimmed))
	if err != nil {
		return c.useFallback(ctx, text, "classifier call failed", err)
	}

	tags := parseDomainTags(raw)
	if len(tags) == 0 {
		return c.useFallback(ctx, text, "no known domains in classifier output", nil)
	}

	if err := c.cache.Set(ctx, key, tags.Strings(), c.cfg.CacheTTL); err != nil {
		log.Debug("classification cache write skipped", zap.Error(err))
	}
	c.metrics.RecordClassification(config.ClassifierLLM, "matched")
	return tags
}

func (c *LLMClassifier) useFallback(ctx context.Context, text, reason string, err error) models.DomainList {
	fields := []zap.Field{zap.String("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.FromContext(ctx, c.logger).Warn("llm classification fell back to keywords", fields...)
	c.metrics.RecordClassification(config.ClassifierLLM, "fallback")
	return c.fallback.match(text)
}

func buildClassificationPrompt(text string) string {
	vocabulary := make([]string, len(models.AllDomains))
	for i, tag := range models.AllDomains {
		vocabulary[i] = string(tag)
	}
	return fmt.Sprintf(`Classify the hackathon project below into technology domains.
Allowed domains: %s.
Rules: choose every domain that clearly applies; use General only when none of the others apply.
Respond with a comma-separated list of domain names and nothing else.

Project:
%s`, strings.Join(vocabulary, ", "), text)
}

// parseDomainTags reads a comma or newline separated list, keeping only known tags.
func parseDomainTags(raw string) models.DomainList {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';' || r == '|'
	})
	tags := make([]models.DomainTag, 0, len(fields))
	for _, field := range fields {
		cleaned := strings.Trim(strings.TrimSpace(field), "\"'`*-•.[]() ")
		if tag, ok := models.ParseDomainTag(cleaned); ok {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return models.NewDomainList(tags...)
}

func textDigest(text string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(text)))
	return hex.EncodeToString(sum[:])
}

// NewDomainClassifier picks the configured strategy. The LLM strategy needs a configured client.
func NewDomainClassifier(cfg config.ClassifierConfig, llmCfg config.LLMConfig, client textCompleter, cache *CacheService, metrics *MetricsService, log *zap.Logger) DomainClassifier {
	if cfg.Strategy == config.ClassifierLLM && client != nil {
		return NewLLMClassifier(client, cache, metrics, log, LLMClassifierConfig{Timeout: llmCfg.Timeout, CacheTTL: cfg.CacheTTL})
	}
	return &meteredClassifier{inner: NewKeywordClassifier(), metrics: metrics}
}

type meteredClassifier struct {
	inner   *KeywordClassifier
	metrics *MetricsService
}

func (m *meteredClassifier) Classify(ctx context.Context, text string) models.DomainList {
	tags := m.inner.Classify(ctx, text)
	outcome := "matched"
	if len(tags) == 1 && tags[0] == models.DomainGeneral {
		outcome = "general"
	}
	m.metrics.RecordClassification(config.ClassifierKeyword, outcome)
	return tags
}
