package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

// DomainClassifier maps a project description to a non-empty, canonically ordered set of domain tags.
type DomainClassifier interface {
	Classify(ctx context.Context, text string) models.DomainList
}

var domainKeywords = map[models.DomainTag][]string{
	models.DomainAI: {
		"ai", "artificial intelligence", "machine learning", "ml", "deep learning", "neural network",
		"nlp", "natural language", "computer vision", "chatbot", "gpt", "llm", "openai", "gemini",
		"tensorflow", "pytorch", "generative",
	},
	models.DomainWeb: {
		"web", "website", "web app", "frontend", "backend", "react", "next.js", "vue", "angular",
		"html", "css", "javascript", "node.js", "express", "django", "flask",
	},
	models.DomainBlockchain: {
		"blockchain", "web3", "smart contract", "ethereum", "solidity", "nft", "crypto",
		"cryptocurrency", "defi", "dao",
	},
	models.DomainCloud: {
		"cloud", "aws", "azure", "gcp", "google cloud", "serverless", "kubernetes", "docker",
		"devops", "microservices", "lambda",
	},
	models.DomainIoT: {
		"iot", "internet of things", "arduino", "raspberry pi", "sensor", "sensors", "embedded",
		"esp32", "smart home", "wearable", "drone",
	},
	models.DomainData: {
		"data", "analytics", "dashboard", "visualization", "big data", "database", "sql",
		"data science", "etl", "pandas",
	},
}

type domainPattern struct {
	tag     models.DomainTag
	pattern *regexp.Regexp
}

// keywordPatterns is ordered by models.AllDomains so matches come out canonical.
var keywordPatterns = compileKeywordPatterns(domainKeywords)

func compileKeywordPatterns(keywords map[models.DomainTag][]string) []domainPattern {
	patterns := make([]domainPattern, 0, len(keywords))
	for _, tag := range models.AllDomains {
		words, ok := keywords[tag]
		if !ok || len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, word := range words {
			quoted[i] = regexp.QuoteMeta(word)
		}
		patterns = append(patterns, domainPattern{
			tag:     tag,
			pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}
	return patterns
}

// KeywordClassifier is the deterministic whole-word keyword matcher.
type KeywordClassifier struct {
	patterns []domainPattern
}

// NewKeywordClassifier returns a classifier over the built-in keyword lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{patterns: keywordPatterns}
}

// Classify never fails. Text matching no keyword yields General.
func (k *KeywordClassifier) Classify(_ context.Context, text string) models.DomainList {
	return k.match(text)
}

func (k *KeywordClassifier) match(text string) models.DomainList {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return models.DomainList{models.DomainGeneral}
	}
	var matched []models.DomainTag
	for _, p := range k.patterns {
		if p.pattern.MatchString(normalized) {
			matched = append(matched, p.tag)
		}
	}
	if len(matched) == 0 {
		return models.DomainList{models.DomainGeneral}
	}
	return models.NewDomainList(matched...)
}
