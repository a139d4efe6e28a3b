package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/llm"
)

func TestKeywordClassifierWordBoundaries(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	assert.Contains(t, c.Classify(ctx, "we used react to build this"), models.DomainWeb)
	assert.NotContains(t, c.Classify(ctx, "we want to create a new tool"), models.DomainWeb)
	assert.Equal(t, models.DomainList{models.DomainGeneral}, c.Classify(ctx, "we want to create a new tool"))
	assert.NotContains(t, c.Classify(ctx, "said with detail"), models.DomainAI)
	assert.NotContains(t, c.Classify(ctx, "plain html"), models.DomainAI)
}

func TestKeywordClassifierMultiDomainOrdered(t *testing.T) {
	c := NewKeywordClassifier()

	got := c.Classify(context.Background(), "AI chatbot built with React and GPT")
	assert.Equal(t, models.DomainList{models.DomainAI, models.DomainWeb}, got)

	got = c.Classify(context.Background(), "IoT sensors streaming to a cloud dashboard on Ethereum")
	assert.Equal(t, models.DomainList{models.DomainBlockchain, models.DomainCloud, models.DomainData, models.DomainIoT}, got)
}

func TestKeywordClassifierPhrasesAndPunctuation(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	assert.Equal(t, models.DomainList{models.DomainWeb}, c.Classify(ctx, "Built on Node.js!"))
	assert.Equal(t, models.DomainList{models.DomainIoT}, c.Classify(ctx, "a Raspberry Pi weather box"))
	assert.Equal(t, models.DomainList{models.DomainAI}, c.Classify(ctx, "MACHINE LEARNING model"))
}

func TestKeywordClassifierAlwaysNonEmptyAndKnown(t *testing.T) {
	c := NewKeywordClassifier()
	inputs := []string{"", "   ", "\n\t", "???", "數據", "web3 dao", "aws lambda with sql", "just vibes"}
	for _, input := range inputs {
		got := c.Classify(context.Background(), input)
		require.NotEmpty(t, got, "input %q", input)
		for _, tag := range got {
			assert.True(t, tag.Valid(), "input %q produced %q", input, tag)
		}
		assert.Equal(t, got, c.Classify(context.Background(), input), "classification must be stable")
	}
}

type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	calls    int
	prompts  []string
	blocking bool
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.blocking {
		<-ctx.Done()
		return "", ctx.Err()
	}
	var reply string
	var err error
	if idx < len(f.replies) {
		reply = f.replies[idx]
	} else if len(f.replies) > 0 {
		reply = f.replies[len(f.replies)-1]
	}
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	return reply, err
}

type memoryCacheRepo struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string]interface{})}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]string:
		*d = append([]string(nil), value.([]string)...)
	default:
		return errors.New("unsupported cache destination")
	}
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestLLMClassifierFiltersToVocabulary(t *testing.T) {
	client := &fakeCompleter{replies: []string{"AI, Quantum, web\n"}}
	c := NewLLMClassifier(client, nil, nil, nil, LLMClassifierConfig{})

	got := c.Classify(context.Background(), "anything at all")
	assert.Equal(t, models.DomainList{models.DomainAI, models.DomainWeb}, got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Blockchain")
}

func TestLLMClassifierFallsBackOnError(t *testing.T) {
	client := &fakeCompleter{errs: []error{&llm.RateLimitError{StatusCode: 429}}}
	c := NewLLMClassifier(client, nil, nil, nil, LLMClassifierConfig{})

	got := c.Classify(context.Background(), "we used react to build this")
	assert.Equal(t, models.DomainList{models.DomainWeb}, got)
}

func TestLLMClassifierFallsBackOnHallucinatedTags(t *testing.T) {
	client := &fakeCompleter{replies: []string{"Quantum, Biotech"}}
	c := NewLLMClassifier(client, nil, nil, nil, LLMClassifierConfig{})

	got := c.Classify(context.Background(), "solidity smart contract")
	assert.Equal(t, models.DomainList{models.DomainBlockchain}, got)
}

func TestLLMClassifierFallsBackOnTimeout(t *testing.T) {
	client := &fakeCompleter{blocking: true}
	c := NewLLMClassifier(client, nil, nil, nil, LLMClassifierConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := c.Classify(context.Background(), "kubernetes operator")
	assert.Equal(t, models.DomainList{models.DomainCloud}, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLLMClassifierEmptyInputSkipsNetwork(t *testing.T) {
	client := &fakeCompleter{replies: []string{"AI"}}
	c := NewLLMClassifier(client, nil, nil, nil, LLMClassifierConfig{})

	assert.Equal(t, models.DomainList{models.DomainGeneral}, c.Classify(context.Background(), "  "))
	assert.Zero(t, client.calls)
}

func TestLLMClassifierUsesCache(t *testing.T) {
	client := &fakeCompleter{replies: []string{"Data, General"}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	c := NewLLMClassifier(client, cache, nil, nil, LLMClassifierConfig{})

	first := c.Classify(context.Background(), "Some Idea")
	second := c.Classify(context.Background(), "some idea")
	assert.Equal(t, models.DomainList{models.DomainData, models.DomainGeneral}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
}

func TestParseDomainTags(t *testing.T) {
	assert.Equal(t, models.DomainList{models.DomainCloud, models.DomainIoT}, parseDomainTags("- IoT\n- \"Cloud\"."))
	assert.Nil(t, parseDomainTags("none of these"))
	assert.Equal(t, models.DomainList{models.DomainWeb}, parseDomainTags("Web, web; WEB"))
}

func TestNewDomainClassifierSelectsStrategy(t *testing.T) {
	_, isKeyword := NewDomainClassifier(configClassifier("keyword"), configLLM(), &fakeCompleter{}, nil, nil, nil).(*meteredClassifier)
	assert.True(t, isKeyword)

	_, isLLM := NewDomainClassifier(configClassifier("llm"), configLLM(), &fakeCompleter{}, nil, nil, nil).(*LLMClassifier)
	assert.True(t, isLLM)

	_, fallback := NewDomainClassifier(configClassifier("llm"), configLLM(), nil, nil, nil, nil).(*meteredClassifier)
	assert.True(t, fallback)
}

func configClassifier(strategy string) config.ClassifierConfig {
	return config.ClassifierConfig{Strategy: strategy, CacheTTL: time.Minute}
}

func configLLM() config.LLMConfig {
	return config.LLMConfig{Timeout: time.Second}
}
