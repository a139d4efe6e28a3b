package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeights(t *testing.T) {
	weights, err := parseWeights("innovation=30, technical=30,impact=20,presentation=20")
	require.NoError(t, err)
	assert.Equal(t, ScoringWeights{Innovation: 30, Technical: 30, Impact: 20, Presentation: 20}, weights)

	_, err = parseWeights("innovation=130")
	assert.Error(t, err)

	_, err = parseWeights("creativity=10")
	assert.Error(t, err)

	_, err = parseWeights("innovation")
	assert.Error(t, err)
}

func TestScoringWeightsDoNotRequireFullSum(t *testing.T) {
	weights := ScoringWeights{Innovation: 10, Technical: 10}
	assert.NoError(t, weights.Validate())

	weights.Impact = -1
	assert.Error(t, weights.Validate())
}

func TestScoringWeightsReportFirstInvalidField(t *testing.T) {
	weights := ScoringWeights{Innovation: 150, Technical: -5, Impact: 200, Presentation: 10}
	for i := 0; i < 5; i++ {
		err := weights.Validate()
		require.Error(t, err)
		assert.Equal(t, "weight innovation must be between 0 and 100, got 150", err.Error())
	}

	weights = ScoringWeights{Innovation: 10, Technical: 10, Impact: 10, Presentation: 101}
	assert.EqualError(t, weights.Validate(), "weight presentation must be between 0 and 100, got 101")
}

func TestParseDurationList(t *testing.T) {
	assert.Equal(t, []time.Duration{3 * time.Second, 8 * time.Second, 15 * time.Second}, parseDurationList("3s, 8s,15s"))
	assert.Equal(t, []time.Duration{time.Second}, parseDurationList("bogus,1s"))
	assert.Nil(t, parseDurationList(""))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLASSIFIER_STRATEGY", "Something-Else")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ClassifierKeyword, cfg.Classifier.Strategy)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Len(t, cfg.Evaluation.RetryBackoff, 3)
	assert.Equal(t, 25.0, cfg.Evaluation.DefaultWeights.Impact)
	assert.True(t, cfg.Scheduler.Enabled)
}
