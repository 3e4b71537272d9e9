package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost_KnownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	// 3.00 input + 15.00 output
	assert.InDelta(t, 18.00, u.EstimateCost("claude-sonnet-4-20250514"), 0.001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000}
	assert.Equal(t, 0.0, u.EstimateCost("some-other-model"))
}

func TestEstimateCost_CacheTokens(t *testing.T) {
	u := TokenUsage{CacheCreationInputTokens: 1_000_000, CacheReadInputTokens: 1_000_000}
	// 3.00*1.25 write + 3.00*0.1 read
	assert.InDelta(t, 4.05, u.EstimateCost("claude-sonnet-4-20250514"), 0.001)
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("system text")
	assert.Len(t, blocks, 1)
	assert.Equal(t, "system text", blocks[0].Text)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}
