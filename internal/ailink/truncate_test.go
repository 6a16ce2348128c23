package ailink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateDiff(t *testing.T) {
	out, truncated := TruncateDiff("short", 10)
	assert.False(t, truncated)
	assert.Equal(t, "short", out)

	out, truncated = TruncateDiff("exactly10!", 10)
	assert.False(t, truncated)
	assert.Equal(t, "exactly10!", out)

	out, truncated = TruncateDiff(strings.Repeat("a", 60), 50)
	assert.True(t, truncated)
	assert.Equal(t, strings.Repeat("a", 50)+TruncationSuffix, out)
}

func TestTruncateDiffCountsCharacters(t *testing.T) {
	out, truncated := TruncateDiff("héllo wörld", 5)
	assert.True(t, truncated)
	assert.Equal(t, "héllo"+TruncationSuffix, out)
}

func TestTruncateDiffDisabled(t *testing.T) {
	out, truncated := TruncateDiff("anything", 0)
	assert.False(t, truncated)
	assert.Equal(t, "anything", out)
}
