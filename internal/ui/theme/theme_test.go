package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaSign(t *testing.T) {
	assert.True(t, strings.Contains(Delta(5), "+5"))
	assert.True(t, strings.Contains(Delta(-10), "-10"))
	assert.True(t, strings.Contains(Delta(0), "0"))
	assert.False(t, strings.Contains(Delta(0), "+"))
}

func TestHexFallback(t *testing.T) {
	assert.Equal(t, Accent, Hex(""))
	assert.NotEqual(t, Accent, Hex("#9B59B6"))
}
