package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 18, ContentHeight(24))
	assert.Equal(t, 0, ContentHeight(4))
}

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(79, 30))
	assert.True(t, IsTooSmall(120, 23))
	assert.False(t, IsTooSmall(80, 24))
}

func TestRenderHeaderShowsScoreBadge(t *testing.T) {
	out := RenderHeader("Dashboard", Status{User: "ana", Score: 612, Tier: "Consistent Tracker", Color: "#2980B9"}, 100)
	assert.Contains(t, out, "FareFit")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "612 Consistent Tracker")
}

func TestRenderHeaderHidesEmptyBadge(t *testing.T) {
	out := RenderHeader("Coach", Status{User: "ana"}, 100)
	assert.True(t, strings.Contains(out, "ana"))
	assert.NotContains(t, out, "Tracker")
}
