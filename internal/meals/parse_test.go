package meals

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/llm"
)

func TestParse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"items":[
			{"name":"Scrambled eggs","meal_type":"breakfast","serving_size":"2 eggs","calories":180,"protein":12,"carbs":2,"fats":13,"fiber":0},
			{"name":"Toast","meal_type":"elevenses","serving_size":"1 slice","calories":80,"protein":3,"carbs":14,"fats":1,"fiber":2}
		]}`),
	})
	svc := newTestService(t, mock)

	drafts, err := svc.Parse(t.Context(), "ana", "two scrambled eggs and a slice of toast")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, Breakfast, drafts[0].Type)
	assert.Equal(t, SourceParsed, drafts[0].Source)
	assert.Equal(t, 12.0, drafts[0].Protein)
	assert.Equal(t, Lunch, drafts[1].Type, "unknown types fall back to the time of day")
	assert.Empty(t, drafts[0].ID, "drafts are not stored")

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, MealParseSchema, mock.Calls[0].Schema)
}

func TestParseErrors(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Parse(t.Context(), "ana", "salad")
	assert.ErrorIs(t, err, ErrNoProvider)

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	svc = newTestService(t, mock)
	_, err = svc.Parse(t.Context(), "ana", "   ")
	assert.ErrorIs(t, err, ErrInvalidMeal)

	_, err = svc.Parse(t.Context(), "ana", "salad")
	var unavailable *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestScanLabel(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"product_name":"Granola bar","serving_size":"40 g","calories":190,"protein":4,"carbs":28,"fats":7,"fiber":3}`),
	})
	svc := newTestService(t, mock)
	image := []byte{0xff, 0xd8, 0xff}

	m, err := svc.ScanLabel(t.Context(), "ana", image, "image/jpeg", 2)
	require.NoError(t, err)
	assert.Equal(t, "Granola bar", m.Name)
	assert.Equal(t, SourceLabel, m.Source)
	assert.Equal(t, 380.0, m.Calories)
	assert.Equal(t, 8.0, m.Protein)
	assert.Equal(t, "2 x 40 g", m.ServingSize)

	req := mock.Calls[0]
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Images, 1)
	assert.Equal(t, "image/jpeg", req.Messages[0].Images[0].MIMEType)
	assert.Equal(t, NutritionLabelSchema, req.Schema)
	assert.Equal(t, []string{llm.PurposeNutritionLabel}, mock.Purposes)
}

func TestScanLabelEmptyImage(t *testing.T) {
	svc := newTestService(t, llm.NewMockProvider())
	_, err := svc.ScanLabel(t.Context(), "ana", nil, "image/png", 1)
	assert.ErrorIs(t, err, ErrInvalidMeal)
}

func TestScanLabelRejectsNonFiniteServings(t *testing.T) {
	mock := llm.NewMockProvider()
	svc := newTestService(t, mock)
	for _, servings := range []float64{math.Inf(1), math.NaN()} {
		_, err := svc.ScanLabel(t.Context(), "ana", []byte{0xff, 0xd8, 0xff}, "image/jpeg", servings)
		assert.ErrorIs(t, err, ErrInvalidMeal)
	}
	assert.Empty(t, mock.Calls)
}
