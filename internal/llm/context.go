package llm

import "context"

// Purpose labels each request in llm_request_events so usage can be split
// by feature.
const (
	PurposeMealParse      = "meal-parse"
	PurposeNutritionLabel = "nutrition-label"
	PurposeCoach          = "coach"

	// PurposeUnknown is recorded for requests made without a label.
	PurposeUnknown = "unknown"
)

// Purposes lists the labels FareFit features attach to requests.
func Purposes() []string {
	return []string{PurposeMealParse, PurposeNutritionLabel, PurposeCoach}
}

// KnownPurpose reports whether p is one of Purposes.
func KnownPurpose(p string) bool {
	for _, known := range Purposes() {
		if p == known {
			return true
		}
	}
	return false
}

type purposeKey struct{}

// WithPurpose returns a copy of ctx whose requests are logged under purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
