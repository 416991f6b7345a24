package meals

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/farefit/internal/llm"
)

const parseSystemPrompt = `You are a nutrition assistant for a food logging app.
Split the user's meal description into individual food items and estimate
calories and macronutrients for the portion described. Use typical
restaurant or home-cooked values when the portion is vague. Never return
negative numbers.`

const labelSystemPrompt = `You read nutrition facts labels from photos.
Report the values for ONE serving exactly as printed. When a value is not
printed, use 0. Convert kJ to kcal when only kJ is shown.`

type parsedItem struct {
	Name        string   `json:"name"`
	MealType    MealType `json:"meal_type"`
	ServingSize string   `json:"serving_size"`
	Macros
}

type parseOutput struct {
	Items []parsedItem `json:"items"`
}

type labelOutput struct {
	ProductName string `json:"product_name"`
	ServingSize string `json:"serving_size"`
	Macros
}

// Parse turns a free-text description into meal drafts. Drafts are not
// stored; pass them to Log once the user confirms.
func (s *Service) Parse(ctx context.Context, userID, description string) ([]Meal, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: empty description", ErrInvalidMeal)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeMealParse)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: parseSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: description},
		},
		Schema:    MealParseSchema,
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("parse meal: %w", err)
	}

	var out parseOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse meal: %w", err)
	}

	now := s.now()
	drafts := make([]Meal, 0, len(out.Items))
	for _, it := range out.Items {
		m := Meal{
			UserID:      userID,
			Name:        strings.TrimSpace(it.Name),
			Type:        it.MealType,
			Source:      SourceParsed,
			Macros:      it.Macros,
			ServingSize: it.ServingSize,
			EatenAt:     now,
		}
		if !m.Type.Valid() {
			m.Type = TypeForHour(now.In(s.loc).Hour())
		}
		drafts = append(drafts, m)
	}
	return drafts, nil
}

// ScanLabel reads a nutrition label photo and returns one meal draft for
// the given number of servings. servings <= 0 means one serving.
func (s *Service) ScanLabel(ctx context.Context, userID string, image []byte, mimeType string, servings float64) (*Meal, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidMeal)
	}
	if !finite(servings) {
		return nil, fmt.Errorf("%w: servings must be a finite number", ErrInvalidMeal)
	}
	if servings <= 0 {
		servings = 1
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeNutritionLabel)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: labelSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Read the nutrition facts on this label.",
			Images:  []llm.Image{{MIMEType: mimeType, Data: image}},
		}},
		Schema:    NutritionLabelSchema,
		MaxTokens: 512,
	})
	if err != nil {
		return nil, fmt.Errorf("scan label: %w", err)
	}

	var out labelOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("scan label: %w", err)
	}

	macros := out.Macros.Scale(servings)
	if err := macros.Validate(); err != nil {
		return nil, fmt.Errorf("scan label: %w", err)
	}

	now := s.now()
	serving := out.ServingSize
	if servings != 1 {
		serving = fmt.Sprintf("%g x %s", servings, out.ServingSize)
	}
	return &Meal{
		UserID:      userID,
		Name:        strings.TrimSpace(out.ProductName),
		Type:        TypeForHour(now.In(s.loc).Hour()),
		Source:      SourceLabel,
		Macros:      macros,
		ServingSize: serving,
		EatenAt:     now,
	}, nil
}
