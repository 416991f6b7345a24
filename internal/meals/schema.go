package meals

import "github.com/abhisek/farefit/internal/llm"

var nutritionProperties = map[string]any{
	"calories": map[string]any{"type": "number", "minimum": 0, "description": "Energy in kcal"},
	"protein":  map[string]any{"type": "number", "minimum": 0, "description": "Protein in grams"},
	"carbs":    map[string]any{"type": "number", "minimum": 0, "description": "Carbohydrates in grams"},
	"fats":     map[string]any{"type": "number", "minimum": 0, "description": "Fat in grams"},
	"fiber":    map[string]any{"type": "number", "minimum": 0, "description": "Fiber in grams"},
}

func withNutrition(props map[string]any) map[string]any {
	for k, v := range nutritionProperties {
		props[k] = v
	}
	return props
}

// MealParseSchema defines the structured output for free-text meal parsing.
var MealParseSchema = &llm.Schema{
	Name:        "meal-parse",
	Description: "Food items extracted from a natural-language meal description with estimated nutrition",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": withNutrition(map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Short food name, e.g. \"Greek yogurt with honey\"",
						},
						"meal_type": map[string]any{
							"type": "string",
							"enum": []any{"breakfast", "lunch", "dinner", "snack"},
						},
						"serving_size": map[string]any{
							"type":        "string",
							"description": "Portion as described or estimated, e.g. \"1 cup\"",
						},
					}),
					"required": []any{"name", "meal_type", "serving_size", "calories", "protein", "carbs", "fats", "fiber"},
				},
			},
		},
		"required": []any{"items"},
	},
}

// NutritionLabelSchema defines the structured output for nutrition label OCR.
var NutritionLabelSchema = &llm.Schema{
	Name:        "nutrition-label",
	Description: "Per-serving values read from a packaged food nutrition facts label",
	Definition: map[string]any{
		"type": "object",
		"properties": withNutrition(map[string]any{
			"product_name": map[string]any{
				"type":        "string",
				"description": "Product name if visible, otherwise a generic description",
			},
			"serving_size": map[string]any{
				"type":        "string",
				"description": "Serving size as printed on the label",
			},
		}),
		"required": []any{"product_name", "serving_size", "calories", "protein", "carbs", "fats", "fiber"},
	},
}
