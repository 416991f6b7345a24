package meals

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// importFile is the YAML layout accepted by ImportFile:
//
//	meals:
//	  - name: Overnight oats
//	    type: breakfast
//	    eaten_at: 2026-03-14T08:10:00Z
//	    calories: 420
//	    protein: 24
type importFile struct {
	Meals []importMeal `yaml:"meals"`
}

type importMeal struct {
	Name        string    `yaml:"name"`
	Type        MealType  `yaml:"type"`
	EatenAt     time.Time `yaml:"eaten_at"`
	ServingSize string    `yaml:"serving_size"`
	Calories    float64   `yaml:"calories"`
	Protein     float64   `yaml:"protein"`
	Carbs       float64   `yaml:"carbs"`
	Fats        float64   `yaml:"fats"`
	Fiber       float64   `yaml:"fiber"`
}

// ImportFile logs every meal in a YAML file. The whole file is validated
// before anything is stored. Returns the stored meals.
func (s *Service) ImportFile(ctx context.Context, userID, path string) ([]Meal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meal file: %w", err)
	}
	return s.Import(ctx, userID, data)
}

// Import logs the meals of a YAML document.
func (s *Service) Import(ctx context.Context, userID string, data []byte) ([]Meal, error) {
	var f importFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode meal file: %w", err)
	}

	pending := make([]Meal, len(f.Meals))
	for i, im := range f.Meals {
		m := Meal{
			UserID: userID,
			Name:   im.Name,
			Type:   im.Type,
			Source: SourceImport,
			Macros: Macros{
				Calories: im.Calories,
				Protein:  im.Protein,
				Carbs:    im.Carbs,
				Fats:     im.Fats,
				Fiber:    im.Fiber,
			},
			ServingSize: im.ServingSize,
			EatenAt:     im.EatenAt,
		}
		// Log fills a missing type from the time of day.
		check := m
		if check.Type == "" {
			check.Type = Snack
		}
		if err := check.Validate(); err != nil {
			return nil, fmt.Errorf("meal %d: %w", i+1, err)
		}
		pending[i] = m
	}

	stored := make([]Meal, 0, len(pending))
	for _, m := range pending {
		saved, err := s.Log(ctx, m)
		if err != nil {
			return stored, err
		}
		stored = append(stored, *saved)
	}
	return stored, nil
}
