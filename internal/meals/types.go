package meals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrInvalidMeal is returned when a meal fails validation.
	ErrInvalidMeal = errors.New("invalid meal")

	// ErrNoProvider is returned by AI features when no LLM is configured.
	ErrNoProvider = errors.New("no LLM provider configured")
)

// MealType is the slot a meal was eaten in.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists every meal type in day order.
func MealTypes() []MealType {
	return []MealType{Breakfast, Lunch, Dinner, Snack}
}

// Valid reports whether t is a known meal type.
func (t MealType) Valid() bool {
	switch t {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Source records how a meal entered the log.
type Source string

const (
	SourceManual Source = "manual"
	SourceParsed Source = "parsed"
	SourceLabel  Source = "label"
	SourceImport Source = "import"
)

// Macros is a nutrition total in kcal and grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fats:     m.Fats + o.Fats,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Validate rejects negative, NaN and infinite values.
func (m Macros) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", m.Calories},
		{"protein", m.Protein},
		{"carbs", m.Carbs},
		{"fats", m.Fats},
		{"fiber", m.Fiber},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidMeal, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidMeal, f.name)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Scale multiplies every value by f.
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fats:     m.Fats * f,
		Fiber:    m.Fiber * f,
	}
}

// Meal is one logged meal. Day is the local day key derived from EatenAt.
type Meal struct {
	ID          string
	UserID      string
	Name        string
	Type        MealType
	Source      Source
	Macros
	ServingSize string
	EatenAt     time.Time
	Day         string
	CreatedAt   time.Time
}

// Validate checks a meal before it is stored.
func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMeal)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: unknown meal type %q", ErrInvalidMeal, m.Type)
	}
	if err := m.Macros.Validate(); err != nil {
		return fmt.Errorf("%s: %w", m.Name, err)
	}
	return nil
}

// Totals sums the macros of meals.
func Totals(meals []Meal) Macros {
	var t Macros
	for _, m := range meals {
		t = t.Add(m.Macros)
	}
	return t
}

// TypeForHour guesses the meal slot from the local hour.
func TypeForHour(hour int) MealType {
	switch {
	case hour < 11:
		return Breakfast
	case hour < 15:
		return Lunch
	case hour < 21:
		return Dinner
	default:
		return Snack
	}
}
