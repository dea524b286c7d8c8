// Package scheduling содержит чистые алгоритмы расписания: оценку
// длительности работ, проверку окна, обход календаря и ранжирование
// мастерских по доступности. Пакет не обращается к хранилищу.
package scheduling

import (
	"fmt"
	"math"
	"os"

	"github.com/senyabanana/repair-quotes/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	MinDurationHours = 0.5
	MaxDurationHours = 12.0

	// unknownCategoryHours используется для категорий вне таблицы.
	unknownCategoryHours = 1.0
)

// DefaultWeights - базовая длительность категорий работ в часах.
var DefaultWeights = map[models.ServiceCategory]float64{
	models.Inspection:   0.5,
	models.Diagnostic:   1,
	models.OilChange:    0.5,
	models.Tires:        1,
	models.Brakes:       2,
	models.Electrical:   2,
	models.AirCon:       1.5,
	models.Suspension:   3,
	models.Transmission: 5,
	models.Bodywork:     6,
	models.Paint:        5,
	models.Engine:       6,
}

// Estimator оценивает длительность ремонта по набору категорий.
type Estimator struct {
	weights map[models.ServiceCategory]float64
}

// NewEstimator создает оценщик; пустая таблица заменяется DefaultWeights.
func NewEstimator(weights map[models.ServiceCategory]float64) *Estimator {
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	return &Estimator{weights: weights}
}

// LoadWeights читает YAML-таблицу вида "engine: 6" и дополняет ею DefaultWeights.
func LoadWeights(path string) (map[models.ServiceCategory]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read duration table: %w", err)
	}

	var table map[string]float64
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse duration table: %w", err)
	}

	weights := make(map[models.ServiceCategory]float64, len(DefaultWeights)+len(table))
	for category, hours := range DefaultWeights {
		weights[category] = hours
	}
	for category, hours := range table {
		if hours < 0 {
			return nil, fmt.Errorf("negative duration for category %q", category)
		}
		weights[models.ServiceCategory(category)] = hours
	}
	return weights, nil
}

// EstimateDuration суммирует базовую длительность категорий и ограничивает
// результат диапазоном [MinDurationHours, MaxDurationHours].
func (e *Estimator) EstimateDuration(categories []models.ServiceCategory) float64 {
	seen := make(map[models.ServiceCategory]bool, len(categories))
	var total float64
	for _, category := range categories {
		if seen[category] {
			continue
		}
		seen[category] = true

		hours, ok := e.weights[category]
		if !ok {
			hours = unknownCategoryHours
		}
		total += hours
	}
	return Clamp(total)
}

// Clamp ограничивает длительность допустимым диапазоном.
func Clamp(hours float64) float64 {
	return math.Min(MaxDurationHours, math.Max(MinDurationHours, hours))
}

// ValidDuration проверяет, что длительность лежит в допустимом диапазоне.
func ValidDuration(hours float64) bool {
	return hours >= MinDurationHours && hours <= MaxDurationHours
}
