package scheduling

import (
	"math"
	"sort"

	"github.com/senyabanana/repair-quotes/internal/models"
)

const (
	slotsWeight = 60.0
	waitWeight  = 40.0
)

// Score проставляет AvailabilityScore и AvailabilityLevel. Количество окон
// и ожидание нормируются на максимумы по набору (не меньше 1); мастерская
// без свободных окон получает ожидание, равное максимальному.
func Score(results []models.WorkshopAvailability) {
	maxSlots, maxWait := 1.0, 1.0
	for _, r := range results {
		maxSlots = math.Max(maxSlots, float64(r.AvailableSlotsCount))
		if r.AverageWaitTime != nil {
			maxWait = math.Max(maxWait, *r.AverageWaitTime)
		}
	}

	for i := range results {
		wait := maxWait
		if results[i].AverageWaitTime != nil {
			wait = *results[i].AverageWaitTime
		}
		raw := slotsWeight*float64(results[i].AvailableSlotsCount)/maxSlots + waitWeight*(maxWait-wait)/maxWait
		score := int(math.Round(raw))
		score = max(0, min(100, score))

		results[i].AvailabilityScore = score
		results[i].AvailabilityLevel = LevelFor(score)
	}
}

// LevelFor переводит оценку в словесный уровень.
func LevelFor(score int) models.AvailabilityLevel {
	switch {
	case score >= 80:
		return models.ExcellentAvailability
	case score >= 60:
		return models.GoodAvailability
	case score >= 40:
		return models.LimitedAvailability
	default:
		return models.PoorAvailability
	}
}

// Rank сортирует по возрастанию ожидания (без окон - в конец), при равенстве
// по убыванию числа окон.
func Rank(results []models.WorkshopAvailability) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].AverageWaitTime, results[j].AverageWaitTime
		switch {
		case a == nil && b == nil:
			return results[i].AvailableSlotsCount > results[j].AvailableSlotsCount
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return results[i].AvailableSlotsCount > results[j].AvailableSlotsCount
		}
	})
}
