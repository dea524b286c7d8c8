package scheduling

import (
	"math"

	"github.com/senyabanana/repair-quotes/internal/models"
)

const earthRadiusKm = 6371.0

// Haversine возвращает расстояние по дуге большого круга в километрах,
// округленное до десятых.
func Haversine(a, b models.Coordinates) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	km := 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
	return math.Round(km*10) / 10
}

// DistanceKm - Haversine для необязательных координат, nil если их нет.
func DistanceKm(a, b *models.Coordinates) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := Haversine(*a, *b)
	return &d
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
