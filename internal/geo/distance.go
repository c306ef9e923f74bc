package geo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/validation"
)

const (
	// EarthRadiusMeters средний радиус Земли для формулы гаверсинусов
	EarthRadiusMeters = 6371008.8
	// DefaultRadiusMeters радиус поиска по умолчанию
	DefaultRadiusMeters = 1000.0
)

// Point широта и долгота в градусах.
type Point struct {
	Lat float64
	Lng float64
}

// DefaultCenter начальный центр карты (Джакарта).
var DefaultCenter = Point{Lat: -6.2088, Lng: 106.8456}

func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}

// ParsePoint разбирает строку "lat,lng" (пробелы допускаются).
func ParsePoint(raw string) (Point, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("ожидаются координаты в виде \"lat,lng\", получено %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("некорректная широта %q", strings.TrimSpace(parts[0]))
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("некорректная долгота %q", strings.TrimSpace(parts[1]))
	}
	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// HaversineMeters считает расстояние по дуге большого круга в метрах.
func HaversineMeters(a, b Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// IsWithinRadius проверяет, что точки не дальше radiusMeters друг от друга.
func IsWithinRadius(a, b Point, radiusMeters float64) bool {
	return HaversineMeters(a, b) <= radiusMeters
}

// Nearby отчёт и расстояние до центра поиска.
type Nearby struct {
	Report         models.Report
	DistanceMeters float64
}

// FilterNear возвращает отчёты в радиусе от center, ближайшие первыми.
func FilterNear(reports []models.Report, center Point, radiusMeters float64) []Nearby {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	out := make([]Nearby, 0, len(reports))
	for _, r := range reports {
		d := HaversineMeters(center, Point{Lat: r.Latitude, Lng: r.Longitude})
		if d <= radiusMeters {
			out = append(out, Nearby{Report: r, DistanceMeters: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}
