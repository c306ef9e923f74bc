package gateway

import (
	"time"

	"github.com/ignatzorin/lapor-client/internal/models"
)

// Фикстуры для режима без настроенного сервиса.

// FixtureCategories возвращает фиксированный список категорий.
func FixtureCategories() []models.Category {
	return []models.Category{
		{ID: "jalan_rusak", Name: "Jalan Rusak"},
		{ID: "kebersihan", Name: "Kebersihan"},
		{ID: "keamanan", Name: "Keamanan"},
		{ID: "lampu_jalan", Name: "Lampu Jalan Mati"},
		{ID: "air_bersih", Name: "Air Bersih"},
		{ID: "drainase", Name: "Drainase"},
	}
}

// FixtureReports возвращает демонстрационные отчёты.
// Время создания считается от now, как будто отчёты поданы сегодня, вчера и позавчера.
func FixtureReports(now time.Time) []models.Report {
	now = now.UTC()
	stamp := func(daysAgo int) string {
		return now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Format(time.RFC3339)
	}

	return []models.Report{
		{
			ID:          "1",
			Title:       "Jalan Berlubang di Jl. Sudirman",
			Description: "Terdapat lubang besar di tengah jalan yang membahayakan kendaraan",
			CategoryID:  "jalan_rusak",
			Status:      models.ReportStatusPending,
			Latitude:    -6.2088,
			Longitude:   106.8456,
			CreatedAt:   stamp(0),
		},
		{
			ID:          "2",
			Title:       "Lampu Jalan Mati",
			Description: "Lampu jalan di perempatan sudah tidak menyala selama 2 minggu",
			CategoryID:  "lampu_jalan",
			Status:      models.ReportStatusVerified,
			Latitude:    -6.21,
			Longitude:   106.847,
			CreatedAt:   stamp(1),
		},
		{
			ID:          "3",
			Title:       "Sampah Menumpuk",
			Description: "Tumpukan sampah di sepanjang jalan, sudah mengganggu lalu lintas",
			CategoryID:  "kebersihan",
			Status:      models.ReportStatusInProgress,
			Latitude:    -6.207,
			Longitude:   106.844,
			CreatedAt:   stamp(2),
		},
	}
}

// fixtureReports возвращает фикстуры в словаре статусов текущего контракта.
// Статус, которого нет в словаре, становится pending.
func (c *Client) fixtureReports() []models.Report {
	reports := FixtureReports(time.Now())
	for i := range reports {
		if !c.contract.AllowsStatus(reports[i].Status) {
			reports[i].Status = models.ReportStatusPending
		}
	}
	return reports
}
