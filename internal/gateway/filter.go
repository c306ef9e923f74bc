package gateway

import (
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
)

// FilterByCategory оставляет отчёты из перечисленных категорий.
// Пустой список категорий означает "все". Повторный вызов ничего не меняет.
func FilterByCategory(reports []models.Report, categories []string) []models.Report {
	wanted := normalizeCategories(categories)
	if len(wanted) == 0 {
		return reports
	}

	set := make(map[string]struct{}, len(wanted))
	for _, c := range wanted {
		set[c] = struct{}{}
	}

	filtered := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if _, ok := set[r.CategoryID]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FilterByStatus оставляет отчёты с указанным статусом (пустой статус означает все).
func FilterByStatus(reports []models.Report, status models.ReportStatus) []models.Report {
	if status == "" {
		return reports
	}
	filtered := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// normalizeCategories убирает пробелы, пустые значения и дубли.
func normalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
