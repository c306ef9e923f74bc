package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

// GetStatistics возвращает статистику по статусам с сервера.
// Если контракт не предоставляет статистику, возвращается apperror.ErrNoStatistics
// и вызывающий считает её сам по ListReports.
// Фикстуры подставляются только при сбое существующего эндпоинта.
func (c *Client) GetStatistics(ctx context.Context) (models.Statistics, error) {
	if !c.contract.HasStatistics() {
		return nil, apperror.ErrNoStatistics
	}

	stats, err := c.fetchStatistics(ctx)
	if err != nil {
		if c.fallback("statistics", err) {
			return models.TallyStatuses(c.fixtureReports(), c.contract.Statuses), nil
		}
		return nil, err
	}
	return stats, nil
}

func (c *Client) fetchStatistics(ctx context.Context) (models.Statistics, error) {
	resp, err := c.call(ctx, request{method: http.MethodGet, path: c.contract.StatisticsPath})
	if err != nil {
		return nil, err
	}
	return decodeStatistics(resp.body)
}

// decodeStatistics принимает {"pending": 1, ...} или {"data": {...}}.
// Нечисловые поля (например, total в виде строки) пропускаются.
func decodeStatistics(body []byte) (models.Statistics, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &fields); err != nil {
		return nil, malformed(err)
	}
	if data, ok := fields["data"]; ok {
		return decodeStatistics(data)
	}

	stats := make(models.Statistics, len(fields))
	for key, raw := range fields {
		if key == "total" {
			continue
		}
		var n FlexFloat
		if err := json.Unmarshal(raw, &n); err != nil || !n.Valid {
			continue
		}
		stats[models.ReportStatus(key)] = int(n.Value)
	}
	return stats, nil
}
