package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

// ListCategories возвращает категории. В режиме фикстур при ошибке отдаёт фиксированный список.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := c.fetchCategories(ctx)
	if err != nil {
		if c.fallback("list_categories", err) {
			return FixtureCategories(), nil
		}
		return nil, err
	}
	return categories, nil
}

func (c *Client) fetchCategories(ctx context.Context) ([]models.Category, error) {
	resp, err := c.call(ctx, request{method: http.MethodGet, path: "/categories"})
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.body)
	if len(body) > 0 && body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, malformed(err)
		}
		body = env.Data
	}
	if len(body) == 0 || body[0] != '[' {
		return nil, apperror.ErrMalformedResponse
	}

	var wire []wireCategory
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, malformed(err)
	}
	categories := make([]models.Category, 0, len(wire))
	for _, w := range wire {
		categories = append(categories, w.toModel())
	}
	return categories, nil
}
