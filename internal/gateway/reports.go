package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/storage"
	"github.com/ignatzorin/lapor-client/internal/validation"
)

// ListReports возвращает отчёты, отфильтрованные по категориям на клиенте.
// Сервер тоже получает фильтр, повторная фильтрация результат не меняет.
// В режиме фикстур любая ошибка заменяется отфильтрованными фикстурами.
func (c *Client) ListReports(ctx context.Context, categories []string) ([]models.Report, error) {
	cats := normalizeCategories(categories)

	query := url.Values{}
	if len(cats) > 0 {
		query.Set("categories", strings.Join(cats, ","))
	}

	reports, err := c.fetchReports(ctx, query)
	if err != nil {
		if c.fallback("list_reports", err) {
			return FilterByCategory(c.fixtureReports(), cats), nil
		}
		return nil, err
	}
	return FilterByCategory(reports, cats), nil
}

func (c *Client) fetchReports(ctx context.Context, query url.Values) ([]models.Report, error) {
	resp, err := c.call(ctx, request{method: http.MethodGet, path: "/reports", query: query})
	if err != nil {
		return nil, err
	}
	return decodeReportList(resp.body)
}

// GetReport возвращает один отчёт по идентификатору.
func (c *Client) GetReport(ctx context.Context, id string) (*models.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан идентификатор отчёта")
	}

	resp, err := c.call(ctx, request{method: http.MethodGet, path: reportPath(id)})
	if err != nil {
		return nil, err
	}
	return decodeReport(resp.body)
}

// CreateReport отправляет новый отчёт multipart формой.
func (c *Client) CreateReport(ctx context.Context, input models.ReportInput) (*models.Report, error) {
	if err := c.validateReportInput(input); err != nil {
		return nil, err
	}

	body, contentType, err := encodeReportForm(input)
	if err != nil {
		return nil, err
	}

	resp, err := c.call(ctx, request{
		method:      http.MethodPost,
		path:        "/reports",
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return decodeReport(resp.body)
}

func (c *Client) validateReportInput(input models.ReportInput) error {
	if err := validation.ValidateReportTitle(input.Title); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("категория", input.CategoryID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReportDescription(input.Description); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if photo := input.Photo; photo != nil {
		if len(photo.Data) == 0 {
			return apperror.New(apperror.ErrCodeValidation, "файл изображения пуст")
		}
		if int64(len(photo.Data)) > c.maxUploadBytes {
			return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("размер изображения превышает лимит %d байт", c.maxUploadBytes))
		}
		if _, err := storage.DetectImageMIME(photo.Data); err != nil {
			return err
		}
	}
	return nil
}

// encodeReportForm собирает multipart тело: title, category_id, description, latitude, longitude, image.
func encodeReportForm(input models.ReportInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"title", strings.TrimSpace(input.Title)},
		{"category_id", strings.TrimSpace(input.CategoryID)},
		{"description", strings.TrimSpace(input.Description)},
		{"latitude", strconv.FormatFloat(input.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(input.Longitude, 'f', -1, 64)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("gateway: не удалось записать поле %s: %w", f.name, err)
		}
	}

	if photo := input.Photo; photo != nil {
		mime := photo.MIME
		if mime == "" {
			if detected, err := storage.DetectImageMIME(photo.Data); err == nil {
				mime = detected
			} else {
				mime = "application/octet-stream"
			}
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(photo.Name)))
		header.Set("Content-Type", mime)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("gateway: не удалось добавить изображение: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, "", fmt.Errorf("gateway: не удалось добавить изображение: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("gateway: не удалось закрыть форму: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UpdateReportStatus меняет статус отчёта.
// Возвращает обновлённый отчёт или nil, если сервис только подтвердил изменение.
func (c *Client) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан идентификатор отчёта")
	}
	if !c.contract.AllowsStatus(status) {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("статус %q недопустим для контракта %s", status, c.contract.Version))
	}

	req, err := jsonRequest(http.MethodPatch, c.contract.statusPath(id), map[string]string{"status": string(status)})
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	if !hasReportPayload(resp.body) {
		return nil, nil
	}
	return decodeReport(resp.body)
}

// DeleteReport удаляет отчёт.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.New(apperror.ErrCodeValidation, "не указан идентификатор отчёта")
	}
	_, err := c.call(ctx, request{method: http.MethodDelete, path: reportPath(id)})
	return err
}

// hasReportPayload сообщает, есть ли в ответе сам отчёт, а не только сообщение.
func hasReportPayload(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	if data, ok := fields["data"]; ok {
		data = bytes.TrimSpace(data)
		return len(data) > 0 && data[0] == '{'
	}
	_, ok := fields["id"]
	return ok
}
