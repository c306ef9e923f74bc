package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

// Format формат выгрузки.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatGeoJSON Format = "geojson"
	FormatPDF     Format = "pdf"
)

// DefaultTitle заголовок PDF отчёта по умолчанию
const DefaultTitle = "Lapor Desu - Reports"

// ParseFormat разбирает формат; пустая строка означает csv.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatGeoJSON, FormatPDF:
		return f, nil
	default:
		return "", apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный формат выгрузки %q (csv, geojson, pdf)", raw))
	}
}

// Extension возвращает расширение файла для формата.
func (f Format) Extension() string {
	return "." + string(f)
}

// Options параметры выгрузки
type Options struct {
	Title       string
	GeneratedAt time.Time
}

// Write пишет отчёты в w в заданном формате.
// Отчёты сортируются по created_at, затем по id.
func Write(w io.Writer, format Format, reports []models.Report, opts Options) error {
	sorted := sortReports(reports)
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = buildCSV(sorted)
	case FormatGeoJSON:
		data, err = buildGeoJSON(sorted)
	case FormatPDF:
		data, err = buildPDF(sorted, opts)
	default:
		return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный формат выгрузки %q", format))
	}
	if err != nil {
		return fmt.Errorf("не удалось сформировать выгрузку %s: %w", format, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("не удалось записать выгрузку %s: %w", format, err)
	}
	return nil
}

func sortReports(reports []models.Report) []models.Report {
	sorted := make([]models.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := sorted[i].CreatedTime()
		tj, _ := sorted[j].CreatedTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

var csvHeaders = []string{
	"id", "title", "category_id", "category_name", "status",
	"latitude", "longitude", "created_at", "reporter_name", "image_url", "description",
}

func buildCSV(reports []models.Report) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, err
	}
	for _, r := range reports {
		row := []string{
			r.ID,
			r.Title,
			r.CategoryID,
			r.CategoryName,
			r.Status.String(),
			formatCoord(r.Latitude),
			formatCoord(r.Longitude),
			r.CreatedAt,
			deref(r.ReporterName),
			deref(r.ImageURL),
			r.Description,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// buildGeoJSON пишет FeatureCollection; координаты в порядке [lng, lat].
func buildGeoJSON(reports []models.Report) ([]byte, error) {
	features := make([]feature, 0, len(reports))
	for _, r := range reports {
		props := map[string]any{
			"id":          r.ID,
			"title":       r.Title,
			"description": r.Description,
			"category_id": r.CategoryID,
			"status":      r.Status,
			"created_at":  r.CreatedAt,
		}
		if r.CategoryName != "" {
			props["category_name"] = r.CategoryName
		}
		if r.ReporterName != nil {
			props["reporter_name"] = *r.ReporterName
		}
		if r.ImageURL != nil {
			props["image_url"] = *r.ImageURL
		}
		features = append(features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "Point", Coordinates: [2]float64{r.Longitude, r.Latitude}},
			Properties: props,
		})
	}
	return json.MarshalIndent(featureCollection{Type: "FeatureCollection", Features: features}, "", "  ")
}

func buildPDF(reports []models.Report, opts Options) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.SetTitle(opts.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, tr(opts.Title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Generated: "+opts.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total reports: %d", len(reports)))
	pdf.Ln(10)

	stats := models.TallyStatuses(reports, nil)
	statuses := make([]models.ReportStatus, 0, len(stats))
	for status := range stats {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if stats[statuses[i]] != stats[statuses[j]] {
			return stats[statuses[i]] > stats[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Status distribution")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, status := range statuses {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %d", status, stats[status]))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// таблица отчётов
	widths := []float64{12, 70, 30, 24, 54}
	headers := []string{"ID", "Title", "Category", "Status", "Location"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range reports {
		category := r.CategoryName
		if category == "" {
			category = r.CategoryID
		}
		cells := []string{
			r.ID,
			truncate(r.Title, 42),
			truncate(category, 18),
			r.Status.String(),
			formatCoord(r.Latitude) + ", " + formatCoord(r.Longitude),
		}
		for i, text := range cells {
			pdf.CellFormat(widths[i], 6, tr(text), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buffer := bytes.NewBuffer(nil)
	if err := pdf.Output(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
