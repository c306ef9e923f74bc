package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type     string `json:"type"`
	Geometry *struct {
		Type        string      `json:"type"`
		Coordinates []FlexFloat `json:"coordinates"`
	} `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// envelope ответ вида {"data": ...}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// decodeReportList приводит ответ списка к []models.Report.
// Поддерживаются плоский массив, обёртка {"data": [...]} и GeoJSON FeatureCollection.
func decodeReportList(body []byte) ([]models.Report, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperror.ErrMalformedResponse
	}

	if trimmed[0] == '[' {
		return decodeFlatReports(trimmed)
	}

	var probe struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, malformed(err)
	}

	switch {
	case probe.Type == "FeatureCollection":
		return decodeFeatureCollection(trimmed)
	case len(probe.Data) > 0:
		return decodeReportList(probe.Data)
	default:
		return nil, apperror.ErrMalformedResponse
	}
}

func decodeFlatReports(body []byte) ([]models.Report, error) {
	var wire []wireReport
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, malformed(err)
	}
	reports := make([]models.Report, 0, len(wire))
	for _, w := range wire {
		reports = append(reports, w.toModel())
	}
	return reports, nil
}

func decodeFeatureCollection(body []byte) ([]models.Report, error) {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, malformed(err)
	}

	reports := make([]models.Report, 0, len(fc.Features))
	for i, f := range fc.Features {
		var props wireReport
		if len(f.Properties) > 0 && !bytes.Equal(f.Properties, []byte("null")) {
			if err := json.Unmarshal(f.Properties, &props); err != nil {
				return nil, malformed(fmt.Errorf("feature %d: %w", i, err))
			}
		}

		report := props.toModel()
		// GeoJSON хранит координаты как [lng, lat]
		switch {
		case f.Geometry != nil && len(f.Geometry.Coordinates) >= 2 &&
			f.Geometry.Coordinates[0].Valid && f.Geometry.Coordinates[1].Valid:
			report.Longitude = f.Geometry.Coordinates[0].Value
			report.Latitude = f.Geometry.Coordinates[1].Value
		case props.Latitude.Valid && props.Longitude.Valid:
			// координаты уже взяты из properties
		default:
			return nil, malformed(fmt.Errorf("feature %d: нет координат", i))
		}

		reports = append(reports, report)
	}
	return reports, nil
}

// decodeReport разбирает один отчёт, возможно обёрнутый в {"data": ...}.
func decodeReport(body []byte) (*models.Report, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperror.ErrMalformedResponse
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, malformed(err)
	}
	if len(env.Data) > 0 && env.Data[0] == '{' {
		trimmed = env.Data
	}

	var w wireReport
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, malformed(err)
	}
	if w.ID == "" {
		return nil, apperror.ErrMalformedResponse
	}
	report := w.toModel()
	return &report, nil
}

func malformed(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeTransport, apperror.ErrMalformedResponse.Message)
}
