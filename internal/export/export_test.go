package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

func strPtr(s string) *string { return &s }

func sampleReports() []models.Report {
	return []models.Report{
		{
			ID: "2", Title: "Lampu jalan mati", CategoryID: "lampu_jalan", Status: models.ReportStatusVerified,
			Latitude: -6.1754, Longitude: 106.8272, CreatedAt: "2026-10-18T08:00:00Z",
		},
		{
			ID: "1", Title: "Jalan berlubang, dalam", Description: "Di depan \"Toko Maju\"",
			CategoryID: "jalan_rusak", CategoryName: "Jalan Rusak", Status: models.ReportStatusPending,
			Latitude: -6.2088, Longitude: 106.8456, CreatedAt: "2026-10-17T08:00:00Z",
			ReporterName: strPtr("Ujang"), ImageURL: strPtr("/uploads/1.jpg"),
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" GeoJSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatGeoJSON, f)
	assert.Equal(t, ".geojson", f.Extension())

	_, err = ParseFormat("xlsx")
	assert.True(t, apperror.IsValidation(err))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReports(), Options{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeaders, rows[0])

	// старые отчёты первыми
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Jalan berlubang, dalam", rows[1][1])
	assert.Equal(t, "-6.208800", rows[1][5])
	assert.Equal(t, "106.845600", rows[1][6])
	assert.Equal(t, "Ujang", rows[1][8])
	assert.Equal(t, "Di depan \"Toko Maju\"", rows[1][10])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "", rows[2][8])
}

func TestWrite_GeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatGeoJSON, sampleReports(), Options{}))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string     `json:"type"`
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.Equal(t, [2]float64{106.8456, -6.2088}, first.Geometry.Coordinates)
	assert.Equal(t, "1", first.Properties["id"])
	assert.Equal(t, "pending", first.Properties["status"])
	assert.Equal(t, "Ujang", first.Properties["reporter_name"])
	assert.NotContains(t, fc.Features[1].Properties, "image_url")
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatPDF, sampleReports(), Options{
		Title:       "Laporan Warga",
		GeneratedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWrite_EmptyList(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatGeoJSON, FormatPDF} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, f, nil, Options{}), f)
		assert.NotZero(t, buf.Len(), f)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleReports(), Options{})
	assert.True(t, apperror.IsValidation(err))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, FormatCSV, sampleReports(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}
