package models

import (
	"time"
)

// Report нормализованный отчёт о проблеме.
// Latitude/Longitude всегда числа, даже если сервер прислал GeoJSON геометрию.
type Report struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	CategoryID   string       `json:"category_id" yaml:"category_id"`
	CategoryName string       `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	Status       ReportStatus `json:"status" yaml:"status"`
	Latitude     float64      `json:"latitude" yaml:"latitude"`
	Longitude    float64      `json:"longitude" yaml:"longitude"`
	CreatedAt    string       `json:"created_at" yaml:"created_at"`
	UpdatedAt    string       `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	ImageURL     *string      `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	ReporterName *string      `json:"reporter_name,omitempty" yaml:"reporter_name,omitempty"`
	UserID       string       `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// Форматы времени, которые встречаются в ответах сервера.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CreatedTime разбирает CreatedAt. Время без зоны считается UTC.
func (r Report) CreatedTime() (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Photo вложение изображения для нового отчёта.
type Photo struct {
	Name string
	MIME string
	Data []byte
}

// ReportInput данные для создания отчёта (multipart форма).
type ReportInput struct {
	Title       string
	CategoryID  string
	Description string
	Latitude    float64
	Longitude   float64
	Photo       *Photo
}
