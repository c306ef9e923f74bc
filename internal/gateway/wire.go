package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
)

// FlexString принимает в JSON и строку, и число.
// Числовые идентификаторы сервера превращаются в десятичную строку.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("gateway: ожидалась строка или число, получено %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// FlexFloat принимает число или строку с числом.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = FlexFloat{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("gateway: некорректное число %s", data)
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// wireReport отчёт в том виде, в каком его присылает сервер или лежит в properties фичи.
type wireReport struct {
	ID           FlexString `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	CategoryID   FlexString `json:"category_id"`
	Category     FlexString `json:"category"`
	CategoryName *string    `json:"category_name"`
	Status       string     `json:"status"`
	Latitude     FlexFloat  `json:"latitude"`
	Longitude    FlexFloat  `json:"longitude"`
	CreatedAt    *string    `json:"created_at"`
	UpdatedAt    *string    `json:"updated_at"`
	ImageURL     *string    `json:"image_url"`
	ReporterName *string    `json:"reporter_name"`
	UserID       FlexString `json:"user_id"`
}

func (w wireReport) toModel() models.Report {
	r := models.Report{
		ID:           string(w.ID),
		Title:        w.Title,
		Description:  deref(w.Description),
		CategoryID:   string(w.CategoryID),
		CategoryName: deref(w.CategoryName),
		Status:       models.ReportStatus(w.Status),
		Latitude:     w.Latitude.Value,
		Longitude:    w.Longitude.Value,
		CreatedAt:    deref(w.CreatedAt),
		UpdatedAt:    deref(w.UpdatedAt),
		ImageURL:     nonEmpty(w.ImageURL),
		ReporterName: nonEmpty(w.ReporterName),
		UserID:       string(w.UserID),
	}
	// Фикстуры и старые ответы используют поле category вместо category_id
	if r.CategoryID == "" {
		r.CategoryID = string(w.Category)
	}
	return r
}

type wireCategory struct {
	ID      FlexString `json:"id"`
	Name    string     `json:"name"`
	IconURL *string    `json:"icon_url"`
}

func (w wireCategory) toModel() models.Category {
	return models.Category{ID: string(w.ID), Name: w.Name, IconURL: nonEmpty(w.IconURL)}
}

type wireUser struct {
	ID    FlexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
	Phone *string    `json:"phone"`
}

func (w *wireUser) toModel() *models.User {
	if w == nil {
		return nil
	}
	return &models.User{
		ID:    string(w.ID),
		Name:  w.Name,
		Email: w.Email,
		Role:  w.Role,
		Phone: nonEmpty(w.Phone),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
