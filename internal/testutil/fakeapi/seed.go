package fakeapi

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SeedPassword пароль всех тестовых пользователей.
const SeedPassword = "password123"

// Тестовые учётные записи.
const (
	AdminEmail    = "admin@desu.com"
	ReporterEmail = "ujang@warga.com"
)

type user struct {
	ID           int
	Name         string
	Email        string
	PasswordHash []byte
	Role         string
	Phone        string
}

type category struct {
	ID      int
	Name    string
	IconURL string
}

type report struct {
	ID          int
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
	ImageURL    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int
	CategoryID  int
}

// seed заполняет сервис так же, как сид реального бэкенда: админ, два жителя, четыре категории.
func (s *Server) seed() {
	// MinCost, чтобы тесты не тратили время на хеширование
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.users = []*user{
		{ID: 1, Name: "Admin Desu", Email: AdminEmail, PasswordHash: hash, Role: "admin"},
		{ID: 2, Name: "Ujang Lapor", Email: ReporterEmail, PasswordHash: hash, Role: "reporter"},
		{ID: 3, Name: "Siti Netizen", Email: "siti@warga.com", PasswordHash: hash, Role: "reporter"},
	}
	s.nextUserID = 4

	s.categories = []category{
		{ID: 1, Name: "Jalan Rusak", IconURL: "/icons/road-marker.png"},
		{ID: 2, Name: "Banjir", IconURL: "/icons/flood-marker.png"},
		{ID: 3, Name: "Lampu Mati", IconURL: "/icons/lamp-marker.png"},
		{ID: 4, Name: "Sampah Liar", IconURL: "/icons/trash-marker.png"},
	}

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.reports = []*report{
		{
			ID: 1, Title: "Jalan Berlubang di Jl. Sudirman",
			Description: "Lubang besar di tengah jalan, bahaya untuk motor",
			Latitude:    -6.2088, Longitude: 106.8456,
			Status: "pending", CreatedAt: base, UpdatedAt: base,
			UserID: 2, CategoryID: 1,
		},
		{
			ID: 2, Title: "Banjir setinggi lutut di Kemang",
			Description: "Air tidak surut sejak pagi",
			Latitude:    -6.2607, Longitude: 106.8137,
			Status: "verified", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
			UserID: 3, CategoryID: 2,
		},
		{
			ID: 3, Title: "Lampu jalan mati di Monas",
			Description: "Gelap total setiap malam",
			Latitude:    -6.1754, Longitude: 106.8272,
			Status: "resolved", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour),
			UserID: 2, CategoryID: 3,
		},
	}
	s.nextID = 4
}

func (s *Server) findUserByEmail(email string) *user {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) findUser(id int) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) findCategory(id int) *category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i]
		}
	}
	return nil
}

func (s *Server) findReport(id int) *report {
	for _, r := range s.reports {
		if r.ID == id {
			return r
		}
	}
	return nil
}
