package fakeapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var statusVocabulary = map[string][]string{
	"v1": {"pending", "verified", "in_progress", "resolved"},
	"v2": {"pending", "verified", "resolved", "rejected"},
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	s.mu.Lock()
	u := s.findUserByEmail(strings.ToLower(req.Email))
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := s.tokens.issue(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userJSON(u)})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(req.Email)
	if s.findUserByEmail(email) != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	u := &user{
		ID:           s.nextUserID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         "reporter",
		Phone:        req.Phone,
	}
	s.nextUserID++
	s.users = append(s.users, u)

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": userJSON(u)})
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]gin.H, 0, len(s.categories))
	for _, cat := range s.categories {
		out = append(out, gin.H{"id": cat.ID, "name": cat.Name, "icon_url": cat.IconURL})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listReports(c *gin.Context) {
	var wanted map[string]bool
	if raw := c.Query("categories"); raw != "" && s.opts.ServerSideFilter {
		wanted = make(map[string]bool)
		for _, id := range strings.Split(raw, ",") {
			wanted[strings.TrimSpace(id)] = true
		}
	}

	s.mu.Lock()
	items := make([]map[string]any, 0, len(s.reports))
	for _, r := range s.reports {
		if wanted != nil && !wanted[strconv.Itoa(r.CategoryID)] {
			continue
		}
		items = append(items, s.reportJSON(r))
	}
	s.mu.Unlock()

	switch s.opts.Encoding {
	case EncodingFlat:
		c.JSON(http.StatusOK, items)
	case EncodingEnvelope:
		c.JSON(http.StatusOK, gin.H{"data": items})
	default:
		features := make([]gin.H, 0, len(items))
		for _, item := range items {
			features = append(features, gin.H{
				"type": "Feature",
				"geometry": gin.H{
					"type":        "Point",
					"coordinates": []float64{item["longitude"].(float64), item["latitude"].(float64)},
				},
				"properties": item,
			})
		}
		c.JSON(http.StatusOK, gin.H{"type": "FeatureCollection", "features": features})
	}
}

func (s *Server) getReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findReport(id)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, s.reportJSON(r))
}

func (s *Server) createReport(c *gin.Context) {
	var missing []string
	for _, field := range []string{"title", "latitude", "longitude", "category_id"} {
		if strings.TrimSpace(c.PostForm(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Field(s) missing: %s", strings.Join(missing, ", "))})
		return
	}

	lat, errLat := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.PostForm("longitude"), 64)
	categoryID, errCat := strconv.Atoi(c.PostForm("category_id"))
	if errLat != nil || errLng != nil || errCat != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude, longitude and category_id must be numbers"})
		return
	}

	userID := c.GetInt(contextUserIDKey)

	var imageURL string
	if file, err := c.FormFile("image"); err == nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		imageURL = fmt.Sprintf("https://storage.example.com/reports/%s%s", uuid.NewString(), ext)
		s.mu.Lock()
		s.lastUpload = &Upload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Size:        file.Size,
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findCategory(categoryID) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	now := time.Now().UTC()
	r := &report{
		ID:          s.nextID,
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Latitude:    lat,
		Longitude:   lng,
		ImageURL:    imageURL,
		Status:      "pending",
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
		CategoryID:  categoryID,
	}
	s.nextID++
	s.reports = append(s.reports, r)

	c.JSON(http.StatusCreated, gin.H{"message": "Laporan diterima desu!", "data": s.reportJSON(r)})
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findReport(id)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if !allowed(statusVocabulary[s.opts.Contract], req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Unknown status " + req.Status})
		return
	}

	r.Status = req.Status
	r.UpdatedAt = time.Now().UTC()

	// v1 только подтверждает изменение, v2 возвращает отчёт
	if s.opts.Contract == "v1" {
		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data berhasil diupdate desu!", "data": s.reportJSON(r)})
}

func (s *Server) deleteReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reports {
		if r.ID == id {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Laporan berhasil dihapus selamanya!"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
}

func (s *Server) statistics(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := gin.H{}
	for _, status := range statusVocabulary[s.opts.Contract] {
		out[status] = 0
	}
	for _, r := range s.reports {
		n, _ := out[r.Status].(int)
		out[r.Status] = n + 1
	}
	out["total"] = len(s.reports)
	c.JSON(http.StatusOK, out)
}

func reportID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return 0, false
	}
	return id, true
}

func allowed(vocabulary []string, status string) bool {
	for _, v := range vocabulary {
		if v == status {
			return true
		}
	}
	return false
}

func userJSON(u *user) gin.H {
	out := gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role}
	if u.Phone != "" {
		out["phone"] = u.Phone
	}
	return out
}

// reportJSON повторяет сериализацию отчёта реального бэкенда. Вызывается под s.mu.
func (s *Server) reportJSON(r *report) map[string]any {
	reporter := "Anonymous"
	if u := s.findUser(r.UserID); u != nil {
		reporter = u.Name
	}
	categoryName := "General"
	var categoryIcon any
	if cat := s.findCategory(r.CategoryID); cat != nil {
		categoryName = cat.Name
		categoryIcon = cat.IconURL
	}
	var imageURL any
	if r.ImageURL != "" {
		imageURL = r.ImageURL
	}

	return map[string]any{
		"id":            r.ID,
		"title":         r.Title,
		"description":   r.Description,
		"latitude":      r.Latitude,
		"longitude":     r.Longitude,
		"image_url":     imageURL,
		"status":        r.Status,
		"created_at":    r.CreatedAt.Format("2006-01-02T15:04:05.999999"),
		"updated_at":    r.UpdatedAt.Format("2006-01-02T15:04:05.999999"),
		"user_id":       r.UserID,
		"category_id":   r.CategoryID,
		"reporter_name": reporter,
		"category_name": categoryName,
		"category_icon": categoryIcon,
	}
}
