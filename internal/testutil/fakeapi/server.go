// Package fakeapi содержит in-memory реализацию удалённого API сервиса отчётов для тестов.
package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Encoding формат ответа GET /reports.
type Encoding string

const (
	EncodingFlat     Encoding = "flat"
	EncodingEnvelope Encoding = "envelope"
	EncodingGeoJSON  Encoding = "geojson"
)

// Options настраивает поведение фейкового сервиса.
type Options struct {
	// Contract "v1" или "v2" (по умолчанию v2).
	Contract string
	// Encoding по умолчанию: flat для v1, geojson для v2.
	Encoding Encoding
	// ServerSideFilter включает фильтрацию ?categories= на сервере.
	ServerSideFilter bool
	// LoginRateLimit задаёт число попыток входа в минуту с одного IP.
	LoginRateLimit int64
	Secret         string
	TokenTTL       time.Duration
}

// RecordedRequest запрос, который пришёл на сервер.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

// Upload последнее загруженное изображение.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

// Server фейковый сервис. Обработчики живут под префиксом /api.
type Server struct {
	opts   Options
	engine *gin.Engine
	tokens *tokenManager

	mu         sync.Mutex
	users      []*user
	categories []category
	reports    []*report
	nextUserID int
	nextID     int
	requests   []RecordedRequest
	outage     int
	lastUpload *Upload
}

// New создаёт сервис с тестовыми данными.
func New(opts Options) *Server {
	if opts.Contract == "" {
		opts.Contract = "v2"
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingGeoJSON
		if opts.Contract == "v1" {
			opts.Encoding = EncodingFlat
		}
	}
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 100
	}
	if opts.Secret == "" {
		opts.Secret = "fake-api-secret-for-tests-only"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}

	s := &Server{
		opts:   opts,
		tokens: newTokenManager(opts.Secret, opts.TokenTTL),
	}
	s.seed()
	s.engine = s.setupRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Requests возвращает копию журнала запросов.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest возвращает последний запрос или пустую запись.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// SetOutage заставляет все запросы отвечать статусом status. 0 возвращает нормальную работу.
func (s *Server) SetOutage(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outage = status
}

// LastUpload возвращает данные о последнем загруженном изображении.
func (s *Server) LastUpload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpload
}

// ReportSnapshot возвращает копию отчёта в виде ответа сервера.
func (s *Server) ReportSnapshot(id int) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findReport(id)
	if r == nil {
		return nil, false
	}
	return s.reportJSON(r), true
}

// ReportCount возвращает число отчётов.
func (s *Server) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// IssueToken выпускает токен для существующего пользователя по email.
func (s *Server) IssueToken(email string) (string, bool) {
	s.mu.Lock()
	u := s.findUserByEmail(email)
	s.mu.Unlock()
	if u == nil {
		return "", false
	}
	token, err := s.tokens.issue(u)
	if err != nil {
		return "", false
	}
	return token, true
}
