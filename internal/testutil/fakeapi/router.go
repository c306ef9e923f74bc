package fakeapi

import (
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.recordMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", rateLimitMiddleware(s.opts.LoginRateLimit, time.Minute), s.login)
	auth.POST("/register", s.register)

	public := api.Group("")
	public.Use(s.authMiddleware(true))
	public.GET("/categories", s.listCategories)
	public.GET("/reports", s.listReports)
	public.GET("/reports/:id", s.getReport)
	if s.opts.Contract == "v1" {
		public.GET("/reports/statistics", s.statistics)
	}

	protected := api.Group("")
	protected.Use(s.authMiddleware(false))
	protected.POST("/reports", s.createReport)

	admin := protected.Group("")
	admin.Use(requireAdmin())
	if s.opts.Contract == "v1" {
		admin.PATCH("/reports/:id/status", s.updateStatus)
	} else {
		admin.PATCH("/reports/:id", s.updateStatus)
	}
	admin.DELETE("/reports/:id", s.deleteReport)

	return r
}
