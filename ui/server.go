package ui

import (
	"net/http"

	"gokeyword/app"
	"gokeyword/internal"
	"gokeyword/internal/config"
	"gokeyword/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server represents the keyword combinator web server
type Server struct {
	router  *gin.Engine
	service *app.KeywordService
	cfg     *config.Config
	logger  *internal.Logger

	keywords *KeywordHandler
	data     *DataHandler
	help     *HelpHandler
}

// NewServer creates a server with all routes registered
func NewServer(service *app.KeywordService, cfg *config.Config, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.Named("http")

	gin.SetMode(cfg.Server.GinMode)

	help, err := NewHelpHandler()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   gin.New(),
		service:  service,
		cfg:      cfg,
		logger:   logger,
		keywords: NewKeywordHandler(service, cfg.Export.Basename, logger),
		data:     NewDataHandler(service, logger),
		help:     help,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting keyword combinator on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupMiddleware() {
	if gin.Mode() != gin.TestMode {
		s.router.Use(gin.Logger())
	}
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.LimitUploadSize(s.cfg.Server.MaxUploadBytes()))
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/help", s.help.HandleHelp())

	api := s.router.Group("/api")
	{
		api.GET("/regions", s.data.HandleListRegions())
		api.POST("/regions/import", s.data.HandleImportRegions())
		api.POST("/workbook/inspect", s.data.HandleInspectWorkbook())
		api.POST("/keywords/generate", s.keywords.HandleGenerate())
		api.POST("/keywords/export", s.keywords.HandleExport())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"reference_loaded": s.service.ReferenceAvailable(c.Request.Context()),
	})
}
