package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/denysvitali/asset-finder/internal/models"
	"github.com/denysvitali/asset-finder/pkg/classifier"
	"github.com/denysvitali/asset-finder/pkg/config"
	"github.com/denysvitali/asset-finder/pkg/telemetry"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	logger    *logrus.Logger
	scanner   *classifier.Scanner
	engine    *gin.Engine
	server    *http.Server
	startTime time.Time
}

// New creates a new server instance
func New(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	if err := config.ValidateMountPrefix(cfg.Server.MountPrefix); err != nil {
		return nil, fmt.Errorf("invalid mount prefix: %w", err)
	}

	scanner := classifier.NewFromConfig(afero.NewOsFs(), cfg, logger)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// Set gin mode based on log level
	if logger.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	engine.Use(gin.Recovery())
	engine.Use(ginLogger(logger))

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(telemetry.ServiceName))
	}

	server := &Server{
		config:    cfg,
		logger:    logger,
		scanner:   scanner,
		engine:    engine,
		startTime: time.Now(),
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Serving %s under %s", s.config.Server.AssetsDir, s.scanner.MountPrefix())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the gin engine for testing purposes
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/api/search", s.handleSearch)

	// Raw assets, the URLs produced by the scanner point here
	s.engine.Static(s.scanner.MountPrefix(), s.config.Server.AssetsDir)

	s.engine.GET("/alive", s.handleAlive)
	s.engine.GET("/server_info", s.handleServerInfo)
}

type indexPage struct {
	Keyword string
	Result  models.Classification
	Error   string
}

// handleIndex renders the grouped HTML result page
func (s *Server) handleIndex(c *gin.Context) {
	keyword, result, err := s.search(c, "handle_index")
	if err != nil {
		c.HTML(statusFor(err), "index.html", indexPage{Keyword: keyword, Error: err.Error()})
		return
	}

	c.HTML(http.StatusOK, "index.html", indexPage{Keyword: keyword, Result: result})
}

// handleSearch returns the grouped result as JSON
func (s *Server) handleSearch(c *gin.Context) {
	keyword, result, err := s.search(c, "handle_search")
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.SearchResponse{Keyword: keyword, Classification: result})
}

// search runs one scan for the request's keyword, falling back to the default keyword
func (s *Server) search(c *gin.Context, operation string) (string, models.Classification, error) {
	ctx, span := otel.Tracer(telemetry.ServiceName).Start(c.Request.Context(), operation)
	defer span.End()

	keyword := c.Query("keyword")
	if keyword == "" {
		keyword = s.config.Search.DefaultKeyword
	}
	span.SetAttributes(attribute.String("keyword", keyword))

	if s.config.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Search.Timeout)
		defer cancel()
	}

	result, err := s.scanner.Search(ctx, keyword)
	if err != nil {
		span.RecordError(err)
		s.logger.Errorf("Search for %q failed: %v", keyword, err)
		return keyword, models.Classification{}, err
	}

	span.SetAttributes(
		attribute.Int("matches", result.Total),
		attribute.Int("images", len(result.Images)),
		attribute.Int("others", len(result.Others)),
	)

	if s.config.Telemetry.Enabled {
		telemetry.ReportJSON(ctx, s.logger, "search_result", map[string]interface{}{
			"keyword":            keyword,
			"total":              result.Total,
			"kept":               result.Kept(),
			"dropped_extensions": result.DroppedExtensions,
		})
	}

	return keyword, result, nil
}

// handleAlive handles health check requests
func (s *Server) handleAlive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleServerInfo reports uptime and resource usage of the asset volume
func (s *Server) handleServerInfo(c *gin.Context) {
	response := models.ServerInfoResponse{
		Uptime:      time.Since(s.startTime).Seconds(),
		AssetsDir:   s.config.Server.AssetsDir,
		MountPrefix: s.scanner.MountPrefix(),
		CPUCount:    runtime.NumCPU(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err != nil {
		s.logger.Warnf("Failed to get process info: %v", err)
	} else if mem, err := proc.MemoryInfo(); err != nil {
		s.logger.Warnf("Failed to get memory info: %v", err)
	} else {
		response.MemoryRSS = mem.RSS
	}

	if usage, err := disk.Usage(s.config.Server.AssetsDir); err != nil {
		s.logger.Warnf("Failed to get disk usage for %s: %v", s.config.Server.AssetsDir, err)
	} else {
		response.Disk = &models.DiskUsage{
			Path:        usage.Path,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}

	c.JSON(http.StatusOK, response)
}

// statusFor maps a search failure to an HTTP status
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"dict": func(values ...interface{}) (map[string]interface{}, error) {
		if len(values)%2 != 0 {
			return nil, errors.New("dict requires key/value pairs")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", values[i])
			}
			m[key] = values[i+1]
		}
		return m, nil
	},
}

// ginLogger creates a gin logger middleware using logrus
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status":     statusCode,
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency":    latency,
			"user_agent": c.Request.UserAgent(),
		})

		if raw != "" {
			entry = entry.WithField("query", raw)
		}

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request completed")
		}
	}
}
