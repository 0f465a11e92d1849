package server

import (
	"net/http"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/version"
)

// pipelineInterface defines the methods needed by the server from a pipeline.
type pipelineInterface interface {
	Process(col *entities.Collection) *pipeline.DrawingResult
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    pipelineInterface
	cfg         *config.Config
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig *config.Config
	RateLimit      RateLimitConfig
}

// RateLimitConfig holds request throttling limits. Zero values disable the
// corresponding limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type DetectResponse struct {
	Success bool                    `json:"success"`
	Result  *pipeline.DrawingResult `json:"result,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type PaperInfo struct {
	ID      string  `json:"id"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Profile string  `json:"profile"`
}

type PapersResponse struct {
	Papers []PaperInfo `json:"papers"`
	Count  int         `json:"count"`
}

// NewServer creates a new detection server instance.
func NewServer(serverConfig Config) (*Server, error) {
	cfg := serverConfig.PipelineConfig
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var limiter *RateLimiter
	if serverConfig.RateLimit.Enabled {
		limiter = NewRateLimiter(
			serverConfig.RateLimit.RequestsPerMinute,
			serverConfig.RateLimit.RequestsPerHour,
			serverConfig.RateLimit.MaxRequestsPerDay,
			serverConfig.RateLimit.MaxDataPerDay,
		)
	}

	return &Server{
		pipeline:    pipeline.New(cfg),
		cfg:         cfg,
		corsOrigin:  serverConfig.CORSOrigin,
		maxUploadMB: serverConfig.MaxUploadMB,
		timeoutSec:  serverConfig.TimeoutSec,
		rateLimiter: limiter,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/papers", s.corsMiddleware(s.papersHandler))
	mux.HandleFunc("/detect", s.corsMiddleware(s.rateLimitMiddleware(s.detectHandler)))
	mux.HandleFunc("/ws/detect", s.detectWebSocketHandler)
	mux.Handle("/metrics", metricsHandler())
}

func serverVersion() string {
	v, _, _ := version.Info()
	return v
}
