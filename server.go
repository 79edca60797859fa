package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Server exposes the engine over HTTP. Inputs are loaded once and shared
// read-only by every request.
type Server struct {
	cfg    *Config
	inputs Inputs
	logger *slog.Logger
	router *gin.Engine
}

func NewServer(cfg *Config, inputs Inputs, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		inputs: inputs,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/contribution", s.handleContribution)
	api.GET("/comparison", s.handleComparison)
	api.GET("/predict/:year", s.handlePredict)
	api.GET("/chart.png", s.handleChart)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type contributionEntry struct {
	Category string  `json:"category"`
	Offset   int     `json:"offset"`
	Pct      float64 `json:"pct"`
}

func (s *Server) handleContribution(c *gin.Context) {
	entries := make([]contributionEntry, 0, MaxCropOffset+1)
	for _, offset := range CropOffsets() {
		entries = append(entries, contributionEntry{
			Category: offset.String(),
			Offset:   int(offset),
			Pct:      s.inputs.Table.WeightOf(offset),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"weights": entries,
		"total":   s.inputs.Table.Total(),
	})
}

type comparisonResponse struct {
	Rows     []ComparisonRow   `json:"rows"`
	Forecast *PredictionRecord `json:"forecast"`
	Summary  []string          `json:"summary"`
}

func (s *Server) handleComparison(c *gin.Context) {
	production, err := s.forecastProduction(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, rows := s.analyze(production)
	c.JSON(http.StatusOK, comparisonResponse{
		Rows:     rows,
		Forecast: a.Forecast,
		Summary:  SummaryLines(rows),
	})
}

func (s *Server) handlePredict(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid year %q", c.Param("year"))})
		return
	}

	raw, given := c.GetQuery("production")
	if !given {
		c.JSON(http.StatusOK, gin.H{
			"year":      year,
			"predicted": Predict(year, s.inputs.Production, s.inputs.Table),
			"ad_hoc":    false,
		})
		return
	}

	production, err := parseProductionQuery(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":      year,
		"predicted": PredictWithCurrent(year, production, s.inputs.Production, s.inputs.Table),
		"ad_hoc":    true,
	})
}

func (s *Server) handleChart(c *gin.Context) {
	production, err := s.forecastProduction(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, rows := s.analyze(production)

	var buf bytes.Buffer
	if err := WriteComparisonChart(&buf, rows, a.Forecast); err != nil {
		if errors.Is(err, ErrNoChartData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("chart rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart rendering failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) analyze(production float64) (Analysis, []ComparisonRow) {
	years := YearRange(s.cfg.Prediction.FromYear, s.cfg.Prediction.ToYear)
	a := Analyze(s.inputs, years, s.cfg.ForecastYear(), production)
	return a, RowsFrom(a.Rows, s.cfg.Prediction.FromYear)
}

// forecastProduction reads ?production=, defaulting to the configured
// forecast production.
func (s *Server) forecastProduction(c *gin.Context) (float64, error) {
	raw, ok := c.GetQuery("production")
	if !ok || raw == "" {
		return s.cfg.Prediction.ForecastProduction, nil
	}
	return parseProductionQuery(raw)
}

func parseProductionQuery(raw string) (float64, error) {
	production, err := parseMass(raw)
	if err != nil {
		return 0, fmt.Errorf("production: %w", err)
	}
	return production, nil
}
