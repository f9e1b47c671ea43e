package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/pdfdesk/internal/db"
	"horse.fit/pdfdesk/internal/document"
	"horse.fit/pdfdesk/internal/storage"
	"horse.fit/pdfdesk/internal/translation"
)

const defaultMaxUploadBytes int64 = 32 << 20

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string
}

// Documents runs the PDF pipelines behind /translate-pdf and /correct-text.
type Documents interface {
	Translate(ctx context.Context, upload document.Upload, target string) (document.TranslateResult, error)
	Correct(ctx context.Context, upload document.Upload, sourceLanguage string) (document.CorrectResult, error)
}

// Uploads stores files permanently for /upload-pdf.
type Uploads interface {
	SaveUpload(filename string, r io.Reader) (storage.StoredFile, error)
}

type Deps struct {
	Documents Documents
	Uploads   Uploads
	Ledger    db.Ledger
	Languages []translation.LanguageOption
}

type Server struct {
	docs      Documents
	uploads   Uploads
	ledger    db.Ledger
	languages []translation.LanguageOption
	logger    zerolog.Logger
	opts      Options
}

// withDefaults fills zero fields. The write timeout has to cover every chunk
// of a long translation.
func (o Options) withDefaults() Options {
	o.Host = strings.TrimSpace(o.Host)
	if o.Host == "" {
		o.Host = "0.0.0.0"
	}
	if o.Port <= 0 {
		o.Port = 5000
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 30 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Minute
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	return o
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	var ledger db.Ledger = db.NopLedger{}
	if deps.Ledger != nil {
		ledger = deps.Ledger
	}
	return &Server{
		docs:      deps.Documents,
		uploads:   deps.Uploads,
		ledger:    ledger,
		languages: deps.Languages,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.docs == nil || s.uploads == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.newEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Int64("max_upload_bytes", s.opts.MaxUploadBytes).Msg("pdfdesk server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("pdfdesk server stopped")
	return nil
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:     true,
		LogURI:        true,
		LogMethod:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogRequestID:  true,
		LogError:      true,
		LogValuesFunc: s.logRequest,
	}))

	uploadLimit := middleware.BodyLimit(strconv.FormatInt(s.opts.MaxUploadBytes, 10) + "B")

	e.GET("/", s.handleRoot)
	e.GET("/healthz", s.handleHealth)
	e.GET("/languages", s.handleLanguages)
	e.POST("/translate-pdf", s.handleTranslatePDF, uploadLimit)
	e.POST("/correct-text", s.handleCorrectText, uploadLimit)
	e.POST("/upload-pdf", s.handleUploadPDF, uploadLimit)

	return e
}

func (s *Server) logRequest(_ echo.Context, v middleware.RequestLoggerValues) error {
	event, msg := s.logger.Info(), "http request"
	if v.Error != nil || v.Status >= http.StatusInternalServerError {
		event, msg = s.logger.Error().Err(v.Error), "http request failed"
	}
	event.
		Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Str("remote_ip", v.RemoteIP).
		Str("request_id", v.RequestID).
		Msg(msg)
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := document.MsgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled handler error")
	}

	if status >= http.StatusInternalServerError {
		message = document.MsgInternal
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = fail(c, status, message)
}
