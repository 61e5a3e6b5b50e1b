package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MCPPath is the streamable HTTP endpoint.
const MCPPath = "/mcp"

// MaxBodySize caps a single JSON-RPC request body.
const MaxBodySize = "2M"

const detectorContextKey = "detector"

// Unauthorized messages returned by the HTTP transport.
const (
	msgMissingAPIKey    = "Unauthorized: Missing or invalid API key"
	msgMissingAuthz     = "Unauthorized: Missing or invalid Authorization header"
	msgInvalidToken     = "Unauthorized: Invalid token"
	msgMethodNotAllowed = "Method not allowed."
)

// DetectorFactory builds a Detector bound to an API key supplied by the
// client.
type DetectorFactory func(apiKey string) Detector

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Detector serves every request when client keys are disabled.
	Detector Detector
	// NewDetector builds a per-request detector when EnableClientKey is set.
	NewDetector     DetectorFactory
	EnableClientKey bool
	// AuthToken, when set, is required as "Authorization: Bearer <token>".
	AuthToken string
	Logger    *slog.Logger
}

type httpHandler struct {
	cfg    HTTPConfig
	logger *slog.Logger
}

// NewHTTPServer returns an echo instance serving MCP over HTTP.
//
// Every POST is handled by a fresh Server, so no session state survives a
// request. GET and DELETE are answered with 405 because the transport offers
// no server-initiated stream and no sessions to terminate.
func NewHTTPServer(cfg HTTPConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &httpHandler{cfg: cfg, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(MaxBodySize))
	e.Use(requestLogger(logger))

	e.GET("/healthz", h.health)
	e.POST(MCPPath, h.handleMCP, h.authenticate)
	e.GET(MCPPath, h.methodNotAllowed, h.authenticate)
	e.DELETE(MCPPath, h.methodNotAllowed, h.authenticate)

	return e
}

// authenticate enforces the client API key and the bearer token. Both checks
// apply independently when both are configured.
func (h *httpHandler) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.cfg.EnableClientKey {
			key := strings.TrimSpace(c.QueryParam("key"))
			if key == "" {
				return h.unauthorized(c, msgMissingAPIKey)
			}
			c.Set(detectorContextKey, h.cfg.NewDetector(key))
		}

		if h.cfg.AuthToken != "" {
			token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok {
				return h.unauthorized(c, msgMissingAuthz)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.AuthToken)) != 1 {
				return h.unauthorized(c, msgInvalidToken)
			}
		}

		return next(c)
	}
}

func (h *httpHandler) unauthorized(c echo.Context, msg string) error {
	h.logger.Warn("rejected request", "reason", msg, "remote", c.RealIP())
	return c.JSON(http.StatusUnauthorized, errorResponse(nil, codeServerError, msg, ""))
}

func (h *httpHandler) handleMCP(c echo.Context) error {
	var req MCPRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(nil, codeParseError, "Parse error", err.Error()))
	}

	detector := h.cfg.Detector
	if d, ok := c.Get(detectorContextKey).(Detector); ok {
		detector = d
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	srv := New(detector, WithLogger(h.logger.With("request_id", requestID)))

	resp := srv.handleRequest(c.Request().Context(), &req)
	if resp == nil || req.isNotification() {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) methodNotAllowed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)
	return c.JSON(http.StatusMethodNotAllowed, errorResponse(nil, codeServerError, msgMethodNotAllowed, ""))
}

func (h *httpHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}
