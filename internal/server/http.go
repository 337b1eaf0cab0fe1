package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/internal/bot"
)

// HTTP runs the bot behind a webhook endpoint.
type HTTP struct {
	bot     *bot.Bot
	log     *zap.Logger
	token   string
	version string
	started time.Time
	echo    *echo.Echo
}

// NewHTTP builds the webhook transport. A non-empty token is required
// as a bearer token on the message endpoint; version is reported by
// /healthz.
func NewHTTP(b *bot.Bot, log *zap.Logger, token, version string) *HTTP {
	h := &HTTP{
		bot:     b,
		log:     log,
		token:   token,
		version: version,
		started: time.Now(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/api/v1/message", h.handleMessage)
	e.GET("/healthz", h.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.echo = e
	return h
}

// Handler exposes the underlying handler, mainly for tests.
func (h *HTTP) Handler() http.Handler { return h.echo }

// Start serves until Shutdown is called. A closed server is not an
// error.
func (h *HTTP) Start(addr string) error {
	err := h.echo.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (h *HTTP) Shutdown(ctx context.Context) error {
	return h.echo.Shutdown(ctx)
}

func (h *HTTP) handleMessage(c echo.Context) error {
	if h.token != "" {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		if auth != "Bearer "+h.token {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
	}

	var msg bot.Message
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed message"})
	}
	if msg.GroupID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "group_id is required"})
	}

	reply := h.bot.Handle(c.Request().Context(), &msg)
	if reply == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, newEnvelope(&msg, reply))
}
