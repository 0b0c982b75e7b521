package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *MeetingHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *MeetingHandler) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	meetings := v1.Group("/meetings")
	meetings.POST("/process", rt.meetingHandler.Process)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
