package handler

import (
	"net/http"

	"podstore/internal/config"
	"podstore/internal/middleware"

	"github.com/labstack/echo/v4"
)

// ゲストセッションの発行。カート・カスタマイザーはこのトークンで使う。
type SessionHandler struct {
	cfg config.Config
}

func NewSessionHandler(cfg config.Config) *SessionHandler {
	return &SessionHandler{cfg: cfg}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/session", h.create)
}

type SessionResponse struct {
	SessionToken string `json:"session_token"`
}

func (h *SessionHandler) create(c echo.Context) error {
	token, _, err := middleware.IssueSessionToken(h.cfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, SessionResponse{SessionToken: token})
}
