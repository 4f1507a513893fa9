package handler

import (
	"net/http"
	"strings"

	"podstore/internal/middleware"

	"github.com/labstack/echo/v4"
)

// /auth/me のHTTP。
// セッションストリームの代わりに「今のユーザー」を1発で返す。
type AuthHandler struct {
	verifier middleware.TokenVerifier
}

func NewAuthHandler(verifier middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{verifier: verifier}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/auth/me", h.me)
}

type MeResponse struct {
	User *MeUser `json:"user"`
}

type MeUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// 未ログインでも200で user:null を返す（クライアントが出し分ける）。
func (h *AuthHandler) me(c echo.Context) error {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" || h.verifier == nil {
		return c.JSON(http.StatusOK, MeResponse{User: nil})
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.JSON(http.StatusOK, MeResponse{User: nil})
	}

	uid, email, err := h.verifier.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
	if err != nil || uid == "" {
		return c.JSON(http.StatusOK, MeResponse{User: nil})
	}

	return c.JSON(http.StatusOK, MeResponse{User: &MeUser{UserID: uid, Email: email}})
}
