package handler

import (
	"net/http"

	"podstore/internal/middleware"
	"podstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ミドルウェアがcontextへ入れたセッションIDを取り出す。
func getSessionIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxSessionIDKey)
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// 認証済みユーザーID（未ログインなら空）。
func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
