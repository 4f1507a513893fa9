package handler

import (
	"net/http"
	"strconv"

	"podstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /internal 以下のオペレーター向けHTTP。
// リバースプロキシで外部には公開しないこと。
type OpsHandler struct {
	uc *usecase.ReconciliationUsecase
}

func NewOpsHandler(uc *usecase.ReconciliationUsecase) *OpsHandler {
	return &OpsHandler{uc: uc}
}

func (h *OpsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/internal")

	g.GET("/fulfillment-failures", h.listFailures)
	g.POST("/fulfillment-failures/:id/resolve", h.resolve)
}

func (h *OpsHandler) listFailures(c echo.Context) error {
	out, err := h.uc.ListUnresolved(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OpsHandler) resolve(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Resolve(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
