package handler

import (
	"net/http"
	"strconv"

	"podstore/internal/config"
	"podstore/internal/middleware"
	"podstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /designs（カスタマイザーのドラフト）のHTTP
type DesignHandler struct {
	uc *usecase.CustomizerUsecase
}

func NewDesignHandler(uc *usecase.CustomizerUsecase) *DesignHandler {
	return &DesignHandler{uc: uc}
}

type AddElementRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type MoveElementRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

func (h *DesignHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, verifier middleware.TokenVerifier) {
	g := e.Group("/designs")
	g.Use(middleware.CartSession(cfg, verifier))

	g.GET("/:productId", h.get)
	g.POST("/:productId/elements", h.addElement)
	g.PATCH("/:productId/elements/:elementId", h.moveElement)
	g.DELETE("/:productId/elements/:elementId", h.removeElement)
	g.DELETE("/:productId", h.discard)
}

func (h *DesignHandler) get(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session required"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	out, err := h.uc.GetDesign(c.Request().Context(), sessionID, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DesignHandler) addElement(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session required"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req AddElementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddElement(c.Request().Context(), sessionID, productID, usecase.AddElementInput{
		Kind:    req.Kind,
		Content: req.Content,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *DesignHandler) moveElement(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session required"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req MoveElementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.MoveElement(c.Request().Context(), sessionID, productID, c.Param("elementId"), usecase.MoveElementInput{
		X:        req.X,
		Y:        req.Y,
		Rotation: req.Rotation,
		Scale:    req.Scale,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DesignHandler) removeElement(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session required"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	out, err := h.uc.RemoveElement(c.Request().Context(), sessionID, productID, c.Param("elementId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DesignHandler) discard(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session required"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	if err := h.uc.DiscardDesign(c.Request().Context(), sessionID, productID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
