package handler

import (
	"net/http"

	"podstore/internal/middleware"
	"podstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP。認証必須。
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type StartCheckoutRequest struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, verifier middleware.TokenVerifier) {
	g := e.Group("/checkout")
	g.Use(middleware.RequireUser(verifier))

	g.POST("", h.start)
	g.POST("/:paypalOrderId/capture", h.capture)
}

func (h *CheckoutHandler) start(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	sessionID, _ := getSessionIDFromContext(c)

	var req StartCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.StartCheckout(c.Request().Context(), userID, sessionID, usecase.StartCheckoutInput{
		FullName:   req.FullName,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) capture(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Capture(c.Request().Context(), userID, c.Param("paypalOrderId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
