package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
)

type OrderUsecase struct {
	orders repo.OrderRepository
}

func NewOrderUsecase(orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders}
}

type OrderItemOutput struct {
	ProductID     int64                        `json:"product_id"`
	VariantID     int64                        `json:"variant_id"`
	Name          string                       `json:"name"`
	Price         int64                        `json:"price"`
	Quantity      int64                        `json:"quantity"`
	Customization []model.CustomizationElement `json:"customization"`
}

type OrderOutput struct {
	ID                 int64              `json:"id"`
	Status             string             `json:"status"`
	FulfillmentOrderID string             `json:"fulfillment_order_id,omitempty"`
	Shipping           model.ShippingInfo `json:"shipping"`
	Subtotal           int64              `json:"subtotal"`
	ShippingFee        int64              `json:"shipping_fee"`
	Tax                int64              `json:"tax"`
	TotalAmount        int64              `json:"total_amount"`
	CreatedAt          time.Time          `json:"created_at"`
	Items              []OrderItemOutput  `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	if userID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	orders, _, err := u.orders.ListByUserID(ctx, userID, 1, 50)
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.orders.ListItemsByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}

	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID int64) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orders.ListItemsByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		var customization []model.CustomizationElement
		if it.CustomizationJSON != "" {
			_ = json.Unmarshal([]byte(it.CustomizationJSON), &customization)
		}
		outItems = append(outItems, OrderItemOutput{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Name:          it.ProductNameSnapshot,
			Price:         it.UnitPriceSnapshot,
			Quantity:      it.Quantity,
			Customization: customization,
		})
	}

	return OrderOutput{
		ID:                 o.ID,
		Status:             string(o.Status),
		FulfillmentOrderID: o.FulfillmentOrderID,
		Shipping: model.ShippingInfo{
			FullName:   o.ShipFullName,
			Address:    o.ShipAddress,
			City:       o.ShipCity,
			PostalCode: o.ShipPostalCode,
			Country:    o.ShipCountry,
		},
		Subtotal:    o.Subtotal,
		ShippingFee: o.ShippingFee,
		Tax:         o.Tax,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		Items:       outItems,
	}
}
