package repository

import (
	"context"
	"errors"

	"podstore/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error)
	// 注文＋明細スナップショットを作成して注文IDを返す。
	Create(ctx context.Context, order model.Order, items []model.OrderItem) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// フルフィルメント送信成功時にIDとステータスをまとめて更新。
	SetFulfillment(ctx context.Context, orderID int64, fulfillmentOrderID string) error

	// 同じPayPal注文IDなら同じ注文を返す（二重確定防止）。
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (model.Order, bool, error)
	ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
