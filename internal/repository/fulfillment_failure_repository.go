package repository

import (
	"context"

	"podstore/internal/domain/model"
)

// リコンサイル記録の保存・一覧の約束。
type FulfillmentFailureRepository interface {
	Create(ctx context.Context, failure model.FulfillmentFailure) error
	ListUnresolved(ctx context.Context, limit int) ([]model.FulfillmentFailure, error)
	MarkResolved(ctx context.Context, failureID int64) error
}
