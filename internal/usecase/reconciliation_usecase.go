package usecase

import (
	"context"
	"net/http"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"

	log "github.com/sirupsen/logrus"
)

// ReconciliationUsecase はキャプチャ後フルフィルメント失敗の
// リコンサイル作業（オペレーター向け）です。
type ReconciliationUsecase struct {
	failures repo.FulfillmentFailureRepository
}

func NewReconciliationUsecase(failures repo.FulfillmentFailureRepository) *ReconciliationUsecase {
	return &ReconciliationUsecase{failures: failures}
}

type FailureListOutput struct {
	Items []model.FulfillmentFailure `json:"items"`
}

// 未解決の失敗一覧。古い順に最大100件。
func (u *ReconciliationUsecase) ListUnresolved(ctx context.Context) (FailureListOutput, error) {
	items, err := u.failures.ListUnresolved(ctx, 100)
	if err != nil {
		return FailureListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return FailureListOutput{Items: items}, nil
}

// 手動対応が終わった失敗を解決済みにする。
func (u *ReconciliationUsecase) Resolve(ctx context.Context, failureID int64) error {
	if failureID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.failures.MarkResolved(ctx, failureID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	log.WithFields(log.Fields{
		"failure_id": failureID,
	}).Info("fulfillment failure resolved")
	return nil
}
