package usecase

import (
	"context"
	"net/http"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
)

// カタログの取得元。Printfulクライアントかスタティックカタログ。
type ProductSource interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, productID int64) (model.Product, error)
}

// CatalogUsecase は /products の業務ロジックです。
type CatalogUsecase struct {
	source ProductSource
}

func NewCatalogUsecase(source ProductSource) *CatalogUsecase {
	return &CatalogUsecase{source: source}
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int             `json:"total"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context) (ProductListOutput, error) {
	items, err := u.source.List(ctx)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	return ProductListOutput{Items: items, Total: len(items)}, nil
}

// 存在しない商品はnot found（エラートーストではなく404画面にする）。
func (u *CatalogUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.source.Get(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	return p, nil
}
