package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"podstore/internal/domain/model"
	"podstore/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_ListProducts(t *testing.T) {
	source := &sourceFake{products: map[int64]model.Product{
		checkoutShirt.ID: checkoutShirt,
	}}
	uc := usecase.NewCatalogUsecase(source)

	out, err := uc.ListProducts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	assert.Len(t, out.Items, 1)
}

// カタログ障害はクライアントエラーではなく502
func TestCatalog_ListProducts_SourceDown(t *testing.T) {
	uc := usecase.NewCatalogUsecase(&sourceFake{err: errors.New("printful down")})

	_, err := uc.ListProducts(context.Background())
	assertHTTPStatus(t, err, http.StatusBadGateway)
}

func TestCatalog_GetProductDetail(t *testing.T) {
	source := &sourceFake{products: map[int64]model.Product{
		checkoutShirt.ID: checkoutShirt,
	}}
	uc := usecase.NewCatalogUsecase(source)

	p, err := uc.GetProductDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, checkoutShirt, p)
}

func TestCatalog_GetProductDetail_InvalidID(t *testing.T) {
	uc := usecase.NewCatalogUsecase(&sourceFake{})

	_, err := uc.GetProductDetail(context.Background(), 0)
	assertErrContains(t, err, "invalid product id")
}

func TestCatalog_GetProductDetail_NotFound(t *testing.T) {
	uc := usecase.NewCatalogUsecase(&sourceFake{products: map[int64]model.Product{}})

	_, err := uc.GetProductDetail(context.Background(), 999)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
