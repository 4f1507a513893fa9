package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
	"podstore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReconciliation_ListUnresolved(t *testing.T) {
	failures := new(FailureRepoMock)
	failures.On("ListUnresolved", mock.Anything, 100).Return([]model.FulfillmentFailure{
		{ID: 1, OrderID: 7, PayPalCaptureID: "CAP-1", Reason: "printful down"},
	}, nil)

	uc := usecase.NewReconciliationUsecase(failures)

	out, err := uc.ListUnresolved(context.Background())
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(7), out.Items[0].OrderID)
}

func TestReconciliation_Resolve(t *testing.T) {
	failures := new(FailureRepoMock)
	failures.On("MarkResolved", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewReconciliationUsecase(failures)

	assert.NoError(t, uc.Resolve(context.Background(), 1))
	failures.AssertExpectations(t)
}

func TestReconciliation_Resolve_NotFound(t *testing.T) {
	failures := new(FailureRepoMock)
	failures.On("MarkResolved", mock.Anything, int64(42)).Return(repo.ErrNotFound)

	uc := usecase.NewReconciliationUsecase(failures)

	err := uc.Resolve(context.Background(), 42)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestReconciliation_Resolve_InvalidID(t *testing.T) {
	uc := usecase.NewReconciliationUsecase(new(FailureRepoMock))

	err := uc.Resolve(context.Background(), 0)
	assertErrContains(t, err, "invalid id")
}
