package usecase

import (
	"context"
	"testing"
	"time"

	"podstore/internal/domain/model"
	"podstore/internal/infra/paypal"
	"podstore/internal/store"

	"github.com/stretchr/testify/assert"
)

type stubPayment struct{ orderID string }

func (s *stubPayment) CreateOrder(ctx context.Context, totalCents int64) (string, error) {
	return s.orderID, nil
}

func (s *stubPayment) CaptureOrder(ctx context.Context, paypalOrderID string) (paypal.CaptureResult, error) {
	return paypal.CaptureResult{}, nil
}

// 保持期限を超えた進行状態はStartCheckoutのたびに掃除される
func TestStartCheckout_PrunesExpiredSessions(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", model.Product{ID: 1, Name: "Tee", Price: 5000, VariantID: 101}, 1, nil)

	uc := NewCheckoutUsecase(carts, store.NewDesignStore(),
		nil, nil, &stubPayment{orderID: "PP-new"}, nil, 500, 800)

	uc.sessions["PP-old"] = &checkoutSession{
		status:    model.CheckoutStatusPaymentOrderCreated,
		userID:    "user-1",
		createdAt: time.Now().Add(-2 * time.Hour),
	}
	uc.sessions["PP-recent"] = &checkoutSession{
		status:    model.CheckoutStatusPaymentOrderCreated,
		userID:    "user-1",
		createdAt: time.Now().Add(-time.Minute),
	}

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", StartCheckoutInput{
		FullName:   "Taro Yamada",
		Address:    "1-2-3 Chuo",
		City:       "Osaka",
		PostalCode: "530-0001",
		Country:    "JP",
	})
	assert.NoError(t, err)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	assert.NotContains(t, uc.sessions, "PP-old")
	assert.Contains(t, uc.sessions, "PP-recent")
	assert.Contains(t, uc.sessions, "PP-new")
}
