package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"podstore/internal/domain/model"
	"podstore/internal/infra/paypal"
	"podstore/internal/infra/printful"
	"podstore/internal/store"
	"podstore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks / Fakes
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	total, _ := args.Get(1).(int64)
	return orders, total, args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order, items []model.OrderItem) (int64, error) {
	args := m.Called(ctx, order, items)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) SetFulfillment(ctx context.Context, orderID int64, fulfillmentOrderID string) error {
	args := m.Called(ctx, orderID, fulfillmentOrderID)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (model.Order, bool, error) {
	args := m.Called(ctx, paypalOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type FailureRepoMock struct{ mock.Mock }

func (m *FailureRepoMock) Create(ctx context.Context, failure model.FulfillmentFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}

func (m *FailureRepoMock) ListUnresolved(ctx context.Context, limit int) ([]model.FulfillmentFailure, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.FulfillmentFailure)
	return items, args.Error(1)
}

func (m *FailureRepoMock) MarkResolved(ctx context.Context, failureID int64) error {
	args := m.Called(ctx, failureID)
	return args.Error(0)
}

// 決済フェイク。呼び出し回数と渡された合計金額を記録する。
type paymentFake struct {
	createID   string
	createErr  error
	capture    paypal.CaptureResult
	captureErr error

	createCalls  int
	captureCalls int
	lastTotal    int64
}

func (f *paymentFake) CreateOrder(ctx context.Context, totalCents int64) (string, error) {
	f.createCalls++
	f.lastTotal = totalCents
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *paymentFake) CaptureOrder(ctx context.Context, paypalOrderID string) (paypal.CaptureResult, error) {
	f.captureCalls++
	return f.capture, f.captureErr
}

// フルフィルメントフェイク。errsを呼び出しごとに消費し、尽きたら成功する。
type fulfillmentFake struct {
	id   string
	errs []error

	calls   int
	lastReq printful.OrderRequest
}

func (f *fulfillmentFake) SubmitOrder(ctx context.Context, req printful.OrderRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.id, nil
}

// =====================
// Helpers
// =====================

var checkoutShirt = model.Product{
	ID:        1,
	Name:      "Classic White T-Shirt",
	Price:     5000,
	VariantID: 101,
}

func validShipping() usecase.StartCheckoutInput {
	return usecase.StartCheckoutInput{
		FullName:   "Taro Yamada",
		Address:    "1-2-3 Shibuya",
		City:       "Tokyo",
		PostalCode: "150-0002",
		Country:    "JP",
	}
}

func completedCapture() paypal.CaptureResult {
	return paypal.CaptureResult{
		OrderID:     "PP-1",
		CaptureID:   "CAP-1",
		Status:      "COMPLETED",
		PayerEmail:  "taro@example.com",
		AmountValue: "113.00",
	}
}

func persistedOrder() model.Order {
	return model.Order{
		ID:              1,
		UserID:          "user-1",
		Status:          model.OrderStatusPaid,
		PayPalOrderID:   "PP-1",
		PayPalCaptureID: "CAP-1",
		Subtotal:        10000,
		ShippingFee:     500,
		Tax:             800,
		TotalAmount:     11300,
	}
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr),
			"error %q should contain %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, wantStatus int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, wantStatus, he.Status)
	}
}

// =====================
// ComputeTotals
// =====================

func TestComputeTotals(t *testing.T) {
	uc := usecase.NewCheckoutUsecase(nil, nil, nil, nil, nil, nil, 500, 800)

	shipping, tax, total := uc.ComputeTotals(10000)
	assert.Equal(t, int64(500), shipping)
	assert.Equal(t, int64(800), tax)
	assert.Equal(t, int64(11300), total)
}

// 空カート相当。送料も税も0
func TestComputeTotals_ZeroSubtotal(t *testing.T) {
	uc := usecase.NewCheckoutUsecase(nil, nil, nil, nil, nil, nil, 500, 800)

	shipping, tax, total := uc.ComputeTotals(0)
	assert.Equal(t, int64(0), shipping)
	assert.Equal(t, int64(0), tax)
	assert.Equal(t, int64(0), total)
}

// 税は四捨五入（12345 * 8% = 987.6 → 988）
func TestComputeTotals_TaxRounding(t *testing.T) {
	uc := usecase.NewCheckoutUsecase(nil, nil, nil, nil, nil, nil, 500, 800)

	_, tax, _ := uc.ComputeTotals(12345)
	assert.Equal(t, int64(988), tax)
}

// =====================
// StartCheckout
// =====================

func TestStartCheckout_Unauthorized(t *testing.T) {
	carts := store.NewCartStore()
	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), &paymentFake{}, &fulfillmentFake{}, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "", "sess-1", validShipping())
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestStartCheckout_ShippingValidation(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 1, nil)
	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), &paymentFake{}, &fulfillmentFake{}, 500, 800)

	in := validShipping()
	in.PostalCode = "   "
	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", in)
	assertErrContains(t, err, "postal_code is required")
}

// 空カートではチェックアウトを開始できない
func TestStartCheckout_EmptyCart(t *testing.T) {
	payment := &paymentFake{createID: "PP-1"}
	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), payment, &fulfillmentFake{}, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assertErrContains(t, err, "cart empty")
	assert.Equal(t, 0, payment.createCalls)
}

func TestStartCheckout_CreatesPayPalOrderWithTotal(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 2, nil)

	payment := &paymentFake{createID: "PP-1"}
	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), payment, &fulfillmentFake{}, 500, 800)

	out, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)
	assert.Equal(t, "PP-1", out.PayPalOrderID)
	assert.Equal(t, int64(10000), out.Subtotal)
	assert.Equal(t, int64(500), out.ShippingFee)
	assert.Equal(t, int64(800), out.Tax)
	assert.Equal(t, int64(11300), out.Total)
	assert.Equal(t, int64(11300), payment.lastTotal)
}

// PayPal注文作成が失敗してもカートは失われず再試行できる
func TestStartCheckout_PaymentProviderErrorKeepsCart(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 1, nil)

	payment := &paymentFake{createErr: errors.New("paypal down")}
	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), payment, &fulfillmentFake{}, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assertHTTPStatus(t, err, http.StatusBadGateway)
	assert.Len(t, carts.Get("sess-1").Items, 1)

	// 復旧後の再試行は成功する
	payment.createErr = nil
	payment.createID = "PP-2"
	out, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)
	assert.Equal(t, "PP-2", out.PayPalOrderID)
}

// =====================
// Capture
// =====================

func TestCapture_FullFlow(t *testing.T) {
	carts := store.NewCartStore()
	designs := store.NewDesignStore()
	carts.AddItem("sess-1", checkoutShirt, 2, []model.CustomizationElement{
		{ID: "img-1", Kind: model.ElementKindImage, Content: "https://example.com/a.png"},
	})
	designs.AddElement("sess-1", 1, model.ElementKindText, "draft")

	orders := new(OrderRepoMock)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(persistedOrder(), nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{ProductID: 1, VariantID: 101, ProductNameSnapshot: checkoutShirt.Name, UnitPriceSnapshot: 5000, Quantity: 2},
	}, nil)

	payment := &paymentFake{createID: "PP-1", capture: completedCapture()}
	fulfillment := &fulfillmentFake{id: "PF-9"}

	uc := usecase.NewCheckoutUsecase(carts, designs,
		orders, new(FailureRepoMock), payment, fulfillment, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)

	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, int64(11300), out.TotalAmount)

	// フルフィルメント注文にカスタマイズ画像が渡る
	assert.Equal(t, 1, fulfillment.calls)
	assert.Len(t, fulfillment.lastReq.Items, 1)
	assert.Equal(t, int64(101), fulfillment.lastReq.Items[0].VariantID)
	assert.Len(t, fulfillment.lastReq.Items[0].Files, 1)
	assert.Equal(t, "https://example.com/a.png", fulfillment.lastReq.Items[0].Files[0].URL)
	assert.Equal(t, "Taro Yamada", fulfillment.lastReq.Recipient.Name)

	// 確定後はカートとドラフトが破棄される
	assert.Empty(t, carts.Get("sess-1").Items)
	assert.Empty(t, designs.List("sess-1", 1))

	orders.AssertExpectations(t)
}

// 同じPayPal注文IDで何度キャプチャしてもフルフィルメント注文は1つだけ。
// 確定後は進行状態が片付けられ、2回目はDBの注文から冪等に返る
func TestCapture_Idempotent(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 2, nil)

	submitted := persistedOrder()
	submitted.Status = model.OrderStatusFulfillmentSubmitted

	orders := new(OrderRepoMock)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(persistedOrder(), nil)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(submitted, true, nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	payment := &paymentFake{createID: "PP-1", capture: completedCapture()}
	fulfillment := &fulfillmentFake{id: "PF-9"}

	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		orders, new(FailureRepoMock), payment, fulfillment, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)

	first, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)

	second, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, payment.captureCalls)
	assert.Equal(t, 1, fulfillment.calls)
	orders.AssertNumberOfCalls(t, "Create", 1)

	// 確定後の進行状態は残らず、2回目はDB経由
	orders.AssertCalled(t, "FindByPayPalOrderID", mock.Anything, "PP-1")
}

// キャプチャがCOMPLETED以外ならHTTPが成功していても決済失敗扱い。
// 状態は進まず、カートも残るので再試行できる
func TestCapture_NotCompleted(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 2, nil)

	orders := new(OrderRepoMock)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(persistedOrder(), nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	declined := completedCapture()
	declined.Status = "DECLINED"
	payment := &paymentFake{createID: "PP-1", capture: declined}
	fulfillment := &fulfillmentFake{id: "PF-9"}

	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		orders, new(FailureRepoMock), payment, fulfillment, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)

	_, err = uc.Capture(context.Background(), "user-1", "PP-1")
	assertHTTPStatus(t, err, http.StatusPaymentRequired)
	assertErrContains(t, err, "payment not completed")

	// 注文は作られず、フルフィルメントにも進まない
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, fulfillment.calls)
	assert.Len(t, carts.Get("sess-1").Items, 1)

	// 承認し直した後の再キャプチャは成功する
	payment.capture = completedCapture()
	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, 1, fulfillment.calls)
}

// キャプチャ後のフルフィルメント失敗。リコンサイル記録を残し、
// 決済エラーとは別のメッセージで返す。再試行で再キャプチャはしない
func TestCapture_FulfillmentFailureAfterPayment(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 2, nil)

	orders := new(OrderRepoMock)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(persistedOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusFulfillmentFailed).Return(nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	failures := new(FailureRepoMock)
	failures.On("Create", mock.Anything, mock.MatchedBy(func(f model.FulfillmentFailure) bool {
		return f.OrderID == 1 && f.PayPalCaptureID == "CAP-1" && f.Reason != ""
	})).Return(nil)

	payment := &paymentFake{createID: "PP-1", capture: completedCapture()}
	fulfillment := &fulfillmentFake{id: "PF-9", errs: []error{errors.New("printful down")}}

	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		orders, failures, payment, fulfillment, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)

	_, err = uc.Capture(context.Background(), "user-1", "PP-1")
	assertHTTPStatus(t, err, http.StatusBadGateway)
	assertErrContains(t, err, "payment captured, fulfillment pending")

	failures.AssertExpectations(t)
	orders.AssertCalled(t, "UpdateStatus", mock.Anything, int64(1), model.OrderStatusFulfillmentFailed)

	// 再試行はフルフィルメント送信だけをやり直す
	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, 1, payment.captureCalls)
	assert.Equal(t, 2, fulfillment.calls)
	orders.AssertNumberOfCalls(t, "Create", 1)
}

// 他人のチェックアウトは存在しない扱い
func TestCapture_OtherUsersCheckout(t *testing.T) {
	carts := store.NewCartStore()
	carts.AddItem("sess-1", checkoutShirt, 1, nil)

	payment := &paymentFake{createID: "PP-1", capture: completedCapture()}
	uc := usecase.NewCheckoutUsecase(carts, store.NewDesignStore(),
		new(OrderRepoMock), new(FailureRepoMock), payment, &fulfillmentFake{}, 500, 800)

	_, err := uc.StartCheckout(context.Background(), "user-1", "sess-1", validShipping())
	assert.NoError(t, err)

	_, err = uc.Capture(context.Background(), "user-2", "PP-1")
	assertHTTPStatus(t, err, http.StatusNotFound)
	assert.Equal(t, 0, payment.captureCalls)
}

// 再起動などで進行状態が無くても、確定済み注文はDBから冪等に返す
func TestCapture_ReplayFromDB(t *testing.T) {
	order := persistedOrder()
	order.Status = model.OrderStatusFulfillmentSubmitted

	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(order, true, nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, new(FailureRepoMock), &paymentFake{}, &fulfillmentFake{}, 500, 800)

	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
}

// 決済済み・フルフィルメント未送信（PAID）のまま進行状態が失われた注文は、
// DBのスナップショット明細からフルフィルメント注文を組み直して再送する。
// 成功として握りつぶさない
func TestCapture_ReplayPaidOrderResubmitsFulfillment(t *testing.T) {
	paid := persistedOrder()
	paid.ShipFullName = "Taro Yamada"

	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(paid, true, nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{
			ProductID:           1,
			VariantID:           101,
			ProductNameSnapshot: checkoutShirt.Name,
			UnitPriceSnapshot:   5000,
			Quantity:            2,
			CustomizationJSON:   `[{"id":"img-1","kind":"image","content":"https://example.com/a.png"}]`,
		},
	}, nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(paid, nil)

	payment := &paymentFake{}
	fulfillment := &fulfillmentFake{id: "PF-9"}
	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, new(FailureRepoMock), payment, fulfillment, 500, 800)

	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)

	// 決済は確定済みなので再キャプチャしない。再送するのはフルフィルメントだけ
	assert.Equal(t, 0, payment.captureCalls)
	assert.Equal(t, 1, fulfillment.calls)
	assert.Len(t, fulfillment.lastReq.Items, 1)
	assert.Equal(t, int64(101), fulfillment.lastReq.Items[0].VariantID)
	assert.Len(t, fulfillment.lastReq.Items[0].Files, 1)
	assert.Equal(t, "https://example.com/a.png", fulfillment.lastReq.Items[0].Files[0].URL)
	assert.Equal(t, paid.ShipFullName, fulfillment.lastReq.Recipient.Name)

	orders.AssertCalled(t, "SetFulfillment", mock.Anything, int64(1), "PF-9")
}

// 再送も失敗するならリコンサイル記録を残し、成功扱いにしない
func TestCapture_ReplayPaidOrderFulfillmentStillDown(t *testing.T) {
	paid := persistedOrder()

	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(paid, true, nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{ProductID: 1, VariantID: 101, UnitPriceSnapshot: 5000, Quantity: 2},
	}, nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(paid, nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusFulfillmentFailed).Return(nil)

	failures := new(FailureRepoMock)
	failures.On("Create", mock.Anything, mock.MatchedBy(func(f model.FulfillmentFailure) bool {
		return f.OrderID == 1 && f.PayPalCaptureID == "CAP-1"
	})).Return(nil)

	fulfillment := &fulfillmentFake{id: "PF-9", errs: []error{errors.New("printful down")}}
	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, failures, &paymentFake{}, fulfillment, 500, 800)

	_, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assertHTTPStatus(t, err, http.StatusBadGateway)
	assertErrContains(t, err, "payment captured, fulfillment pending")
	failures.AssertExpectations(t)
}

// FULFILLMENT_FAILEDのまま進行状態が失われた注文も同じエンドポイントで再送できる
func TestCapture_ReplayFailedOrderRetries(t *testing.T) {
	failed := persistedOrder()
	failed.Status = model.OrderStatusFulfillmentFailed

	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(failed, true, nil)
	orders.On("ListItemsByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{ProductID: 1, VariantID: 101, UnitPriceSnapshot: 5000, Quantity: 2},
	}, nil)
	orders.On("SetFulfillment", mock.Anything, int64(1), "PF-9").Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).Return(failed, nil)

	fulfillment := &fulfillmentFake{id: "PF-9"}
	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, new(FailureRepoMock), &paymentFake{}, fulfillment, 500, 800)

	out, err := uc.Capture(context.Background(), "user-1", "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, 1, fulfillment.calls)
}

// DBの注文が他人のものなら存在しない扱い
func TestCapture_ReplayOtherUsersOrder(t *testing.T) {
	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-1").Return(persistedOrder(), true, nil)

	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, new(FailureRepoMock), &paymentFake{}, &fulfillmentFake{}, 500, 800)

	_, err := uc.Capture(context.Background(), "user-2", "PP-1")
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCapture_UnknownPayPalOrderID(t *testing.T) {
	orders := new(OrderRepoMock)
	orders.On("FindByPayPalOrderID", mock.Anything, "PP-unknown").Return(model.Order{}, false, nil)

	uc := usecase.NewCheckoutUsecase(store.NewCartStore(), store.NewDesignStore(),
		orders, new(FailureRepoMock), &paymentFake{}, &fulfillmentFake{}, 500, 800)

	_, err := uc.Capture(context.Background(), "user-1", "PP-unknown")
	assertHTTPStatus(t, err, http.StatusNotFound)
}
