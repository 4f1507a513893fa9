package usecase

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"podstore/internal/domain/model"
	"podstore/internal/infra/paypal"
	"podstore/internal/infra/printful"
	"podstore/internal/metrics"
	repo "podstore/internal/repository"
	"podstore/internal/store"

	log "github.com/sirupsen/logrus"
)

// 決済プロバイダの約束（本番はPayPalクライアント）。
type PaymentClient interface {
	CreateOrder(ctx context.Context, totalCents int64) (string, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (paypal.CaptureResult, error)
}

// フルフィルメントプロバイダの約束（本番はPrintfulクライアント）。
type FulfillmentClient interface {
	SubmitOrder(ctx context.Context, req printful.OrderRequest) (string, error)
}

// 放置されたチェックアウトの保持期限
const checkoutSessionTTL = time.Hour

// チェックアウト1回分の進行状態。PayPal注文IDで引く。
// capture済みの注文IDが二重にフルフィルメントへ進まないよう、
// ここで直線的な遷移だけを許す。
type checkoutSession struct {
	mu sync.Mutex

	status    model.CheckoutStatus
	userID    string
	sessionID string
	shipping  model.ShippingInfo
	items     []model.CartItem
	createdAt time.Time

	subtotal    int64
	shippingFee int64
	tax         int64
	total       int64

	// キャプチャ成功後に確定する
	orderID int64
}

// CheckoutUsecase はチェックアウトの直線ステートマシンです。
/// 遷移: Idle → ShippingFormValid → PaymentOrderCreated → PaymentCaptured
//      → FulfillmentSubmitted → Cleared。失敗はどの段階でも状態を進めない。
type CheckoutUsecase struct {
	carts       *store.CartStore
	designs     *store.DesignStore
	orders      repo.OrderRepository
	failures    repo.FulfillmentFailureRepository
	payment     PaymentClient
	fulfillment FulfillmentClient

	shippingFeeCents int64
	taxRateBP        int64

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutUsecase(
	carts *store.CartStore,
	designs *store.DesignStore,
	orders repo.OrderRepository,
	failures repo.FulfillmentFailureRepository,
	payment PaymentClient,
	fulfillment FulfillmentClient,
	shippingFeeCents int64,
	taxRateBP int64,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		carts:            carts,
		designs:          designs,
		orders:           orders,
		failures:         failures,
		payment:          payment,
		fulfillment:      fulfillment,
		shippingFeeCents: shippingFeeCents,
		taxRateBP:        taxRateBP,
		sessions:         make(map[string]*checkoutSession),
	}
}

type StartCheckoutInput struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
}

type StartCheckoutOutput struct {
	PayPalOrderID string `json:"paypal_order_id"`
	Subtotal      int64  `json:"subtotal"`
	ShippingFee   int64  `json:"shipping_fee"`
	Tax           int64  `json:"tax"`
	Total         int64  `json:"total"`
}

// 小計から送料・税・合計を出す。
// 送料は小計>0のときだけ。税は小計にのみ掛ける（送料には掛けない）。
func (u *CheckoutUsecase) ComputeTotals(subtotal int64) (shippingFee int64, tax int64, total int64) {
	if subtotal > 0 {
		shippingFee = u.shippingFeeCents
	}
	// basis points、四捨五入
	tax = (subtotal*u.taxRateBP + 5000) / 10000
	return shippingFee, tax, subtotal + shippingFee + tax
}

// チェックアウト開始。配送先を検証し、合計額でPayPal注文を作る。
// 失敗してもカートと配送先は失われない（再試行できる）。
func (u *CheckoutUsecase) StartCheckout(ctx context.Context, userID string, cartSessionID string, in StartCheckoutInput) (StartCheckoutOutput, error) {
	if userID == "" {
		return StartCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	shipping, err := validateShipping(in)
	if err != nil {
		return StartCheckoutOutput{}, err
	}

	// 空カートはフォームを出さずカートへ戻す
	cart := u.carts.Get(cartSessionID)
	if len(cart.Items) == 0 {
		return StartCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	sess := &checkoutSession{
		status:    model.CheckoutStatusIdle,
		userID:    userID,
		sessionID: cartSessionID,
		shipping:  shipping,
		items:     cart.Items,
		createdAt: time.Now(),
	}
	if err := sess.advance(model.CheckoutStatusShippingFormValid); err != nil {
		return StartCheckoutOutput{}, err
	}

	sess.subtotal = cart.TotalPrice()
	sess.shippingFee, sess.tax, sess.total = u.ComputeTotals(sess.subtotal)

	paypalOrderID, err := u.payment.CreateOrder(ctx, sess.total)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("paypal order creation failed")
		return StartCheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	if err := sess.advance(model.CheckoutStatusPaymentOrderCreated); err != nil {
		return StartCheckoutOutput{}, err
	}

	u.mu.Lock()
	// 放置されたチェックアウトを溜め込まない。キャプチャ済みの注文はDBから組み直せる
	now := time.Now()
	for id, old := range u.sessions {
		if now.Sub(old.createdAt) > checkoutSessionTTL {
			delete(u.sessions, id)
		}
	}
	u.sessions[paypalOrderID] = sess
	u.mu.Unlock()

	return StartCheckoutOutput{
		PayPalOrderID: paypalOrderID,
		Subtotal:      sess.subtotal,
		ShippingFee:   sess.shippingFee,
		Tax:           sess.tax,
		Total:         sess.total,
	}, nil
}

// ユーザーがPayPalウィジェットで承認した後のキャプチャ。
// 同じPayPal注文IDで何度呼んでもフルフィルメント注文は1つしか作られない。
func (u *CheckoutUsecase) Capture(ctx context.Context, userID string, paypalOrderID string) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(paypalOrderID) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid paypal order id")
	}

	u.mu.Lock()
	sess, ok := u.sessions[paypalOrderID]
	u.mu.Unlock()

	if !ok {
		// プロセス再起動後はDBの注文から進行状態を組み直す
		rebuilt, err := u.rebuildSession(ctx, userID, paypalOrderID)
		if err != nil {
			return OrderOutput{}, err
		}

		u.mu.Lock()
		if existing, found := u.sessions[paypalOrderID]; found {
			sess = existing
		} else {
			u.sessions[paypalOrderID] = rebuilt
			sess = rebuilt
		}
		u.mu.Unlock()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// 他人のチェックアウトは「存在しない扱い」
	if sess.userID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	// 既にフルフィルメントまで済んでいるなら既存注文を返すだけ
	if sess.status == model.CheckoutStatusFulfillmentSubmitted || sess.status.IsTerminal() {
		return u.loadOrderOutput(ctx, sess.orderID)
	}

	if sess.status == model.CheckoutStatusPaymentOrderCreated {
		if err := u.captureAndPersist(ctx, paypalOrderID, sess); err != nil {
			return OrderOutput{}, err
		}
	}

	if sess.status != model.CheckoutStatusPaymentCaptured {
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "invalid checkout state")
	}

	// ここから先は金が動いた後。失敗は決済エラーとは別クラスで扱う。
	if err := u.submitFulfillment(ctx, sess); err != nil {
		return OrderOutput{}, err
	}

	// 注文確定。カートとドラフトを破棄し、進行状態も片付ける
	u.carts.Clear(sess.sessionID)
	u.designs.DiscardSession(sess.sessionID)
	_ = sess.advance(model.CheckoutStatusCleared)

	u.mu.Lock()
	delete(u.sessions, paypalOrderID)
	u.mu.Unlock()

	return u.loadOrderOutput(ctx, sess.orderID)
}

// キャプチャ本体。COMPLETED以外はHTTPが成功していても失敗として扱う。
func (u *CheckoutUsecase) captureAndPersist(ctx context.Context, paypalOrderID string, sess *checkoutSession) error {
	result, err := u.payment.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		log.WithFields(log.Fields{
			"paypal_order_id": paypalOrderID,
			"error":           err.Error(),
		}).Error("paypal capture failed")
		return NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	if result.Status != "COMPLETED" {
		// 状態は進めない。カートも配送先も残るので再試行できる。
		log.WithFields(log.Fields{
			"paypal_order_id": paypalOrderID,
			"capture_status":  result.Status,
		}).Warn("paypal capture not completed")
		return NewHTTPError(http.StatusPaymentRequired, "payment not completed")
	}

	// キャプチャ金額と合計の照合。不一致も解析不能もリコンサイル対象。
	if captured, perr := parseUSDCents(result.AmountValue); perr != nil {
		log.WithFields(log.Fields{
			"paypal_order_id": paypalOrderID,
			"amount_value":    result.AmountValue,
		}).Error("captured amount is unparseable")
	} else if captured != sess.total {
		log.WithFields(log.Fields{
			"paypal_order_id": paypalOrderID,
			"captured":        captured,
			"expected":        sess.total,
		}).Error("captured amount does not match checkout total")
	}

	items := make([]model.OrderItem, 0, len(sess.items))
	for _, ci := range sess.items {
		customization, _ := json.Marshal(ci.Customization)
		items = append(items, model.OrderItem{
			ProductID:           ci.Product.ID,
			VariantID:           ci.Product.VariantID,
			ProductNameSnapshot: ci.Product.Name,
			UnitPriceSnapshot:   ci.Product.Price,
			Quantity:            ci.Quantity,
			CustomizationJSON:   string(customization),
			CreatedAt:           time.Now(),
		})
	}

	orderID, err := u.orders.Create(ctx, model.Order{
		UserID:          sess.userID,
		Status:          model.OrderStatusPaid,
		PayPalOrderID:   paypalOrderID,
		PayPalCaptureID: result.CaptureID,
		PayerEmail:      result.PayerEmail,
		ShipFullName:    sess.shipping.FullName,
		ShipAddress:     sess.shipping.Address,
		ShipCity:        sess.shipping.City,
		ShipPostalCode:  sess.shipping.PostalCode,
		ShipCountry:     sess.shipping.Country,
		Subtotal:        sess.subtotal,
		ShippingFee:     sess.shippingFee,
		Tax:             sess.tax,
		TotalAmount:     sess.total,
	}, items)
	if err != nil {
		// 競合（同じPayPal注文IDが先に確定した等）は既存を引き直す
		existing, found, err2 := u.orders.FindByPayPalOrderID(ctx, paypalOrderID)
		if err2 == nil && found {
			sess.orderID = existing.ID
			sess.status = model.CheckoutStatusPaymentCaptured
			if existing.Status == model.OrderStatusFulfillmentSubmitted {
				sess.status = model.CheckoutStatusFulfillmentSubmitted
			}
			return nil
		}
		log.WithFields(log.Fields{
			"paypal_order_id": paypalOrderID,
			"error":           err.Error(),
		}).Error("order persistence failed after capture")
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sess.orderID = orderID
	if err := sess.advance(model.CheckoutStatusPaymentCaptured); err != nil {
		return err
	}

	metrics.OrdersTotal.WithLabelValues("captured").Inc()
	metrics.PaymentAmount.Observe(float64(sess.total) / 100)
	return nil
}

// フルフィルメント送信。失敗しても決済は済んでいるので
// リコンサイル記録を残し、決済エラーとは別のメッセージで返す。
func (u *CheckoutUsecase) submitFulfillment(ctx context.Context, sess *checkoutSession) error {
	req := printful.OrderRequest{
		Recipient: printful.Recipient{
			Name:        sess.shipping.FullName,
			Address1:    sess.shipping.Address,
			City:        sess.shipping.City,
			Zip:         sess.shipping.PostalCode,
			CountryCode: sess.shipping.Country,
		},
		ExternalID: strconv.FormatInt(sess.orderID, 10),
	}
	for _, ci := range sess.items {
		item := printful.OrderItem{
			VariantID:   ci.Product.VariantID,
			Quantity:    ci.Quantity,
			RetailPrice: paypal.FormatUSD(ci.Product.Price),
		}
		for _, el := range ci.Customization {
			if el.Kind == model.ElementKindImage {
				item.Files = append(item.Files, printful.OrderFile{URL: el.Content})
			}
		}
		req.Items = append(req.Items, item)
	}

	fulfillmentID, err := u.fulfillment.SubmitOrder(ctx, req)
	if err != nil {
		metrics.FulfillmentFailuresTotal.Inc()
		log.WithFields(log.Fields{
			"order_id": sess.orderID,
			"error":    err.Error(),
		}).Error("fulfillment submission failed after capture")

		// オペレーター可視化。ここで握りつぶすのは禁止。
		order, ferr := u.orders.FindByID(ctx, sess.orderID)
		captureID := ""
		if ferr == nil {
			captureID = order.PayPalCaptureID
		}
		if cerr := u.failures.Create(ctx, model.FulfillmentFailure{
			OrderID:         sess.orderID,
			PayPalCaptureID: captureID,
			Reason:          err.Error(),
		}); cerr != nil {
			log.WithFields(log.Fields{
				"order_id": sess.orderID,
				"error":    cerr.Error(),
			}).Error("failed to record fulfillment failure")
		}
		if serr := u.orders.UpdateStatus(ctx, sess.orderID, model.OrderStatusFulfillmentFailed); serr != nil {
			log.WithFields(log.Fields{
				"order_id": sess.orderID,
				"error":    serr.Error(),
			}).Error("failed to mark order fulfillment failed")
		}

		// 状態はPAYMENT_CAPTUREDのまま。同じキャプチャで再試行できる。
		return NewHTTPError(http.StatusBadGateway, "payment captured, fulfillment pending")
	}

	if err := u.orders.SetFulfillment(ctx, sess.orderID, fulfillmentID); err != nil {
		log.WithFields(log.Fields{
			"order_id":             sess.orderID,
			"fulfillment_order_id": fulfillmentID,
			"error":                err.Error(),
		}).Error("failed to record fulfillment order id")
	}
	if err := sess.advance(model.CheckoutStatusFulfillmentSubmitted); err != nil {
		return err
	}

	metrics.OrdersTotal.WithLabelValues("fulfillment_submitted").Inc()
	return nil
}

// 再起動などで進行状態が無い場合、DBの注文とスナップショット明細から組み直す。
// PAID / FULFILLMENT_FAILED のままの注文（決済済み・未送信）は
// これで同じエンドポイントからフルフィルメントを再送できる。
func (u *CheckoutUsecase) rebuildSession(ctx context.Context, userID string, paypalOrderID string) (*checkoutSession, error) {
	order, found, err := u.orders.FindByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || order.UserID != userID {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	}

	dbItems, err := u.orders.ListItemsByOrderID(ctx, order.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]model.CartItem, 0, len(dbItems))
	for _, it := range dbItems {
		var customization []model.CustomizationElement
		if it.CustomizationJSON != "" {
			_ = json.Unmarshal([]byte(it.CustomizationJSON), &customization)
		}
		items = append(items, model.CartItem{
			Product: model.Product{
				ID:        it.ProductID,
				Name:      it.ProductNameSnapshot,
				Price:     it.UnitPriceSnapshot,
				VariantID: it.VariantID,
			},
			Quantity:      it.Quantity,
			Customization: customization,
		})
	}

	status := model.CheckoutStatusPaymentCaptured
	if order.Status == model.OrderStatusFulfillmentSubmitted {
		status = model.CheckoutStatusFulfillmentSubmitted
	}

	return &checkoutSession{
		status: status,
		userID: order.UserID,
		shipping: model.ShippingInfo{
			FullName:   order.ShipFullName,
			Address:    order.ShipAddress,
			City:       order.ShipCity,
			PostalCode: order.ShipPostalCode,
			Country:    order.ShipCountry,
		},
		items:       items,
		createdAt:   time.Now(),
		subtotal:    order.Subtotal,
		shippingFee: order.ShippingFee,
		tax:         order.Tax,
		total:       order.TotalAmount,
		orderID:     order.ID,
	}, nil
}

func (u *CheckoutUsecase) loadOrderOutput(ctx context.Context, orderID int64) (OrderOutput, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orders.ListItemsByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(order, items), nil
}

func (s *checkoutSession) advance(next model.CheckoutStatus) error {
	if !s.status.CanTransitionTo(next) {
		return NewHTTPError(http.StatusConflict, "invalid checkout state")
	}
	s.status = next
	return nil
}

func validateShipping(in StartCheckoutInput) (model.ShippingInfo, error) {
	shipping := model.ShippingInfo{
		FullName:   strings.TrimSpace(in.FullName),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}

	if shipping.FullName == "" {
		return model.ShippingInfo{}, NewHTTPError(http.StatusBadRequest, "full_name is required")
	}
	if shipping.Address == "" {
		return model.ShippingInfo{}, NewHTTPError(http.StatusBadRequest, "address is required")
	}
	if shipping.City == "" {
		return model.ShippingInfo{}, NewHTTPError(http.StatusBadRequest, "city is required")
	}
	if shipping.PostalCode == "" {
		return model.ShippingInfo{}, NewHTTPError(http.StatusBadRequest, "postal_code is required")
	}
	if shipping.Country == "" {
		return model.ShippingInfo{}, NewHTTPError(http.StatusBadRequest, "country is required")
	}

	return shipping, nil
}

// "113.00" → 11300
func parseUSDCents(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}
