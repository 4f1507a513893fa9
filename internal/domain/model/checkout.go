package model

type CheckoutStatus string

const (
	CheckoutStatusIdle                 CheckoutStatus = "IDLE"
	CheckoutStatusShippingFormValid    CheckoutStatus = "SHIPPING_FORM_VALID"
	CheckoutStatusPaymentOrderCreated  CheckoutStatus = "PAYMENT_ORDER_CREATED"
	CheckoutStatusPaymentCaptured      CheckoutStatus = "PAYMENT_CAPTURED"
	CheckoutStatusFulfillmentSubmitted CheckoutStatus = "FULFILLMENT_SUBMITTED"
	CheckoutStatusCleared              CheckoutStatus = "CLEARED"
)

// 直線的な状態遷移のみ許可する。
// PAYMENT_CAPTURED から PAYMENT_CAPTURED への遷移はフルフィルメント再試行のために許す。
func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	switch s {
	case CheckoutStatusIdle:
		return next == CheckoutStatusShippingFormValid
	case CheckoutStatusShippingFormValid:
		return next == CheckoutStatusPaymentOrderCreated
	case CheckoutStatusPaymentOrderCreated:
		return next == CheckoutStatusPaymentCaptured
	case CheckoutStatusPaymentCaptured:
		return next == CheckoutStatusFulfillmentSubmitted || next == CheckoutStatusPaymentCaptured
	case CheckoutStatusFulfillmentSubmitted:
		return next == CheckoutStatusCleared
	default:
		return false
	}
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCleared
}

// 配送先。チェックアウト開始時にバリデーション済みであること。
type ShippingInfo struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}
