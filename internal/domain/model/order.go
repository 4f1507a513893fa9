package model

import "time"

type OrderStatus string

const (
	// 決済キャプチャ済み。フルフィルメント未送信。
	OrderStatusPaid OrderStatus = "PAID"
	// フルフィルメント送信済み。
	OrderStatusFulfillmentSubmitted OrderStatus = "FULFILLMENT_SUBMITTED"
	// 決済は完了したがフルフィルメント送信に失敗。要リコンサイル。
	OrderStatusFulfillmentFailed OrderStatus = "FULFILLMENT_FAILED"
)

// 確定注文。キャプチャ成功後にのみ作成され、明細はその時点のスナップショット。
// PayPalOrderID のユニーク制約が二重確定を防ぐ。
type Order struct {
	ID                 int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             string      `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Status             OrderStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	PayPalOrderID      string      `gorm:"type:varchar(64);not null;uniqueIndex;column:paypal_order_id" json:"-"`
	PayPalCaptureID    string      `gorm:"type:varchar(64);not null;column:paypal_capture_id" json:"-"`
	FulfillmentOrderID string      `gorm:"type:varchar(64);not null;default:''" json:"fulfillment_order_id"`
	PayerEmail         string      `gorm:"type:varchar(255);not null;default:''" json:"-"`

	ShipFullName   string `gorm:"type:varchar(255);not null" json:"ship_full_name"`
	ShipAddress    string `gorm:"type:varchar(255);not null" json:"ship_address"`
	ShipCity       string `gorm:"type:varchar(120);not null" json:"ship_city"`
	ShipPostalCode string `gorm:"type:varchar(20);not null" json:"ship_postal_code"`
	ShipCountry    string `gorm:"type:varchar(60);not null" json:"ship_country"`

	// 金額はすべてセント。Total はキャプチャ金額と一致する。
	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	ShippingFee int64 `gorm:"not null" json:"shipping_fee"`
	Tax         int64 `gorm:"not null" json:"tax"`
	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
