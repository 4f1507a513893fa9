package model

import "time"

// キャプチャ後にフルフィルメント送信が失敗した記録。
// 決済済みなので絶対に握りつぶさない。手動リコンサイル用に残す。
type FulfillmentFailure struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64     `gorm:"not null;index" json:"order_id"`
	PayPalCaptureID string    `gorm:"type:varchar(64);not null;column:paypal_capture_id" json:"paypal_capture_id"`
	Reason          string    `gorm:"type:text;not null" json:"reason"`
	Resolved        bool      `gorm:"not null;default:false;index" json:"resolved"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
