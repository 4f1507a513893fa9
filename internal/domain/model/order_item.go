package model

import "time"

// 注文明細スナップショット。カートが後で消えても注文には影響しない。
type OrderItem struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64  `gorm:"not null;index" json:"order_id"`
	ProductID           int64  `gorm:"not null;index" json:"product_id"`
	VariantID           int64  `gorm:"not null" json:"variant_id"`
	ProductNameSnapshot string `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64  `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64  `gorm:"not null" json:"quantity"`
	// カスタマイズ要素のJSONスナップショット（無ければ空配列）
	CustomizationJSON string    `gorm:"type:text;not null;default:'[]'" json:"-"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
