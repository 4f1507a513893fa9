package model

// カスタマイズ要素の種類
type ElementKind string

const (
	ElementKindText  ElementKind = "text"
	ElementKindImage ElementKind = "image"
)

// 商品に重ねるカスタマイズ要素（テキスト/画像）。
// カートに入れるまではセッション内のドラフトにのみ存在する。
type CustomizationElement struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	Content  string      `json:"content"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Scale    float64     `json:"scale"`
}

// カートの明細。
// Product は追加時点のスナップショット（後からカタログが変わっても影響しない）。
// Quantity は常に1以上（0になった明細は保持しない）。
type CartItem struct {
	ID            string                 `json:"id"`
	Product       Product                `json:"product"`
	Quantity      int64                  `json:"quantity"`
	Customization []CustomizationElement `json:"customization"`
}

// 1セッション分のカート状態。明細は追加順を保つ。
type CartState struct {
	Items []CartItem `json:"items"`
}

// 合計点数。保存せず毎回導出する。
func (s CartState) TotalItems() int64 {
	var n int64
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// 合計金額（セント）。保存せず毎回導出する。
func (s CartState) TotalPrice() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Product.Price * it.Quantity
	}
	return total
}

// IDが一致する明細を返す。
func (s CartState) FindItem(itemID string) (CartItem, bool) {
	for _, it := range s.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}
