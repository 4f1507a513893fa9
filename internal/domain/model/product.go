package model

// カタログ商品。Printful（またはスタティックカタログ）から取得した読み取り専用スナップショット。
// DBには保存しない。価格はUSDセント。
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	VariantID   int64  `json:"variant_id"`
}
