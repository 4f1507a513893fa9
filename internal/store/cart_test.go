package store

import (
	"testing"

	"podstore/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

var testShirt = model.Product{
	ID:        1,
	Name:      "Classic White T-Shirt",
	Price:     1899,
	VariantID: 101,
}

var testMug = model.Product{
	ID:        3,
	Name:      "Ceramic Coffee Mug",
	Price:     1200,
	VariantID: 103,
}

func TestCartStore_EmptyCart(t *testing.T) {
	s := NewCartStore()

	state := s.Get("sess-1")
	assert.Empty(t, state.Items)
	assert.Equal(t, int64(0), state.TotalItems())
	assert.Equal(t, int64(0), state.TotalPrice())
}

func TestCartStore_AddItem(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 2, nil)

	assert.Len(t, state.Items, 1)
	assert.Equal(t, testShirt, state.Items[0].Product)
	assert.Equal(t, int64(2), state.Items[0].Quantity)
	assert.NotEmpty(t, state.Items[0].ID)
	assert.Equal(t, int64(2), state.TotalItems())
	assert.Equal(t, int64(3798), state.TotalPrice())
}

// 同一商品を二度追加しても数量マージはせず、別明細になる
func TestCartStore_AddSameProductTwice(t *testing.T) {
	s := NewCartStore()

	s.AddItem("sess-1", testShirt, 1, nil)
	state := s.AddItem("sess-1", testShirt, 1, nil)

	assert.Len(t, state.Items, 2)
	assert.NotEqual(t, state.Items[0].ID, state.Items[1].ID)
	assert.Equal(t, int64(2), state.TotalItems())
}

func TestCartStore_UpdateQuantity(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 1, nil)
	itemID := state.Items[0].ID

	state = s.UpdateQuantity("sess-1", itemID, 5)
	assert.Len(t, state.Items, 1)
	assert.Equal(t, int64(5), state.Items[0].Quantity)
	assert.Equal(t, int64(5*1899), state.TotalPrice())
}

// 数量0は削除。数量0の明細は保持しない
func TestCartStore_UpdateQuantityToZeroRemovesItem(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 3, nil)
	itemID := state.Items[0].ID

	state = s.UpdateQuantity("sess-1", itemID, 0)
	assert.Empty(t, state.Items)
}

// 負数は0に丸める（＝削除）
func TestCartStore_UpdateQuantityNegativeClampsToZero(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 3, nil)
	itemID := state.Items[0].ID

	state = s.UpdateQuantity("sess-1", itemID, -2)
	assert.Empty(t, state.Items)
}

func TestCartStore_UpdateQuantityUnknownIDIsNoop(t *testing.T) {
	s := NewCartStore()

	s.AddItem("sess-1", testShirt, 1, nil)
	state := s.UpdateQuantity("sess-1", "no-such-id", 10)

	assert.Len(t, state.Items, 1)
	assert.Equal(t, int64(1), state.Items[0].Quantity)
}

func TestCartStore_RemoveItem(t *testing.T) {
	s := NewCartStore()

	s.AddItem("sess-1", testShirt, 1, nil)
	state := s.AddItem("sess-1", testMug, 2, nil)
	mugID := state.Items[1].ID

	state = s.RemoveItem("sess-1", mugID)
	assert.Len(t, state.Items, 1)
	assert.Equal(t, testShirt.ID, state.Items[0].Product.ID)

	// 無いIDは何もしない
	state = s.RemoveItem("sess-1", "no-such-id")
	assert.Len(t, state.Items, 1)
}

func TestCartStore_Clear(t *testing.T) {
	s := NewCartStore()

	s.AddItem("sess-1", testShirt, 1, nil)
	s.AddItem("sess-1", testMug, 2, nil)

	state := s.Clear("sess-1")
	assert.Empty(t, state.Items)
	assert.Empty(t, s.Get("sess-1").Items)
}

func TestCartStore_SessionsAreIsolated(t *testing.T) {
	s := NewCartStore()

	s.AddItem("sess-1", testShirt, 1, nil)
	s.AddItem("sess-2", testMug, 2, nil)

	assert.Len(t, s.Get("sess-1").Items, 1)
	assert.Len(t, s.Get("sess-2").Items, 1)

	s.Clear("sess-1")
	assert.Empty(t, s.Get("sess-1").Items)
	assert.Len(t, s.Get("sess-2").Items, 1)
}

// どの操作列の後でも合計は明細から導出した値と一致する
func TestCartStore_TotalsAlwaysDerived(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 2, nil)
	state = s.AddItem("sess-1", testMug, 1, nil)
	state = s.AddItem("sess-1", testShirt, 1, nil)
	shirtID := state.Items[2].ID

	state = s.UpdateQuantity("sess-1", shirtID, 4)
	state = s.RemoveItem("sess-1", state.Items[1].ID)

	var wantItems, wantPrice int64
	for _, it := range state.Items {
		wantItems += it.Quantity
		wantPrice += it.Product.Price * it.Quantity
	}
	assert.Equal(t, wantItems, state.TotalItems())
	assert.Equal(t, wantPrice, state.TotalPrice())
}

// 返した状態を書き換えてもストア内部には影響しない
func TestCartStore_ReturnedStateIsACopy(t *testing.T) {
	s := NewCartStore()

	state := s.AddItem("sess-1", testShirt, 1, nil)
	state.Items[0].Quantity = 99

	assert.Equal(t, int64(1), s.Get("sess-1").Items[0].Quantity)
}

func TestCartStore_CustomizationSnapshot(t *testing.T) {
	s := NewCartStore()

	els := []model.CustomizationElement{
		{ID: "text-1", Kind: model.ElementKindText, Content: "Hello"},
	}
	state := s.AddItem("sess-1", testShirt, 1, els)

	assert.Len(t, state.Items[0].Customization, 1)
	assert.Equal(t, "Hello", state.Items[0].Customization[0].Content)

	// 呼び出し元のスライスを書き換えても明細には影響しない
	els[0].Content = "changed"
	assert.Equal(t, "Hello", s.Get("sess-1").Items[0].Customization[0].Content)
}
