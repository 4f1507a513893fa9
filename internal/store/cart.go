package store

import (
	"fmt"
	"sync"
	"time"

	"podstore/internal/domain/model"
)

// セッションごとのカート状態を持つインメモリストア。
// 仕様どおり永続化しない。各操作は全域関数（失敗パスなし）で、
// 新しい状態を作って差し替える。
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]model.CartState
	seq   int64
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]model.CartState)}
}

// 現在の状態を返す（無ければ空カート）。
func (s *CartStore) Get(sessionID string) model.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.carts[sessionID])
}

// 明細を追加する。同一商品でも常に新しい明細を作る（数量マージはしない）。
func (s *CartStore) AddItem(sessionID string, product model.Product, quantity int64, customization []model.CustomizationElement) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := cloneState(s.carts[sessionID])

	// 商品ID+追加時刻＋連番。同ミリ秒の連続追加でも一意。
	s.seq++
	item := model.CartItem{
		ID:            fmt.Sprintf("%d-%d-%d", product.ID, time.Now().UnixMilli(), s.seq),
		Product:       product,
		Quantity:      quantity,
		Customization: append([]model.CustomizationElement(nil), customization...),
	}

	state.Items = append(state.Items, item)
	s.carts[sessionID] = state
	return cloneState(state)
}

// 明細を削除する。IDが無ければ何もしない（エラーにしない）。
func (s *CartStore) RemoveItem(sessionID string, itemID string) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := cloneState(s.carts[sessionID])
	kept := state.Items[:0]
	for _, it := range state.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	state.Items = kept
	s.carts[sessionID] = state
	return cloneState(state)
}

// 数量を更新する。0以下は0に丸め、0になった明細は取り除く
// （数量0の明細は保持しない）。
func (s *CartStore) UpdateQuantity(sessionID string, itemID string, quantity int64) model.CartState {
	if quantity < 0 {
		quantity = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := cloneState(s.carts[sessionID])
	kept := state.Items[:0]
	for _, it := range state.Items {
		if it.ID == itemID {
			it.Quantity = quantity
		}
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	state.Items = kept
	s.carts[sessionID] = state
	return cloneState(state)
}

// カートを空にする。
func (s *CartStore) Clear(sessionID string) model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return model.CartState{Items: []model.CartItem{}}
}

// 読み取り側に内部スライスを共有させない。
func cloneState(state model.CartState) model.CartState {
	items := make([]model.CartItem, len(state.Items))
	copy(items, state.Items)
	return model.CartState{Items: items}
}
