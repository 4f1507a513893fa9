package store

import (
	"fmt"
	"sync"
	"time"

	"podstore/internal/domain/model"
)

// カスタマイザーのドラフト（セッション×商品ごとの要素リスト）。
// カート追加かセッション放棄で破棄される。永続化しない。
type DesignStore struct {
	mu     sync.RWMutex
	drafts map[draftKey][]model.CustomizationElement
	seq    int64
}

type draftKey struct {
	sessionID string
	productID int64
}

func NewDesignStore() *DesignStore {
	return &DesignStore{drafts: make(map[draftKey][]model.CustomizationElement)}
}

// 要素一覧（追加順）。
func (s *DesignStore) List(sessionID string, productID int64) []model.CustomizationElement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneElements(s.drafts[draftKey{sessionID, productID}])
}

// 要素を追加し、採番済みの要素を返す。
// 位置・サイズはオリジナルの初期配置と同じ既定値。
func (s *DesignStore) AddElement(sessionID string, productID int64, kind model.ElementKind, content string) model.CustomizationElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	el := model.CustomizationElement{
		ID:      fmt.Sprintf("%s-%d-%d", kind, time.Now().UnixMilli(), s.seq),
		Kind:    kind,
		Content: content,
		X:       50,
		Y:       50,
		Width:   200,
		Height:  50,
		Scale:   1,
	}
	if kind == model.ElementKindImage {
		el.Width = 150
		el.Height = 150
	}

	key := draftKey{sessionID, productID}
	s.drafts[key] = append(s.drafts[key], el)
	return el
}

// ドラッグ中の位置・変形更新。IDが一致する要素だけを書き換える。
// 見つからなければ false。
func (s *DesignStore) UpdateElement(sessionID string, productID int64, elementID string, x, y, rotation, scale float64) (model.CustomizationElement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey{sessionID, productID}
	for i, el := range s.drafts[key] {
		if el.ID != elementID {
			continue
		}
		el.X = x
		el.Y = y
		el.Rotation = rotation
		el.Scale = scale
		s.drafts[key][i] = el
		return el, true
	}
	return model.CustomizationElement{}, false
}

// 要素を削除する。無ければ何もしない。
func (s *DesignStore) RemoveElement(sessionID string, productID int64, elementID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey{sessionID, productID}
	kept := s.drafts[key][:0]
	for _, el := range s.drafts[key] {
		if el.ID != elementID {
			kept = append(kept, el)
		}
	}
	if len(kept) == 0 {
		delete(s.drafts, key)
		return
	}
	s.drafts[key] = kept
}

// ドラフトを破棄する。
func (s *DesignStore) Discard(sessionID string, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey{sessionID, productID})
}

// ドラフトを取り出して破棄する（カート追加時のスナップショット用）。
func (s *DesignStore) Take(sessionID string, productID int64) []model.CustomizationElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey{sessionID, productID}
	els := cloneElements(s.drafts[key])
	delete(s.drafts, key)
	return els
}

// セッション終了時にそのセッションの全ドラフトを破棄する。
func (s *DesignStore) DiscardSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.drafts {
		if key.sessionID == sessionID {
			delete(s.drafts, key)
		}
	}
}

func cloneElements(els []model.CustomizationElement) []model.CustomizationElement {
	out := make([]model.CustomizationElement, len(els))
	copy(out, els)
	return out
}
