package usecase

import (
	"context"
	"net/http"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
	"podstore/internal/store"
)

// CartUsecase は /cart の業務ロジックです。
// 状態はセッションごとのインメモリストアが持ち、ここでは入力検証と
// 商品スナップショットの解決だけを行う。
type CartUsecase struct {
	carts   *store.CartStore
	designs *store.DesignStore
	source  ProductSource
}

func NewCartUsecase(carts *store.CartStore, designs *store.DesignStore, source ProductSource) *CartUsecase {
	return &CartUsecase{carts: carts, designs: designs, source: source}
}

// OASの CartResponse に合わせる。合計は毎回導出。
type CartResponse struct {
	Items      []model.CartItem `json:"items"`
	TotalItems int64            `json:"total_items"`
	TotalPrice int64            `json:"total_price"`
}

// 1明細あたりの数量上限。合計金額のオーバーフローも防ぐ
const maxCartQuantity = 99

type AddCartInput struct {
	ProductID int64
	Quantity  int64
	// trueならカスタマイザーのドラフトをこの明細に取り込んで破棄する
	UseDesign bool
}

type UpdateCartItemInput struct {
	Quantity int64
}

func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	return toCartResponse(u.carts.Get(sessionID)), nil
}

// カートに追加。同一商品でも常に別明細になる（カスタマイズが違うため）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 || in.Quantity > maxCartQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品スナップショットを解決
	p, err := u.source.Get(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	var customization []model.CustomizationElement
	if in.UseDesign {
		// ドラフトはカート追加とともに破棄される
		customization = u.designs.Take(sessionID, in.ProductID)
	}

	state := u.carts.AddItem(sessionID, p, in.Quantity, customization)
	return toCartResponse(state), nil
}

// 数量変更。0は削除。存在しない明細は404。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, itemID string, in UpdateCartItemInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity > maxCartQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	if _, ok := u.carts.Get(sessionID).FindItem(itemID); !ok {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	state := u.carts.UpdateQuantity(sessionID, itemID, in.Quantity)
	return toCartResponse(state), nil
}

// 明細削除。無ければ何もしない。
func (u *CartUsecase) DeleteCartItem(ctx context.Context, sessionID string, itemID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	state := u.carts.RemoveItem(sessionID, itemID)
	return toCartResponse(state), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}

	state := u.carts.Clear(sessionID)
	return toCartResponse(state), nil
}

func toCartResponse(state model.CartState) CartResponse {
	return CartResponse{
		Items:      state.Items,
		TotalItems: state.TotalItems(),
		TotalPrice: state.TotalPrice(),
	}
}
