package usecase

import (
	"context"
	"math"
	"net/http"
	"strings"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
	"podstore/internal/store"
)

// CustomizerUsecase は /designs の業務ロジックです。
// 要素リストはセッション×商品ごとのドラフトで、永続化しない。
type CustomizerUsecase struct {
	designs *store.DesignStore
	source  ProductSource
}

func NewCustomizerUsecase(designs *store.DesignStore, source ProductSource) *CustomizerUsecase {
	return &CustomizerUsecase{designs: designs, source: source}
}

const maxTextLength = 50

type AddElementInput struct {
	Kind    string
	Content string
}

type MoveElementInput struct {
	X        float64
	Y        float64
	Rotation float64
	Scale    float64
}

type DesignResponse struct {
	ProductID int64                        `json:"product_id"`
	Elements  []model.CustomizationElement `json:"elements"`
}

func (u *CustomizerUsecase) GetDesign(ctx context.Context, sessionID string, productID int64) (DesignResponse, error) {
	if sessionID == "" {
		return DesignResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if productID <= 0 {
		return DesignResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return DesignResponse{
		ProductID: productID,
		Elements:  u.designs.List(sessionID, productID),
	}, nil
}

// 要素追加。テキストは1〜50文字、画像はURL必須。
func (u *CustomizerUsecase) AddElement(ctx context.Context, sessionID string, productID int64, in AddElementInput) (model.CustomizationElement, error) {
	if sessionID == "" {
		return model.CustomizationElement{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if productID <= 0 {
		return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	kind := model.ElementKind(in.Kind)
	content := strings.TrimSpace(in.Content)

	switch kind {
	case model.ElementKindText:
		if content == "" {
			return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "text cannot be empty")
		}
		if len(content) > maxTextLength {
			return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "text is too long")
		}
	case model.ElementKindImage:
		if content == "" {
			return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "image url required")
		}
	default:
		return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "invalid kind")
	}

	// 商品が存在するドラフトにだけ要素を足せる
	if _, err := u.source.Get(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return model.CustomizationElement{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.CustomizationElement{}, NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	return u.designs.AddElement(sessionID, productID, kind, content), nil
}

// ドラッグ中の位置更新。位置・変形は有限値のみ受け付ける。
func (u *CustomizerUsecase) MoveElement(ctx context.Context, sessionID string, productID int64, elementID string, in MoveElementInput) (model.CustomizationElement, error) {
	if sessionID == "" {
		return model.CustomizationElement{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if productID <= 0 || elementID == "" {
		return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !isFinite(in.X) || !isFinite(in.Y) || !isFinite(in.Rotation) || !isFinite(in.Scale) {
		return model.CustomizationElement{}, NewHTTPError(http.StatusBadRequest, "invalid position")
	}

	el, ok := u.designs.UpdateElement(sessionID, productID, elementID, in.X, in.Y, in.Rotation, in.Scale)
	if !ok {
		return model.CustomizationElement{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return el, nil
}

// 要素削除。無ければ何もしない。
func (u *CustomizerUsecase) RemoveElement(ctx context.Context, sessionID string, productID int64, elementID string) (DesignResponse, error) {
	if sessionID == "" {
		return DesignResponse{}, NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if productID <= 0 || elementID == "" {
		return DesignResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	u.designs.RemoveElement(sessionID, productID, elementID)
	return DesignResponse{
		ProductID: productID,
		Elements:  u.designs.List(sessionID, productID),
	}, nil
}

// ドラフト破棄（カートに入れずに離脱した場合）。
func (u *CustomizerUsecase) DiscardDesign(ctx context.Context, sessionID string, productID int64) error {
	if sessionID == "" {
		return NewHTTPError(http.StatusUnauthorized, "session required")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	u.designs.Discard(sessionID, productID)
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
