package printful

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"podstore/internal/domain/model"
	"podstore/internal/patterns"
	repo "podstore/internal/repository"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// Printful REST クライアント。カタログ取得と注文送信を行う。
// 外部呼び出しはすべてサーキットブレーカー越し。
type Client struct {
	http    *resty.Client
	circuit *patterns.CircuitBreakerWrapper
}

func NewClient(apiBase string, apiToken string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(apiBase).
			SetAuthToken(apiToken).
			SetTimeout(15 * time.Second),
		circuit: patterns.NewCircuitBreaker("printful"),
	}
}

// Printfulのレスポンス外枠
type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
}

type syncProduct struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type syncVariant struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	RetailPrice string `json:"retail_price"`
	Files       []struct {
		Type         string `json:"type"`
		ThumbnailURL string `json:"thumbnail_url"`
	} `json:"files"`
}

type productDetail struct {
	SyncProduct  syncProduct   `json:"sync_product"`
	SyncVariants []syncVariant `json:"sync_variants"`
}

// 商品一覧。価格と画像は先頭バリアントから取る。
// ストアの商品数は少ない前提なので詳細をそのまま引きに行く。
func (c *Client) List(ctx context.Context) ([]model.Product, error) {
	var env envelope
	if err := c.get(ctx, "/store/products", &env); err != nil {
		return nil, err
	}

	var list []syncProduct
	if err := json.Unmarshal(env.Result, &list); err != nil {
		return nil, fmt.Errorf("printful products decode: %w", err)
	}

	products := make([]model.Product, 0, len(list))
	for _, sp := range list {
		p, err := c.Get(ctx, sp.ID)
		if err == repo.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}

// 商品詳細。存在しなければ repo.ErrNotFound。
func (c *Client) Get(ctx context.Context, productID int64) (model.Product, error) {
	var env envelope
	err := c.get(ctx, fmt.Sprintf("/store/products/%d", productID), &env)
	if err == repo.ErrNotFound {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}

	var detail productDetail
	if err := json.Unmarshal(env.Result, &detail); err != nil {
		return model.Product{}, fmt.Errorf("printful product decode: %w", err)
	}
	if len(detail.SyncVariants) == 0 {
		return model.Product{}, repo.ErrNotFound
	}

	v := detail.SyncVariants[0]
	price, err := parsePriceCents(v.RetailPrice)
	if err != nil {
		return model.Product{}, fmt.Errorf("printful product %d: %w", productID, err)
	}

	p := model.Product{
		ID:          detail.SyncProduct.ID,
		Name:        detail.SyncProduct.Name,
		Price:       price,
		ImageURL:    detail.SyncProduct.ThumbnailURL,
		Description: v.Name,
		VariantID:   v.ID,
	}
	for _, f := range v.Files {
		if f.Type == "preview" && f.ThumbnailURL != "" {
			p.ImageURL = f.ThumbnailURL
		}
	}

	return p, nil
}

type Recipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
}

type OrderFile struct {
	URL string `json:"url"`
}

type OrderItem struct {
	VariantID   int64       `json:"variant_id"`
	Quantity    int64       `json:"quantity"`
	RetailPrice string      `json:"retail_price"`
	Files       []OrderFile `json:"files,omitempty"`
}

type OrderRequest struct {
	Recipient  Recipient   `json:"recipient"`
	Items      []OrderItem `json:"items"`
	ExternalID string      `json:"external_id"`
}

type orderResult struct {
	ID int64 `json:"id"`
}

// フルフィルメント注文を送信してPrintfulの注文IDを返す。
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (string, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		var env envelope
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			SetResult(&env).
			Post("/orders")
		if err != nil {
			return nil, fmt.Errorf("printful create order: %w", err)
		}
		if resp.IsError() {
			log.WithFields(log.Fields{
				"status":      resp.StatusCode(),
				"body":        resp.String(),
				"external_id": req.ExternalID,
			}).Error("printful create order failed")
			return nil, fmt.Errorf("printful create order failed: status %d", resp.StatusCode())
		}

		var out orderResult
		if err := json.Unmarshal(env.Result, &out); err != nil {
			return nil, fmt.Errorf("printful order decode: %w", err)
		}
		return strconv.FormatInt(out.ID, 10), nil
	})
	if err != nil {
		return "", patterns.FormatError("printful", err)
	}

	return result.(string), nil
}

func (c *Client) get(ctx context.Context, path string, out *envelope) error {
	// 404はブレーカーの失敗に数えない
	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(out).
			Get(path)
		if err != nil {
			return false, fmt.Errorf("printful get %s: %w", path, err)
		}
		if resp.StatusCode() == 404 {
			return true, nil
		}
		if resp.IsError() {
			log.WithFields(log.Fields{
				"status": resp.StatusCode(),
				"path":   path,
				"body":   resp.String(),
			}).Error("printful request failed")
			return false, fmt.Errorf("printful get %s failed: status %d", path, resp.StatusCode())
		}
		return false, nil
	})
	if err != nil {
		return patterns.FormatError("printful", err)
	}
	if notFound, _ := result.(bool); notFound {
		return repo.ErrNotFound
	}
	return nil
}

// "18.99" → 1899。Printfulのretail_priceは文字列で来る。
func parsePriceCents(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid retail_price %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative retail_price %q", s)
	}
	return int64(math.Round(f * 100)), nil
}
