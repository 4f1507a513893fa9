package paypal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// PayPal REST (v2 Checkout) のクライアント。
// client-credentialsでトークンを取り、注文作成とキャプチャだけを行う。
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(apiBase string, clientID string, clientSecret string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(apiBase).
			SetTimeout(15 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// アクセストークンを取得（期限前ならキャッシュを返す）。
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	if resp.IsError() {
		// 生のエラーボディはサーバー側ログにのみ残す
		log.WithFields(log.Fields{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		}).Error("paypal token request failed")
		return "", fmt.Errorf("paypal token request failed: status %d", resp.StatusCode())
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}

	c.accessToken = tok.AccessToken
	// 期限ぎりぎりを避けて60秒手前で更新する
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PurchaseUnit struct {
	Amount Amount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// 指定金額（セント）のCAPTURE注文を作成して注文IDを返す。
func (c *Client) CreateOrder(ctx context.Context, totalCents int64) (string, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	req := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []PurchaseUnit{
			{Amount: Amount{CurrencyCode: "USD", Value: FormatUSD(totalCents)}},
		},
	}

	var out orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/v2/checkout/orders")
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if resp.IsError() {
		log.WithFields(log.Fields{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		}).Error("paypal create order failed")
		return "", fmt.Errorf("paypal create order failed: status %d", resp.StatusCode())
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal create order response missing id")
	}

	return out.ID, nil
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount Amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// キャプチャ結果。Statusが"COMPLETED"以外は呼び出し側が失敗として扱う。
type CaptureResult struct {
	OrderID     string
	CaptureID   string
	Status      string
	PayerEmail  string
	AmountValue string
}

// 承認済み注文をキャプチャする。
// HTTPが成功してもStatusはCOMPLETEDとは限らない。
func (c *Client) CaptureOrder(ctx context.Context, paypalOrderID string) (CaptureResult, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return CaptureResult{}, err
	}

	var out captureResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetResult(&out).
		Post("/v2/checkout/orders/" + paypalOrderID + "/capture")
	if err != nil {
		return CaptureResult{}, fmt.Errorf("paypal capture order: %w", err)
	}
	if resp.IsError() {
		log.WithFields(log.Fields{
			"status":          resp.StatusCode(),
			"body":            resp.String(),
			"paypal_order_id": paypalOrderID,
		}).Error("paypal capture order failed")
		return CaptureResult{}, fmt.Errorf("paypal capture order failed: status %d", resp.StatusCode())
	}

	result := CaptureResult{
		OrderID:    out.ID,
		Status:     out.Status,
		PayerEmail: out.Payer.EmailAddress,
	}
	for _, pu := range out.PurchaseUnits {
		for _, cap := range pu.Payments.Captures {
			result.CaptureID = cap.ID
			result.AmountValue = cap.Amount.Value
		}
	}

	return result, nil
}

// セントをPayPalのvalue形式（"113.00"）にする。
func FormatUSD(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
