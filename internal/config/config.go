package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	SessionSecret string // ゲストセッショントークンの署名シークレット

	PayPalClientID     string // PayPal REST クライアントID
	PayPalClientSecret string // PayPal REST シークレット
	PayPalAPIBase      string // 例: https://api-m.sandbox.paypal.com

	PrintfulAPIToken string // Printful APIトークン（空ならスタティックカタログ）
	PrintfulAPIBase  string // 例: https://api.printful.com

	FirebaseCredentialsFile string // サービスアカウントJSONのパス（空ならADC）

	ShippingFeeCents int64 // 固定送料（セント）。小計>0のときだけ加算
	TaxRateBP        int64 // 税率（basis points、800=8%）。小計にのみ掛ける

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSやリダイレクトで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		SessionSecret: os.Getenv("SESSION_SECRET"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalAPIBase:      os.Getenv("PAYPAL_API_BASE"),

		PrintfulAPIToken: os.Getenv("PRINTFUL_API_TOKEN"),
		PrintfulAPIBase:  os.Getenv("PRINTFUL_API_BASE"),

		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),

		ShippingFeeCents: atoiOrDefault("SHIPPING_FEE_CENTS", 500),
		TaxRateBP:        atoiOrDefault("TAX_RATE_BP", 800),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.PayPalClientID == "" {
		return Config{}, fmt.Errorf("PAYPAL_CLIENT_ID is required")
	}
	if cfg.PayPalClientSecret == "" {
		return Config{}, fmt.Errorf("PAYPAL_CLIENT_SECRET is required")
	}
	if cfg.PayPalAPIBase == "" {
		return Config{}, fmt.Errorf("PAYPAL_API_BASE is required")
	}
	if cfg.PrintfulAPIToken != "" && cfg.PrintfulAPIBase == "" {
		return Config{}, fmt.Errorf("PRINTFUL_API_BASE is required when PRINTFUL_API_TOKEN is set")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atoiOrDefault(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}
