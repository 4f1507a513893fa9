package main

import (
	"context"

	"podstore/internal/config"
	"podstore/internal/domain/model"
	"podstore/internal/handler"
	"podstore/internal/infra/catalog"
	"podstore/internal/infra/db"
	"podstore/internal/infra/paypal"
	"podstore/internal/infra/printful"
	infraRepo "podstore/internal/infra/repository"
	"podstore/internal/middleware"
	"podstore/internal/server"
	"podstore/internal/store"
	"podstore/internal/usecase"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	// .envはローカル用。無くてもよい。
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed: ", err)
	}
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.FulfillmentFailure{},
	); err != nil {
		log.Fatal("migrate failed: ", err)
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	failureRepo := infraRepo.NewFulfillmentFailureGormRepository(gormDB)

	//インメモリのセッション状態
	carts := store.NewCartStore()
	designs := store.NewDesignStore()

	//Firebase（IDトークン検証）
	verifier := newVerifier(cfg)

	//外部クライアント
	paypalClient := paypal.NewClient(cfg.PayPalAPIBase, cfg.PayPalClientID, cfg.PayPalClientSecret)

	var source usecase.ProductSource
	var fulfillment usecase.FulfillmentClient
	if cfg.PrintfulAPIToken != "" {
		printfulClient := printful.NewClient(cfg.PrintfulAPIBase, cfg.PrintfulAPIToken)
		source = printfulClient
		fulfillment = printfulClient
	} else {
		// トークン未設定ならスタティックカタログ＋フルフィルメントなし
		log.Warn("PRINTFUL_API_TOKEN not set, using static catalog")
		source = catalog.NewStaticSource()
		fulfillment = catalog.NewNoopFulfillment()
	}

	//Usecase生成
	catalogUC := usecase.NewCatalogUsecase(source)
	cartUC := usecase.NewCartUsecase(carts, designs, source)
	customizerUC := usecase.NewCustomizerUsecase(designs, source)
	checkoutUC := usecase.NewCheckoutUsecase(
		carts, designs, orderRepo, failureRepo,
		paypalClient, fulfillment,
		cfg.ShippingFeeCents, cfg.TaxRateBP,
	)
	orderUC := usecase.NewOrderUsecase(orderRepo)
	reconciliationUC := usecase.NewReconciliationUsecase(failureRepo)

	//Handler生成＋ルート登録
	e := server.New(cfg)
	handler.NewProductHandler(catalogUC).RegisterRoutes(e)
	handler.NewSessionHandler(cfg).RegisterRoutes(e)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg, verifier)
	handler.NewDesignHandler(customizerUC).RegisterRoutes(e, cfg, verifier)
	handler.NewCheckoutHandler(checkoutUC).RegisterRoutes(e, verifier)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, verifier)
	handler.NewAuthHandler(verifier).RegisterRoutes(e)
	handler.NewOpsHandler(reconciliationUC).RegisterRoutes(e)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.WithFields(log.Fields{
		"addr": addr,
		"env":  cfg.GoEnv,
	}).Info("podstore api starting")

	if err := server.Start(e, addr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}

// Firebase Admin SDKを初期化する。認証情報が無い環境（dev）ではnil検証器になり、
// 認証必須ルートは常に401になる。
func newVerifier(cfg config.Config) middleware.TokenVerifier {
	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		if cfg.GoEnv == "dev" {
			log.Warn("firebase init failed, auth disabled: ", err)
			return nil
		}
		log.Fatal("firebase init failed: ", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		if cfg.GoEnv == "dev" {
			log.Warn("firebase auth client failed, auth disabled: ", err)
			return nil
		}
		log.Fatal("firebase auth client failed: ", err)
	}

	return middleware.NewFirebaseVerifier(client)
}
