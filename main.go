package main

import (
	"WooWithMoysklad/internal/cache"
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/database"
	httphandler "WooWithMoysklad/internal/handlers/http"
	"WooWithMoysklad/internal/msapi"
	"WooWithMoysklad/internal/stopflag"
	"WooWithMoysklad/internal/sync"
	"WooWithMoysklad/internal/telegram"
	"WooWithMoysklad/internal/version"
	"WooWithMoysklad/internal/wooapi"
	"WooWithMoysklad/pkg/logging"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	logger := logging.GetLogger()
	logger.Info("Start Main")
	v := version.GetVersion()
	logger.Infof("Version %s", v.String())
	defer logger.Info("End Main")

	cfg := config.GetConfig()

	go sync.SyncServiceWithRecovered()
	go telegram.BotStart()

	router := httprouter.New()

	router.GET("/", httphandler.HandlerOtherAll)
	router.POST("/api/v1/sync/products", httphandler.HandlerSyncProducts)
	router.POST("/api/v1/sync/categories", httphandler.HandlerSyncCategories)
	router.POST("/api/v1/sync/orders", httphandler.HandlerSyncOrders)
	router.POST("/api/v1/sync/stop", httphandler.HandlerSyncStop)
	router.POST("/api/v1/webhooks/register", httphandler.HandlerWebhooksRegister)
	router.POST("/webhook/moysklad", httphandler.HandlerWebhookMoysklad)
	router.POST("/webhook/woo/order", httphandler.HandlerWebhookWooOrder)

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.SERVICE.PORT), router))
}

func init() {
	logger := logging.GetLogger()

	logger.Println("Start main init...")
	defer logger.Println("End main init.")
	cfg := config.GetConfig()

	logging.SetDebug(cfg.LOG.Debug == 1)

	msURL := cfg.MOYSKLAD.URL
	if msURL == "" {
		msURL = msapi.DEFAULT_URL
	}
	_ = msapi.NewAPI(msURL, cfg.MOYSKLAD.User, cfg.MOYSKLAD.Pass)

	_ = wooapi.NewAPI(cfg.WOOCOMMERCE.URL, cfg.WOOCOMMERCE.Key, cfg.WOOCOMMERCE.Secret,
		cfg.WOOCOMMERCE.User, cfg.WOOCOMMERCE.Pass, cfg.WOOCOMMERCE.RPS)

	dbName := cfg.DBSQLITE.DB
	if dbName == "" {
		dbName = database.DB_NAME
	}
	if database.Exists(dbName) != true {
		logger.Info(dbName, " not exist")
		err := database.CreateDB(dbName)
		if err != nil {
			logger.Fatalf("%s, %v", dbName, err)
		}
	} else {
		logger.Info(dbName, " exist")
	}

	db, err := sqlx.Connect("sqlite3", dbName)
	if err != nil {
		logger.Fatalf("failed sqlx.Connect; %v", err)
	}
	httphandler.SetDB(db)
	cache.NewCacheCategory(db)

	telegram.OnSyncCommand = func() string {
		if !sync.TryLockSync() {
			return "синхронизация уже выполняется"
		}
		go func() {
			defer sync.UnlockSync()
			sync.RunFullSync(sync.NewSyncer(cfg, msapi.GetAPI(), wooapi.GetAPI(), db, cache.GetCacheCategory(), stopflag.GetFlag()))
		}()
		return "синхронизация запущена"
	}
}
