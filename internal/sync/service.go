package sync

import (
	"WooWithMoysklad/internal/cache"
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/msapi"
	"WooWithMoysklad/internal/stopflag"
	"WooWithMoysklad/internal/telegram"
	"WooWithMoysklad/internal/wooapi"
	"WooWithMoysklad/pkg/logging"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// syncInProgress не дает запустить два прогона одновременно,
// ручной запуск из админки и плановый используют один и тот же замок
var syncMu sync.Mutex
var syncInProgress bool

func TryLockSync() bool {
	syncMu.Lock()
	defer syncMu.Unlock()
	if syncInProgress {
		return false
	}
	syncInProgress = true
	return true
}

func UnlockSync() {
	syncMu.Lock()
	defer syncMu.Unlock()
	syncInProgress = false
}

func SyncInProgress() bool {
	syncMu.Lock()
	defer syncMu.Unlock()
	return syncInProgress
}

func SyncServiceWithRecovered() {
	logger := logging.GetLogger()
	logger.Println("Start Service SyncServiceWithRecovered")
	defer logger.Println("End Service SyncServiceWithRecovered")

	index := 0 //количество перезапусков при панике
	for {
		SyncService()
		index++

		if index == 3 {
			break
		}
	}
	telegram.SendMessageToTelegramWithLogError("перезапуск SyncService() прекращен")
}

func SyncService() {

	logger := logging.GetLogger()
	logger.Println("Start Service SyncService")
	defer logger.Println("End Service SyncService")

	defer func() {
		if r := recover(); r != nil {
			telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("произошла критическая ошибка, синхронизация будет перезапущена, ошибка: %v", r))
		}
	}()

	cfg := config.GetConfig()

	DB, err := sqlx.Connect("sqlite3", cfg.DBSQLITE.DB)
	if err != nil {
		logger.Fatalf("failed sqlx.Connect; %v", err)
	}
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Fatalf("failed close sqlx.Connect, err: %v", err)
		}
	}(DB)

	syncer := NewSyncer(cfg, msapi.GetAPI(), wooapi.GetAPI(), DB, cache.GetCacheCategory(), stopflag.GetFlag())

	for {
		timeStart := time.Now()

		if cfg.PRODUCTSYNC.Enabled == 1 {
			if TryLockSync() {
				RunFullSync(syncer)
				UnlockSync()
			} else {
				logger.Info("синхронизация уже выполняется, плановый запуск пропущен")
			}
		}

		if cfg.ORDERSYNC.Enabled == 1 {
			if TryLockSync() {
				statsOrders, err := syncer.SyncOrders()
				UnlockSync()
				if err != nil {
					telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при синхронизации заказов: \n%v\n", err))
				} else {
					logger.Infof("Синхронизация заказов выполнена, создано:%d, обновлено:%d", statsOrders.Created, statsOrders.Updated)
				}
			} else {
				logger.Info("синхронизация уже выполняется, выгрузка заказов пропущена")
			}
		}

		logger.Infof("Полное время обновления: %s", time.Now().Sub(timeStart))
		logger.Infof("time sleep %d minuts\n", cfg.PRODUCTSYNC.Timeout)

		time.Sleep(time.Minute * time.Duration(cfg.PRODUCTSYNC.Timeout))
	}
}

// RunFullSync - категории, затем товары, с отчетом в телеграм
func RunFullSync(syncer *Syncer) {

	logger := logging.GetLogger()
	logger.Println("RunFullSync:>Start")
	defer logger.Println("RunFullSync:>End")

	cfg := config.GetConfig()

	statsCategories, err := syncer.SyncCategories()
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при синхронизации категорий: \n%v\n", err))
		return
	}
	logger.Infof("Синхронизация категорий выполнена успешно. %s", statsCategories.Report())
	if statsCategories.Stopped {
		return
	}

	statsProducts, err := syncer.SyncProducts()
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при синхронизации товаров: \n%v\n", err))
		return
	}
	logger.Infof("Синхронизация товаров выполнена успешно. %s", statsProducts.Report())

	if cfg.PRODUCTSYNC.TelegramReport == 1 {
		telegram.SendMessageToTelegramWithLogError(statsProducts.Report())
	}
}
