package http

import (
	"WooWithMoysklad/internal/cache"
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/msapi"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"WooWithMoysklad/internal/stopflag"
	"WooWithMoysklad/internal/sync"
	"WooWithMoysklad/internal/telegram"
	"WooWithMoysklad/internal/version"
	"WooWithMoysklad/internal/webhook"
	"WooWithMoysklad/internal/wooapi"
	"WooWithMoysklad/pkg/logging"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
)

var dbGlobal *sqlx.DB

// SetDB отдает хендлерам общее подключение к базе
func SetDB(db *sqlx.DB) {
	dbGlobal = db
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Updated int    `json:"updated,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	logger := logging.GetLogger()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

func newSyncer() *sync.Syncer {
	cfg := config.GetConfig()
	return sync.NewSyncer(cfg, msapi.GetAPI(), wooapi.GetAPI(), dbGlobal, cache.GetCacheCategory(), stopflag.GetFlag())
}

func HandlerOtherAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerOtherAll")
	defer logger.Info("End HandlerOtherAll")

	logger.Debug("Method\n\t", r.Method)
	logger.Debug("URL\n\t", r.URL)
	logger.Debug("Header\n\t", r.Header)

	v := version.GetVersion()
	_, err := fmt.Fprintf(w, "Version %s", v.String())
	if err != nil {
		logger.Errorf("failed to send response, error: %v", err)
		return
	}
}

// HandlerSyncProducts - ручной запуск полной синхронизации каталога
func HandlerSyncProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncProducts")
	defer logger.Info("End HandlerSyncProducts")

	if !sync.TryLockSync() {
		writeJSON(w, http.StatusConflict, response{Success: false, Message: "синхронизация уже выполняется"})
		return
	}

	go func() {
		defer sync.UnlockSync()
		sync.RunFullSync(newSyncer())
	}()

	writeJSON(w, http.StatusOK, response{Success: true, Message: "синхронизация каталога запущена"})
}

// HandlerSyncCategories - ручной запуск синхронизации только категорий
func HandlerSyncCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncCategories")
	defer logger.Info("End HandlerSyncCategories")

	if !sync.TryLockSync() {
		writeJSON(w, http.StatusConflict, response{Success: false, Message: "синхронизация уже выполняется"})
		return
	}

	go func() {
		defer sync.UnlockSync()
		stats, err := newSyncer().SyncCategories()
		if err != nil {
			telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при синхронизации категорий: \n%v\n", err))
			return
		}
		logger.Infof("Синхронизация категорий выполнена успешно. %s", stats.Report())
	}()

	writeJSON(w, http.StatusOK, response{Success: true, Message: "синхронизация категорий запущена"})
}

// HandlerSyncOrders - ручная выгрузка заказов в МойСклад
func HandlerSyncOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncOrders")
	defer logger.Info("End HandlerSyncOrders")

	if !sync.TryLockSync() {
		writeJSON(w, http.StatusConflict, response{Success: false, Message: "синхронизация уже выполняется"})
		return
	}
	defer sync.UnlockSync()

	stats, err := newSyncer().SyncOrders()
	if err != nil {
		logger.Errorf("failed in SyncOrders(), error: %v", err)
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: fmt.Sprintf("создано:%d, обновлено:%d, пропущено:%d, ошибок:%d", stats.Created, stats.Updated, stats.Skipped, stats.Failed),
	})
}

// HandlerSyncStop взводит флаг остановки, прогон завершится на ближайшей проверке
func HandlerSyncStop(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncStop")
	defer logger.Info("End HandlerSyncStop")

	if !sync.SyncInProgress() {
		writeJSON(w, http.StatusOK, response{Success: true, Message: "синхронизация не выполняется"})
		return
	}

	stopflag.GetFlag().Request()
	writeJSON(w, http.StatusOK, response{Success: true, Message: "остановка запрошена"})
}

// HandlerWebhooksRegister регистрирует вебхук МойСклад на изменение заказов
func HandlerWebhooksRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerWebhooksRegister")
	defer logger.Info("End HandlerWebhooksRegister")
	cfg := config.GetConfig()

	if cfg.WEBHOOK.URL == "" {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "не указан WEBHOOK.URL"})
		return
	}

	MSAPI := msapi.GetAPI()
	_, err := MSAPI.WebhookRegister(cfg.WEBHOOK.URL, "customerorder", "UPDATE")
	if err != nil {
		logger.Errorf("failed in WebhookRegister(), error: %v", err)
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "вебхук зарегистрирован"})
}

// HandlerWebhookWooOrder принимает вебхук Woo о новом заказе
func HandlerWebhookWooOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerWebhookWooOrder")
	defer logger.Info("End HandlerWebhookWooOrder")

	respBody, err := ioutil.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		logger.Error(err)
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "не удалось прочитать тело запроса"})
		return
	}

	logger.Debug("body\n\t", string(respBody))

	var order struct {
		ID int `json:"id"`
	}
	err = json.Unmarshal(respBody, &order)
	if err != nil || order.ID == 0 {
		logger.Errorf("failed json.Unmarshal(), error: %v", err)
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "не удалось разобрать тело запроса"})
		return
	}

	err = newSyncer().SyncNewOrder(order.ID)
	if err != nil {
		errorText := fmt.Sprintf("Не удалось обработать вебхук на создание заказа: %v", err)
		logger.Error(errorText)
		telegram.SendMessageToTelegramWithLogError(errorText)
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: errorText})
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true})
}

// HandlerWebhookMoysklad принимает вебхук МойСклад об изменении заказа
func HandlerWebhookMoysklad(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerWebhookMoysklad")
	defer logger.Info("End HandlerWebhookMoysklad")

	respBody, err := ioutil.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		logger.Error(err)
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "не удалось прочитать тело запроса"})
		return
	}

	logger.Debug("body\n\t", string(respBody))

	var payload modelsMSAPI.WebhookPayload
	err = json.Unmarshal(respBody, &payload)
	if err != nil {
		logger.Errorf("failed json.Unmarshal(), error: %v", err)
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "не удалось разобрать тело запроса"})
		return
	}

	updated, err := webhook.HandleOrderStateChange(config.GetConfig(), msapi.GetAPI(), wooapi.GetAPI(), &payload, dbGlobal)
	if err != nil {
		errorText := fmt.Sprintf("Не удалось обработать вебхук на изменение заказа: %v", err)
		logger.Error(errorText)
		telegram.SendMessageToTelegramWithLogError(errorText)
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: errorText, Updated: updated})
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Updated: updated})
}
