package webhook

import (
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/database/model/ordermap"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	modelsWOOAPI "WooWithMoysklad/internal/wooapi/models"
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// MSOrders - часть API МойСклад, нужная для обработки вебхука
type MSOrders interface {
	OrderGet(ID string) (*modelsMSAPI.CustomerOrder, error)
}

// WooOrders - часть API Woo, нужная для обработки вебхука
type WooOrders interface {
	OrderGet(ID int) (*modelsWOOAPI.Order, error)
	OrderUpdate(o *modelsWOOAPI.Order) (*modelsWOOAPI.Order, error)
}

// HandleOrderStateChange обрабатывает вебхук МойСклад об изменении заказа.
// Статус переносится в Woo по обратной таблице соответствий, заказы с
// несвязанным статусом пропускаются. Возвращает количество обновленных заказов.
func HandleOrderStateChange(cfg *config.Config, MSAPI MSOrders, WOOAPI WooOrders, payload *modelsMSAPI.WebhookPayload, db *sqlx.DB) (int, error) {

	logger := logging.GetLogger()
	logger.Println("Start HandleOrderStateChange")
	defer logger.Println("End HandleOrderStateChange")

	if cfg.ORDERSYNC.StatusFromMS != 1 {
		logger.Info("перенос статусов из МойСклад выключен")
		return 0, nil
	}

	reverse := cfg.ReverseStatusMapping()

	updated := 0
	for _, event := range payload.Events {
		if event.Meta.Type != "customerorder" {
			logger.Debugf("событие не по заказу, пропускаем, Type:%s", event.Meta.Type)
			continue
		}
		if !strings.EqualFold(event.Action, "UPDATE") {
			logger.Debugf("действие не UPDATE, пропускаем, Action:%s", event.Action)
			continue
		}

		order, err := MSAPI.OrderGet(event.EntityID)
		if err != nil {
			return updated, errors.Wrapf(err, "failed MSAPI.OrderGet(%s)", event.EntityID)
		}

		stateID := order.StateID()
		wooStatus := reverse[stateID]
		if wooStatus == "" {
			logger.Infof("статус МойСклад не связан со статусом Woo, пропускаем, StateID:%s", stateID)
			continue
		}

		mapping := ordermap.OrderMapping{MsID: order.ID}
		mappingsInDb, err := mapping.SelectByMsID(db)
		if err != nil {
			return updated, errors.Wrap(err, "failed in OrderMapping.SelectByMsID()")
		}

		var saved *ordermap.OrderMapping
		if len(mappingsInDb) > 0 {
			saved = mappingsInDb[0]
		} else if wooID, convErr := strconv.Atoi(order.ExternalCode); convErr == nil && wooID > 0 {
			// связки в базе нет, восстанавливаем по externalCode
			logger.Infof("связка восстановлена по externalCode, MsID:%s, WooID:%d", order.ID, wooID)
			saved = &ordermap.OrderMapping{WooID: wooID, MsID: order.ID}
		} else {
			logger.Infof("заказ МойСклад не связан с заказом Woo, пропускаем, MsID:%s", order.ID)
			continue
		}

		// сравниваем с текущим статусом заказа в Woo, статус в связке
		// мог устареть после ручной смены на стороне магазина
		wooOrder, err := WOOAPI.OrderGet(saved.WooID)
		if err != nil {
			return updated, errors.Wrapf(err, "failed WOOAPI.OrderGet(), WooID:%d", saved.WooID)
		}
		if wooOrder.Status == wooStatus {
			logger.Debugf("статус уже актуален, пропускаем, WooID:%d, Status:%s", saved.WooID, wooStatus)
			continue
		}

		_, err = WOOAPI.OrderUpdate(&modelsWOOAPI.Order{ID: saved.WooID, Status: wooStatus})
		if err != nil {
			return updated, errors.Wrapf(err, "failed WOOAPI.OrderUpdate(), WooID:%d", saved.WooID)
		}

		saved.Status = sql.NullString{String: wooStatus, Valid: true}
		err = saved.Save(db)
		if err != nil {
			return updated, errors.Wrap(err, "failed in OrderMapping.Save()")
		}

		logger.Infof("статус заказа обновлен из МойСклад, WooID:%d, Status:%s", saved.WooID, wooStatus)
		updated++
	}

	return updated, nil
}
