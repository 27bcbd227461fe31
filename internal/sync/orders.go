package sync

import (
	"WooWithMoysklad/internal/database/model/ordermap"
	"WooWithMoysklad/internal/database/model/productmap"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	modelsWOOAPI "WooWithMoysklad/internal/wooapi/models"
	optionsWoo "WooWithMoysklad/internal/wooapi/options"
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SyncOrders - выгрузка свежих заказов Woo в МойСклад.
// Заказ уходит не раньше чем через ORDERSYNC.DelayMinutes после создания,
// чтобы покупатель успел его поменять.
func (s *Syncer) SyncOrders() (*Stats, error) {

	logger := logging.GetLogger()
	logger.Println("SyncOrders:>Start")
	defer logger.Println("SyncOrders:>End")

	stats := &Stats{}
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	if s.cfg.ORDERSYNC.Enabled != 1 {
		logger.Info("синхронизация заказов выключена")
		return stats, nil
	}

	orders, err := s.wooapi.OrderList(optionsWoo.PerPage(50))
	if err != nil {
		return stats, errors.Wrap(err, "failed in OrderList()")
	}
	logger.Infof("Получено заказов из Woo: %d", len(orders))

	for _, order := range orders {
		if s.stop.Requested() {
			stats.Stopped = true
			return stats, nil
		}

		synced, err := s.SyncOrder(order)
		if err != nil {
			stats.Failed++
			logger.Errorf("ошибка при синхронизации заказа, ID:%d, error: %v", order.ID, err)
			continue
		}
		switch synced {
		case ORDER_CREATED:
			stats.Created++
		case ORDER_UPDATED:
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	return stats, nil
}

const (
	ORDER_SKIPPED = 0
	ORDER_CREATED = 1
	ORDER_UPDATED = 2
)

// SyncOrder отправляет один заказ: новый создается в МойСклад,
// уже связанному обновляется статус
func (s *Syncer) SyncOrder(order *modelsWOOAPI.Order) (int, error) {

	logger := logging.GetLogger()
	logger.Debugf("SyncOrder, ID:%d, Status:%s", order.ID, order.Status)

	if s.cfg.ORDERSYNC.Enabled != 1 {
		return ORDER_SKIPPED, nil
	}

	mapping := ordermap.OrderMapping{WooID: order.ID}
	mappingsInDb, err := mapping.SelectByWooID(s.db)
	if err != nil {
		return ORDER_SKIPPED, errors.Wrap(err, "failed in OrderMapping.SelectByWooID()")
	}

	if len(mappingsInDb) > 0 {
		if s.cfg.ORDERSYNC.StatusEnabled != 1 || mappingsInDb[0].Status.String == order.Status {
			return ORDER_SKIPPED, nil
		}
		err = s.pushOrderStatus(order.ID, order.Status)
		if err != nil {
			return ORDER_SKIPPED, err
		}
		return ORDER_UPDATED, nil
	}

	if !s.orderDelayPassed(order) {
		logger.Debugf("заказ слишком свежий, отложен, ID:%d", order.ID)
		return ORDER_SKIPPED, nil
	}

	err = s.createOrder(order)
	if err != nil {
		return ORDER_SKIPPED, err
	}
	return ORDER_CREATED, nil
}

// SyncNewOrder вытягивает заказ из Woo и выгружает его, при
// невыдержанной паузе откладывается через time.AfterFunc
func (s *Syncer) SyncNewOrder(orderID int) error {

	logger := logging.GetLogger()
	logger.Println("SyncNewOrder:>Start")
	defer logger.Println("SyncNewOrder:>End")

	if s.cfg.ORDERSYNC.Enabled != 1 {
		logger.Info("синхронизация заказов выключена")
		return nil
	}

	order, err := s.wooapi.OrderGet(orderID)
	if err != nil {
		return errors.Wrapf(err, "failed in OrderGet(), ID:%d", orderID)
	}

	if !s.orderDelayPassed(order) {
		remaining := time.Duration(s.cfg.ORDERSYNC.DelayMinutes) * time.Minute
		if created, err := time.Parse("2006-01-02T15:04:05", order.DateCreated); err == nil {
			remaining = remaining - time.Since(created)
		}
		logger.Infof("заказ отложен на %s, ID:%d", remaining, orderID)
		time.AfterFunc(remaining, func() {
			_, err := s.SyncOrder(order)
			if err != nil {
				logger.Errorf("ошибка при отложенной синхронизации заказа, ID:%d, error: %v", orderID, err)
			}
		})
		return nil
	}

	_, err = s.SyncOrder(order)
	return err
}

// orderDelayPassed проверяет выдержку ORDERSYNC.DelayMinutes
func (s *Syncer) orderDelayPassed(order *modelsWOOAPI.Order) bool {

	logger := logging.GetLogger()

	if s.cfg.ORDERSYNC.DelayMinutes <= 0 {
		return true
	}

	created, err := time.Parse("2006-01-02T15:04:05", order.DateCreated)
	if err != nil {
		logger.Warningf("не удалось разобрать date_created:%s, error: %v", order.DateCreated, err)
		return true
	}

	return time.Since(created) >= time.Duration(s.cfg.ORDERSYNC.DelayMinutes)*time.Minute
}

func (s *Syncer) createOrder(order *modelsWOOAPI.Order) error {

	logger := logging.GetLogger()
	logger.Debugf("createOrder, ID:%d", order.ID)

	agent, err := s.findOrCreateCustomer(order)
	if err != nil {
		return errors.Wrap(err, "failed in findOrCreateCustomer()")
	}

	positions, err := s.orderPositions(order)
	if err != nil {
		return errors.Wrap(err, "failed in orderPositions()")
	}
	if len(positions) == 0 {
		return errors.New("в заказе нет ни одной позиции, известной МойСклад")
	}

	msOrder := &modelsMSAPI.CustomerOrder{
		Name:         fmt.Sprintf("%s%s", s.cfg.ORDERSYNC.Prefix, order.Number),
		ExternalCode: strconv.Itoa(order.ID),
		Agent:        &modelsMSAPI.MetaRef{Meta: agent.Meta},
		Positions:    positions,
	}

	if created, err := time.Parse("2006-01-02T15:04:05", order.DateCreated); err == nil {
		msOrder.Moment = created.Format("2006-01-02 15:04:05")
	}

	if organizationID := s.cfg.ORDERSYNC.OrganizationID; organizationID != "" {
		meta := s.msapi.EntityMeta("organization", organizationID)
		msOrder.Organization = &meta
	}
	if warehouseID := s.cfg.ORDERSYNC.WarehouseID; warehouseID != "" {
		meta := s.msapi.EntityMeta("store", warehouseID)
		msOrder.Store = &meta
	}
	if stateID := s.cfg.StatusMapping()[order.Status]; stateID != "" {
		meta := s.msapi.StateMeta(stateID)
		msOrder.State = &meta
	}

	createdOrder, err := s.msapi.OrderCreate(msOrder)
	if err != nil {
		return errors.Wrap(err, "failed in OrderCreate()")
	}

	mapping := ordermap.OrderMapping{
		WooID:  order.ID,
		MsID:   createdOrder.ID,
		MsName: sql.NullString{String: createdOrder.Name, Valid: true},
		Status: sql.NullString{String: order.Status, Valid: true},
	}
	err = mapping.Save(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in OrderMapping.Save()")
	}

	// метка на стороне Woo, ошибка не критична - связка уже в базе
	_, err = s.wooapi.OrderUpdate(&modelsWOOAPI.Order{
		ID:       order.ID,
		MetaData: []modelsWOOAPI.MetaData{{Key: modelsWOOAPI.META_MS_ORDER_ID, Value: createdOrder.ID}},
	})
	if err != nil {
		logger.Errorf("failed in OrderUpdate(), ID:%d, error: %v", order.ID, err)
	}

	err = s.wooapi.OrderNoteAdd(order.ID, fmt.Sprintf("Заказ выгружен в МойСклад: %s", createdOrder.Name))
	if err != nil {
		logger.Errorf("failed in OrderNoteAdd(), ID:%d, error: %v", order.ID, err)
	}

	logger.Infof("заказ выгружен в МойСклад, WooID:%d, MsID:%s, Name:%s", order.ID, createdOrder.ID, createdOrder.Name)
	return nil
}

// findOrCreateCustomer - контрагент по email, синтезируется для гостевых заказов
func (s *Syncer) findOrCreateCustomer(order *modelsWOOAPI.Order) (*modelsMSAPI.Counterparty, error) {

	var email, name, phone string
	if order.Billing != nil {
		email = order.Billing.Email
		phone = order.Billing.Phone
		name = strings.TrimSpace(fmt.Sprintf("%s %s", order.Billing.FirstName, order.Billing.LastName))
	}
	if email == "" {
		email = fmt.Sprintf("customer_%d@example.com", order.CustomerID)
	}
	if name == "" {
		name = email
	}

	counterparty := &modelsMSAPI.Counterparty{
		Name:         name,
		Email:        email,
		Phone:        phone,
		ExternalCode: fmt.Sprintf("woo-customer-%d", order.CustomerID),
	}
	if customerGroupID := s.cfg.ORDERSYNC.CustomerGroupID; customerGroupID != "" {
		meta := s.msapi.EntityMeta("group", customerGroupID)
		counterparty.Group = &meta
	}

	return s.msapi.CounterpartyFindOrCreate(counterparty)
}

// orderPositions - позиции заказа, модификация предпочтительнее родителя
func (s *Syncer) orderPositions(order *modelsWOOAPI.Order) ([]modelsMSAPI.Position, error) {

	logger := logging.GetLogger()

	var positions []modelsMSAPI.Position
	for i := range order.LineItems {
		item := &order.LineItems[i]

		assortment, err := s.positionAssortment(item)
		if err != nil {
			return nil, errors.Wrapf(err, "failed in positionAssortment(), ProductID:%d", item.ProductID)
		}
		if assortment == nil {
			logger.Warningf("позиция не известна МойСклад, пропускаем, ProductID:%d, Name:%s", item.ProductID, item.Name)
			continue
		}

		positions = append(positions, modelsMSAPI.Position{
			Quantity:   item.Quantity,
			Price:      int64(item.Price*100 + 0.5),
			Assortment: *assortment,
		})
	}

	return positions, nil
}

func (s *Syncer) positionAssortment(item *modelsWOOAPI.LineItem) (*modelsMSAPI.MetaRef, error) {

	if item.VariationID != 0 {
		variations, err := s.wooapi.ProductVariationList(item.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "failed in ProductVariationList()")
		}
		for _, variation := range variations {
			if variation.ID == item.VariationID {
				if msVariantID := variation.MsVariantID(); msVariantID != "" {
					meta := s.msapi.AssortmentMeta("variant", msVariantID)
					return &meta, nil
				}
				break
			}
		}
	}

	mapping := productmap.ProductMapping{WooID: item.ProductID}
	mappingsInDb, err := mapping.SelectByWooID(s.db)
	if err != nil {
		return nil, errors.Wrap(err, "failed in ProductMapping.SelectByWooID()")
	}
	if len(mappingsInDb) == 0 {
		return nil, nil
	}

	meta := s.msapi.AssortmentMeta("product", mappingsInDb[0].MsID)
	return &meta, nil
}

// pushOrderStatus обновляет статус связанного заказа в МойСклад
func (s *Syncer) pushOrderStatus(wooOrderID int, status string) error {

	logger := logging.GetLogger()
	logger.Debugf("pushOrderStatus, WooID:%d, Status:%s", wooOrderID, status)

	if s.cfg.ORDERSYNC.StatusEnabled != 1 {
		return nil
	}

	mapping := ordermap.OrderMapping{WooID: wooOrderID}
	mappingsInDb, err := mapping.SelectByWooID(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in OrderMapping.SelectByWooID()")
	}
	if len(mappingsInDb) == 0 {
		return errors.Errorf("заказ не связан с МойСклад, WooID:%d", wooOrderID)
	}

	stateID := s.cfg.StatusMapping()[status]
	if stateID == "" {
		logger.Debugf("статус не входит в таблицу соответствий, пропускаем, Status:%s", status)
		return nil
	}

	stateMeta := s.msapi.StateMeta(stateID)
	_, err = s.msapi.OrderUpdate(mappingsInDb[0].MsID, &modelsMSAPI.CustomerOrder{State: &stateMeta})
	if err != nil {
		return errors.Wrap(err, "failed in OrderUpdate()")
	}

	saved := mappingsInDb[0]
	saved.Status = sql.NullString{String: status, Valid: true}
	err = saved.Save(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in OrderMapping.Save()")
	}

	return nil
}
