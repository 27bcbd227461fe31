package sync

import (
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"WooWithMoysklad/internal/stopflag"
	"WooWithMoysklad/pkg/logging"
	"time"

	"github.com/pkg/errors"
)

// SyncProducts - полный прогон каталога МойСклад -> WooCommerce.
// Режим standard ходит страницами по 50, accelerated по 500 с откатом
// на standard после исчерпания повторов.
func (s *Syncer) SyncProducts() (*Stats, error) {

	logger := logging.GetLogger()
	logger.Println("SyncProducts:>Start")
	defer logger.Println("SyncProducts:>End")

	stats := &Stats{}
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	if s.stop.Requested() {
		stats.Stopped = true
		return stats, nil
	}

	err := s.cache.Refresh()
	if err != nil {
		return stats, errors.Wrap(err, "failed in CacheCategory.Refresh()")
	}

	switch s.cfg.PRODUCTSYNC.Mode {
	case MODE_ACCELERATED:
		err = s.syncProductsAccelerated(stats)
	default:
		err = s.syncProductsStandard(stats, 0)
	}

	if errors.Is(err, stopflag.ErrStopped) {
		stats.Stopped = true
		return stats, nil
	}

	return stats, err
}

func (s *Syncer) syncProductsStandard(stats *Stats, offset int) error {

	logger := logging.GetLogger()
	logger.Println("syncProductsStandard:>Start")
	defer logger.Println("syncProductsStandard:>End")

	for {
		result, err := s.productPageWithRetry(BATCH_STANDARD, offset, false)
		if err != nil {
			return errors.Wrapf(err, "не удалось получить страницу товаров, offset:%d", offset)
		}

		if len(result.Rows) == 0 {
			if offset < result.Meta.Size {
				return errors.Errorf("битая страница товаров: rows пустой при size:%d, offset:%d", result.Meta.Size, offset)
			}
			break
		}

		err = s.processPage(result.Rows, stats)
		if err != nil {
			return err
		}

		offset += len(result.Rows)
		if offset >= result.Meta.Size {
			break
		}
		s.sleep(PAGE_DELAY)
	}

	return nil
}

func (s *Syncer) syncProductsAccelerated(stats *Stats) error {

	logger := logging.GetLogger()
	logger.Println("syncProductsAccelerated:>Start")
	defer logger.Println("syncProductsAccelerated:>End")

	offset := 0
	for {
		result, err := s.productPageWithRetry(BATCH_ACCELERATED, offset, true)
		if err != nil {
			if errors.Is(err, stopflag.ErrStopped) {
				return err
			}
			// откат на стандартный режим, накопленная статистика сохраняется
			logger.Errorf("ускоренный режим исчерпал повторы, переключаемся на стандартный, offset:%d, error: %v", offset, err)
			return s.syncProductsStandard(stats, offset)
		}

		if len(result.Rows) == 0 {
			if offset < result.Meta.Size {
				return errors.Errorf("битая страница товаров: rows пустой при size:%d, offset:%d", result.Meta.Size, offset)
			}
			break
		}

		err = s.processPage(result.Rows, stats)
		if err != nil {
			return err
		}

		offset += len(result.Rows)
		if offset >= result.Meta.Size {
			break
		}
		s.sleep(PAGE_DELAY)
	}

	return nil
}

// productPageWithRetry делает до MAX_RETRY попыток получить страницу.
// Пауза в стандартном режиме 2*attempt секунд, в ускоренном 2^attempt,
// при ограничении частоты МойСклад не меньше RATE_LIMIT_DELAY.
func (s *Syncer) productPageWithRetry(limit, offset int, accelerated bool) (*modelsMSAPI.ProductListResult, error) {

	logger := logging.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRY; attempt++ {
		result, err := s.msapi.ProductList(limit, offset)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.Warningf("ошибка при получении страницы товаров, attempt:%d, offset:%d, error: %v", attempt, offset, err)

		if attempt == MAX_RETRY {
			break
		}

		var delay time.Duration
		if accelerated {
			delay = time.Duration(1<<uint(attempt)) * time.Second
		} else {
			delay = time.Duration(2*attempt) * time.Second
		}
		if modelsMSAPI.IsRateLimitError(err) && delay < RATE_LIMIT_DELAY {
			delay = RATE_LIMIT_DELAY
		}
		s.sleep(delay)

		if s.stop.Requested() {
			return nil, stopflag.ErrStopped
		}
	}

	return nil, errors.Wrapf(lastErr, "исчерпаны попытки получить страницу товаров, limit:%d, offset:%d", limit, offset)
}

func (s *Syncer) processPage(rows []*modelsMSAPI.Product, stats *Stats) error {

	logger := logging.GetLogger()

	for _, product := range rows {
		if s.stop.Requested() {
			return stopflag.ErrStopped
		}

		err := s.processProduct(product, stats)
		if err != nil {
			if errors.Is(err, stopflag.ErrStopped) {
				return stopflag.ErrStopped
			}
			stats.Failed++
			logger.Errorf("ошибка при синхронизации товара, Name:%s, ID:%s, error: %v", product.Name, product.ID, err)
		}

		processed := stats.Total()
		switch {
		case processed%50 == 0:
			s.sleep(ITEM_DELAY_50)
		case processed%5 == 0:
			s.sleep(ITEM_DELAY_5)
		}
	}

	return nil
}
