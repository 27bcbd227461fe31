package sync

import (
	"WooWithMoysklad/internal/cache"
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/msapi"
	"WooWithMoysklad/internal/stopflag"
	"WooWithMoysklad/internal/wooapi"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	MODE_STANDARD    = "standard"
	MODE_ACCELERATED = "accelerated"

	BATCH_STANDARD    = 50
	BATCH_ACCELERATED = 500

	MAX_RETRY = 3

	PAGE_DELAY       = 1 * time.Second
	ITEM_DELAY_5     = 200 * time.Millisecond
	ITEM_DELAY_50    = 500 * time.Millisecond
	RATE_LIMIT_DELAY = 5 * time.Second
)

// Syncer - движок синхронизации МойСклад -> WooCommerce.
// sleep подменяется в тестах, чтобы не ждать бэкофф по-настоящему.
type Syncer struct {
	cfg    *config.Config
	msapi  msapi.MSAPI
	wooapi wooapi.WOOAPI
	db     *sqlx.DB
	cache  cache.CacheCategory
	stop   *stopflag.Flag
	sleep  func(time.Duration)
}

func NewSyncer(cfg *config.Config, MSAPI msapi.MSAPI, WOOAPI wooapi.WOOAPI, db *sqlx.DB, cacheCategory cache.CacheCategory, stop *stopflag.Flag) *Syncer {
	return &Syncer{
		cfg:    cfg,
		msapi:  MSAPI,
		wooapi: WOOAPI,
		db:     db,
		cache:  cacheCategory,
		stop:   stop,
		sleep:  time.Sleep,
	}
}

type Stats struct {
	Created int
	Updated int
	Skipped int
	Failed  int
	Stopped bool
	Elapsed time.Duration
}

func (s *Stats) Total() int {
	return s.Created + s.Updated + s.Skipped + s.Failed
}

func (s *Stats) Report() string {
	report := fmt.Sprintf("Синхронизация завершена за %s\nСоздано: %d\nОбновлено: %d\nПропущено: %d\nОшибок: %d",
		s.Elapsed.Round(time.Second), s.Created, s.Updated, s.Skipped, s.Failed)
	if s.Stopped {
		report = report + "\nОстановлена по запросу"
	}
	return report
}
