package cache

import (
	"WooWithMoysklad/internal/database/model/categmap"
	"WooWithMoysklad/pkg/logging"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type CacheCategory interface {
	Refresh() error
	GetWooID(msID string) (int, bool)
	SetWooID(msID string, wooID int)
	SetNotFound(msID string)
	IsNotFound(msID string) bool
}

var cacheCategoryGlobal category

// category - кэш связок категорий на время прогона синхронизации.
// notFound хранит отрицательные результаты, чтобы не дергать Woo повторно.
type category struct {
	db       *sqlx.DB
	wooIDs   map[string]int
	notFound map[string]bool
}

func (c *category) Refresh() error {

	logger := logging.GetLogger()
	logger.Info("Start CacheCategory.Refresh")
	defer logger.Info("End CacheCategory.Refresh")

	c.wooIDs = make(map[string]int)
	c.notFound = make(map[string]bool)

	mappingsInDb, err := categmap.SelectAll(c.db)
	if err != nil {
		return errors.Wrap(err, "failed in categmap.SelectAll()")
	}

	for _, mapping := range mappingsInDb {
		c.wooIDs[mapping.MsID] = mapping.WooID
	}
	logger.Infof("Создан кэш категорий, длина: %d", len(c.wooIDs))

	return nil
}

func (c *category) GetWooID(msID string) (int, bool) {
	wooID, found := c.wooIDs[msID]
	return wooID, found
}

func (c *category) SetWooID(msID string, wooID int) {
	c.wooIDs[msID] = wooID
	delete(c.notFound, msID)
}

func (c *category) SetNotFound(msID string) {
	c.notFound[msID] = true
}

func (c *category) IsNotFound(msID string) bool {
	return c.notFound[msID]
}

func NewCacheCategory(db *sqlx.DB) CacheCategory {
	cacheCategoryGlobal = category{
		db:       db,
		wooIDs:   make(map[string]int),
		notFound: make(map[string]bool),
	}
	return &cacheCategoryGlobal
}

func GetCacheCategory() CacheCategory {
	return &cacheCategoryGlobal
}
