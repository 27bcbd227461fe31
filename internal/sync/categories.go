package sync

import (
	"WooWithMoysklad/internal/database/model/categmap"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	modelsWOOAPI "WooWithMoysklad/internal/wooapi/models"
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// SyncCategories - выгрузка дерева групп товаров МойСклад в категории Woo.
// Родители обрабатываются раньше детей, чтобы parent уже был известен.
func (s *Syncer) SyncCategories() (*Stats, error) {

	logger := logging.GetLogger()
	logger.Println("SyncCategories:>Start")
	defer logger.Println("SyncCategories:>End")

	stats := &Stats{}
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	folders, err := s.msapi.ProductFolderListAll()
	if err != nil {
		return stats, errors.Wrap(err, "failed in ProductFolderListAll()")
	}
	logger.Infof("Получено групп товаров из МойСклад: %d", len(folders))

	err = s.cache.Refresh()
	if err != nil {
		return stats, errors.Wrap(err, "failed in CacheCategory.Refresh()")
	}

	for _, folder := range sortFoldersParentsFirst(folders) {
		if s.stop.Requested() {
			stats.Stopped = true
			return stats, nil
		}

		err := s.syncCategory(folder, stats)
		if err != nil {
			stats.Failed++
			logger.Errorf("ошибка при синхронизации категории, Name:%s, ID:%s, error: %v", folder.Name, folder.ID, err)
		}
	}

	return stats, nil
}

func (s *Syncer) syncCategory(folder *modelsMSAPI.ProductFolder, stats *Stats) error {

	logger := logging.GetLogger()
	logger.Debugf("syncCategory, Name:%s, ID:%s", folder.Name, folder.ID)

	parentWooID := 0
	if parentID := folder.ParentID(); parentID != "" {
		wooID, found := s.cache.GetWooID(parentID)
		if !found {
			logger.Warningf("родительская категория еще не синхронизирована, ParentID:%s", parentID)
		} else {
			parentWooID = wooID
		}
	}

	wooID, found := s.cache.GetWooID(folder.ID)
	if found {
		_, err := s.wooapi.ProductCategoryUpdate(&modelsWOOAPI.ProductCategory{
			ID:     wooID,
			Name:   folder.Name,
			Parent: parentWooID,
		})
		if err != nil {
			return errors.Wrapf(err, "failed in ProductCategoryUpdate(), WooID:%d", wooID)
		}
		stats.Updated++
	} else {
		category, resourceID, err := s.wooapi.ProductCategoryAdd(&modelsWOOAPI.ProductCategory{
			Name:   folder.Name,
			Parent: parentWooID,
		})
		if err != nil {
			if resourceID == 0 {
				return errors.Wrap(err, "failed in ProductCategoryAdd()")
			}
			// term_exists - категория с таким именем уже есть, привязываемся к ней
			logger.Infof("категория уже существует в Woo, привязываем, Name:%s, WooID:%d", folder.Name, resourceID)
			wooID = resourceID
		} else {
			wooID = category.ID
		}
		stats.Created++
	}

	mapping := categmap.CategoryMapping{
		MsID:  folder.ID,
		WooID: wooID,
		Name:  sql.NullString{String: folder.Name, Valid: true},
	}
	err := mapping.Save(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in CategoryMapping.Save()")
	}
	s.cache.SetWooID(folder.ID, wooID)

	return nil
}

// sortFoldersParentsFirst раскладывает папки по уровням вложенности
func sortFoldersParentsFirst(folders []*modelsMSAPI.ProductFolder) []*modelsMSAPI.ProductFolder {

	sorted := make([]*modelsMSAPI.ProductFolder, 0, len(folders))
	placed := make(map[string]bool, len(folders))
	byID := make(map[string]*modelsMSAPI.ProductFolder, len(folders))
	for _, folder := range folders {
		byID[folder.ID] = folder
	}

	for len(sorted) < len(folders) {
		progress := false
		for _, folder := range folders {
			if placed[folder.ID] {
				continue
			}
			parentID := folder.ParentID()
			if parentID == "" || placed[parentID] || byID[parentID] == nil {
				sorted = append(sorted, folder)
				placed[folder.ID] = true
				progress = true
			}
		}
		if !progress {
			// цикл в данных, добиваем остаток как есть
			for _, folder := range folders {
				if !placed[folder.ID] {
					sorted = append(sorted, folder)
					placed[folder.ID] = true
				}
			}
		}
	}

	return sorted
}
