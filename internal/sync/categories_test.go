package sync

import (
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func msFolder(id, name, parentID string) *modelsMSAPI.ProductFolder {
	folder := &modelsMSAPI.ProductFolder{ID: id, Name: name}
	if parentID != "" {
		folder.ProductFolder = &modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
			Href: "https://api.moysklad.ru/api/remap/1.2/entity/productfolder/" + parentID,
			Type: "productfolder",
		}}
	}
	return folder
}

func TestSortFoldersParentsFirst(t *testing.T) {
	Assert := assert.New(t)

	// ребенок идет в списке раньше родителя
	folders := []*modelsMSAPI.ProductFolder{
		msFolder("child", "Чайники", "root"),
		msFolder("grandchild", "Электрические", "child"),
		msFolder("root", "Посуда", ""),
	}

	sorted := sortFoldersParentsFirst(folders)
	if Assert.Len(sorted, 3) {
		Assert.Equal("root", sorted[0].ID)
		Assert.Equal("child", sorted[1].ID)
		Assert.Equal("grandchild", sorted[2].ID)
	}
}

func TestSyncCategoriesCreatesTree(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)

	env.ms.folders = []*modelsMSAPI.ProductFolder{
		msFolder("child", "Чайники", "root"),
		msFolder("root", "Посуда", ""),
	}

	stats, err := env.syncer.SyncCategories()
	Assert.NoError(err)
	Assert.Equal(2, stats.Created)
	Assert.Equal(0, stats.Failed)

	categories, err := env.woo.ProductCategoryListAll()
	Assert.NoError(err)
	Assert.Len(categories, 2)

	rootWooID, found := env.syncer.cache.GetWooID("root")
	Assert.True(found)
	childWooID, found := env.syncer.cache.GetWooID("child")
	Assert.True(found)

	child, err := env.woo.ProductCategoryGet(childWooID)
	Assert.NoError(err)
	Assert.Equal(rootWooID, child.Parent)

	// повторный прогон обновляет, не создает
	stats, err = env.syncer.SyncCategories()
	Assert.NoError(err)
	Assert.Equal(0, stats.Created)
	Assert.Equal(2, stats.Updated)
}

func TestProductGetsCategoryFromCache(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)

	env.ms.folders = []*modelsMSAPI.ProductFolder{msFolder("root", "Посуда", "")}
	_, err := env.syncer.SyncCategories()
	Assert.NoError(err)

	product := msProduct("ms-1", "Чайник", "SKU-1", 100000)
	product.ProductFolder = &modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: "https://api.moysklad.ru/api/remap/1.2/entity/productfolder/root",
		Type: "productfolder",
	}}
	env.ms.products = []*modelsMSAPI.Product{product}

	stats, err := env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(1, stats.Created)

	created, err := env.woo.ProductGetBySku("SKU-1")
	Assert.NoError(err)
	rootWooID, _ := env.syncer.cache.GetWooID("root")
	if Assert.Len(created.Categories, 1) {
		Assert.Equal(rootWooID, created.Categories[0].Id)
	}
}
