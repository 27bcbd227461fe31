package sync

import (
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func msImage(href, filename string) *modelsMSAPI.Image {
	return &modelsMSAPI.Image{
		Filename: filename,
		Meta:     modelsMSAPI.Meta{Href: href, Type: "image"},
	}
}

func TestSyncImagesUploadsOnce(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)
	env.syncer.cfg.PRODUCTSYNC.SyncImages = 1
	env.syncer.cfg.PRODUCTSYNC.SyncAllImages = 1

	product := msProduct("ms-1", "Чайник", "SKU-1", 100000)
	product.Images = &modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: "https://api.moysklad.ru/api/remap/1.2/entity/product/ms-1/images",
		Type: "image",
	}}
	env.ms.products = []*modelsMSAPI.Product{product}
	env.ms.images[product.Images.Meta.Href] = []*modelsMSAPI.Image{
		msImage("https://api.moysklad.ru/download/img-1", "front.jpg"),
		msImage("https://api.moysklad.ru/download/img-2", "back.jpg"),
	}

	stats, err := env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(1, stats.Created)
	Assert.Equal(2, env.woo.media)

	created, err := env.woo.ProductGetBySku("SKU-1")
	Assert.NoError(err)
	Assert.Len(created.Images, 2)

	// повторный прогон не загружает картинки заново
	stats, err = env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(1, stats.Updated)
	Assert.Equal(2, env.woo.media)
}

func TestSyncImagesOnlyFirstByDefault(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)
	env.syncer.cfg.PRODUCTSYNC.SyncImages = 1

	product := msProduct("ms-1", "Чайник", "SKU-1", 100000)
	product.Images = &modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: "https://api.moysklad.ru/api/remap/1.2/entity/product/ms-1/images",
		Type: "image",
	}}
	env.ms.products = []*modelsMSAPI.Product{product}
	env.ms.images[product.Images.Meta.Href] = []*modelsMSAPI.Image{
		msImage("https://api.moysklad.ru/download/img-1", "front.jpg"),
		msImage("https://api.moysklad.ru/download/img-2", "back.jpg"),
	}

	_, err := env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(1, env.woo.media)
}

func TestSyncImagesResetOnChangedSet(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)
	env.syncer.cfg.PRODUCTSYNC.SyncImages = 1

	product := msProduct("ms-1", "Чайник", "SKU-1", 100000)
	product.Images = &modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: "https://api.moysklad.ru/api/remap/1.2/entity/product/ms-1/images",
		Type: "image",
	}}
	env.ms.products = []*modelsMSAPI.Product{product}
	env.ms.images[product.Images.Meta.Href] = []*modelsMSAPI.Image{
		msImage("https://api.moysklad.ru/download/img-1", "front.jpg"),
	}

	_, err := env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(1, env.woo.media)

	// в МойСклад заменили картинку - старая связка сбрасывается,
	// новая картинка загружается
	env.ms.images[product.Images.Meta.Href] = []*modelsMSAPI.Image{
		msImage("https://api.moysklad.ru/download/img-3", "new.jpg"),
	}

	_, err = env.syncer.SyncProducts()
	Assert.NoError(err)
	Assert.Equal(2, env.woo.media)
}

func TestPrepareProductDataSkipsServiceAttribute(t *testing.T) {
	Assert := assert.New(t)
	env := newTestEnv(t)

	product := msProduct("ms-1", "Чайник", "SKU-1", 100000)
	product.Attributes = []modelsMSAPI.Attribute{
		{Name: "Цвет", Value: "красный"},
		{Name: modelsMSAPI.ATTRIBUTE_PRODUCT_TYPE, Value: "Товар"},
		{Name: "Пустой", Value: ""},
	}

	data := env.syncer.prepareProductData(product, "SKU-1", true)
	if Assert.Len(data.Attributes, 1) {
		Assert.Equal("Цвет", data.Attributes[0].Name)
		Assert.Equal([]string{"красный"}, data.Attributes[0].Options)
	}
}

func TestMimeTypeByFilename(t *testing.T) {
	Assert := assert.New(t)

	Assert.Equal("image/jpeg", mimeTypeByFilename("photo.jpg"))
	Assert.Equal("image/png", mimeTypeByFilename("photo.png"))
	Assert.Equal("image/webp", mimeTypeByFilename("photo.webp"))
	Assert.Equal("image/jpeg", mimeTypeByFilename("noext"))
}
