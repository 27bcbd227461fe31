package wooapi

import (
	"WooWithMoysklad/internal/wooapi/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAPI(serverURL string) WOOAPI {
	return NewAPI(serverURL, "ck_test", "cs_test", "admin", "secret", 100)
}

func TestProductGetBySku(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Assert.Equal("/wp-json/wc/v3/products", r.URL.Path)
		Assert.Equal("SKU-1", r.URL.Query().Get("sku"))
		Assert.Equal("ck_test", r.URL.Query().Get("consumer_key"))
		Assert.Equal("cs_test", r.URL.Query().Get("consumer_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 101, "name": "Чайник", "sku": "SKU-1", "meta_data": [{"key": "_ms_product_id", "value": "ms-1"}]}]`))
	}))
	defer server.Close()

	api := newTestAPI(server.URL)

	product, err := api.ProductGetBySku("SKU-1")
	Assert.NoError(err)
	if Assert.NotNil(product) {
		Assert.Equal(101, product.ID)
		Assert.Equal("ms-1", models.MetaValue(product.MetaData, models.META_MS_PRODUCT_ID))
	}

	// пустой SKU не уходит в API
	product, err = api.ProductGetBySku("")
	Assert.NoError(err)
	Assert.Nil(product)
}

func TestProductGetBySkuNotFound(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	api := newTestAPI(server.URL)

	product, err := api.ProductGetBySku("SKU-X")
	Assert.NoError(err)
	Assert.Nil(product)
}

func TestProductCategoryAddTermExists(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "term_exists", "message": "Элемент с указанным именем уже существует", "data": {"status": 400, "resource_id": 55}}`))
	}))
	defer server.Close()

	api := newTestAPI(server.URL)

	_, resourceID, err := api.ProductCategoryAdd(&models.ProductCategory{Name: "Посуда"})
	Assert.Error(err)
	Assert.Equal(55, resourceID)

	ErrorWoo, ok := err.(*models.ErrorWoo)
	if Assert.True(ok) {
		Assert.Equal("term_exists", ErrorWoo.Code)
	}
}

func TestProductAddError(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code": "woocommerce_rest_cannot_create", "message": "Извините, вы не можете создавать записи", "data": {"status": 401}}`))
	}))
	defer server.Close()

	api := newTestAPI(server.URL)

	_, err := api.ProductAdd(&models.Product{Name: "Чайник"})
	Assert.Error(err)

	ErrorWoo, ok := err.(*models.ErrorWoo)
	if Assert.True(ok) {
		Assert.Equal("woocommerce_rest_cannot_create", ErrorWoo.Code)
		Assert.Equal(401, ErrorWoo.Data.Status)
	}
}

func TestMediaUploadBasicAuth(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Assert.Equal("/wp-json/wp/v2/media", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		Assert.True(ok)
		Assert.Equal("admin", user)
		Assert.Equal("secret", pass)
		Assert.Equal("image/jpeg", r.Header.Get("Content-Type"))
		Assert.Contains(r.Header.Get("Content-Disposition"), `filename="front.jpg"`)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 9001, "source_url": "https://shop.example.com/media/front.jpg"}`))
	}))
	defer server.Close()

	api := newTestAPI(server.URL)

	media, err := api.MediaUpload("front.jpg", "image/jpeg", []byte("image-bytes"))
	Assert.NoError(err)
	Assert.Equal(9001, media.Id)
}
