package msapi

import (
	"WooWithMoysklad/internal/msapi/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductListParsesPage(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Assert.Equal("/entity/product", r.URL.Path)
		Assert.Equal("50", r.URL.Query().Get("limit"))
		Assert.Equal("100", r.URL.Query().Get("offset"))

		user, pass, ok := r.BasicAuth()
		Assert.True(ok)
		Assert.Equal("login", user)
		Assert.Equal("pass", pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"meta": {"size": 240, "limit": 50, "offset": 100},
			"rows": [
				{"id": "ms-1", "name": "Чайник", "article": "SKU-1", "salePrices": [{"value": 150000}]},
				{"id": "ms-2", "name": "Доставка", "attributes": [{"name": "Тип номенклатуры", "value": "Услуга"}]}
			]
		}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, "login", "pass")

	result, err := api.ProductList(50, 100)
	Assert.NoError(err)
	Assert.Equal(240, result.Meta.Size)
	if Assert.Len(result.Rows, 2) {
		Assert.Equal("Чайник", result.Rows[0].Name)
		Assert.Equal(int64(150000), result.Rows[0].SalePrices[0].Value)
		Assert.False(result.Rows[0].IsService())
		Assert.True(result.Rows[1].IsService())
	}
}

func TestProductListRateLimitError(t *testing.T) {
	Assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors": [{"error": "Превышен лимит запросов", "code": 1049}]}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, "login", "pass")

	_, err := api.ProductList(50, 0)
	Assert.Error(err)
	Assert.True(models.IsRateLimitError(err))

	ErrorMS, ok := err.(*models.ErrorMS)
	if Assert.True(ok) {
		Assert.True(ErrorMS.IsRateLimit())
		Assert.Equal(http.StatusTooManyRequests, ErrorMS.StatusCode)
	}
}

func TestIDFromHref(t *testing.T) {
	Assert := assert.New(t)

	Assert.Equal("abc-123",
		models.IDFromHref("https://api.moysklad.ru/api/remap/1.2/entity/productfolder/abc-123", "productfolder"))
	Assert.Equal("s1",
		models.IDFromHref("https://api.moysklad.ru/api/remap/1.2/entity/customerorder/metadata/states/s1", "states"))
	Assert.Equal("", models.IDFromHref("", "productfolder"))
	Assert.Equal("", models.IDFromHref("https://api.moysklad.ru/api/remap/1.2/entity/product/x", "productfolder"))
}
