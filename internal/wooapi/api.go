package wooapi

import (
	"WooWithMoysklad/internal/wooapi/models"
	optionsWoo "WooWithMoysklad/internal/wooapi/options"
	"WooWithMoysklad/pkg/logging"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type WOOAPI interface {
	ProductGet(ID int) (*models.Product, error)
	ProductGetBySku(sku string) (*models.Product, error)
	ProductList(opts ...optionsWoo.Option) ([]*models.Product, error)
	ProductAdd(p *models.Product) (*models.Product, error)
	ProductUpdate(p *models.Product) (*models.Product, error)

	ProductVariationList(productID int) ([]*models.ProductVariation, error)
	ProductVariationAdd(productID int, v *models.ProductVariation) (*models.ProductVariation, error)
	ProductVariationUpdate(productID int, v *models.ProductVariation) (*models.ProductVariation, error)

	ProductCategoryGet(ID int) (*models.ProductCategory, error)
	ProductCategoryListAll() ([]*models.ProductCategory, error)
	ProductCategoryAdd(c *models.ProductCategory) (*models.ProductCategory, int, error)
	ProductCategoryUpdate(pc *models.ProductCategory) (*models.ProductCategory, error)

	OrderGet(ID int) (*models.Order, error)
	OrderList(opts ...optionsWoo.Option) ([]*models.Order, error)
	OrderUpdate(o *models.Order) (*models.Order, error)
	OrderNoteAdd(orderID int, note string) error

	MediaUpload(filename string, mimeType string, data []byte) (*models.Media, error)
}

var wooapiGlobal *wooapi

type wooapi struct {
	url         string
	key         string
	secret      string
	user        string // для wp/v2 media
	pass        string
	client      *http.Client
	rps         int
	requestTime time.Time
}

func (w *wooapi) CheckRPS() {
	logger := logging.GetLogger()

	TimeRequest := w.requestTime
	TimeNow := time.Now()
	TimeDiff := time.Now().Sub(w.requestTime)
	TimeRPS := time.Second / time.Duration(w.rps)

	if TimeDiff <= TimeRPS {
		timeSleep := TimeRequest.Add(TimeRPS).Sub(TimeNow)
		logger.Debugf("Over RPS, timeSleep: %s", timeSleep)
		time.Sleep(timeSleep)
	}
}

func (w *wooapi) request(method, endpoint string, params url.Values, body interface{}, wantStatus int) ([]byte, error) {
	logger := logging.GetLogger()
	w.CheckRPS()
	defer func() { w.requestTime = time.Now() }()

	requestURL := fmt.Sprintf("%s/wp-json/wc/v3/%s", w.url, endpoint)
	logger.Debugf("Endpoint: %s %s", method, requestURL)

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка при json.Marshal тела запроса")
		}
		logger.Debugf("Request body: %s", b)
		reqBody = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, requestURL, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed http.NewRequest")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("consumer_key", w.key)
	params.Set("consumer_secret", w.secret)
	req.URL.RawQuery = params.Encode()

	r, err := w.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при отправке запроса в Woo Api, endpoint:%s", endpoint)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(r.Body)

	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при ioutil.ReadAll(r.Body): error: %v", err)
	}
	logger.Debugf(string(bodyBytes))

	if r.StatusCode != wantStatus {
		var ErrorWoo models.ErrorWoo
		err := json.Unmarshal(bodyBytes, &ErrorWoo)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
		}
		return nil, &ErrorWoo
	}

	return bodyBytes, nil
}

func (w *wooapi) ProductGet(ID int) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductGet:>Start")
	defer logger.Println("ProductGet:>End")

	bodyBytes, err := w.request("GET", fmt.Sprintf("products/%d", ID), nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = json.Unmarshal(bodyBytes, &product)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &product, nil
}

// ProductGetBySku ищет товар по SKU, nil если не найден
func (w *wooapi) ProductGetBySku(sku string) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductGetBySku:>Start")
	defer logger.Println("ProductGetBySku:>End")

	if sku == "" {
		return nil, nil
	}

	products, err := w.ProductList(optionsWoo.Sku(sku))
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при поиске товара по SKU:%s", sku)
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products[0], nil
}

func (w *wooapi) ProductList(opts ...optionsWoo.Option) ([]*models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductList:>Start")
	defer logger.Println("ProductList:>End")

	params := url.Values{}
	Option := new(optionsWoo.OptionStruct)
	for _, field := range opts {
		field(Option)
		params.Add(Option.Key, Option.Value)
	}

	bodyBytes, err := w.request("GET", "products", params, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var products []*models.Product
	err = json.Unmarshal(bodyBytes, &products)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return products, nil
}

func (w *wooapi) ProductAdd(p *models.Product) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductAdd:>Start")
	defer logger.Println("ProductAdd:>End")

	if p.Name == "" {
		return nil, errors.New("не указано имя продукта")
	}

	bodyBytes, err := w.request("POST", "products", nil, p, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = json.Unmarshal(bodyBytes, &product)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &product, nil
}

func (w *wooapi) ProductUpdate(p *models.Product) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductUpdate:>Start")
	defer logger.Println("ProductUpdate:>End")

	if p.ID == 0 {
		return nil, errors.New("не указана ID продукта")
	}

	bodyBytes, err := w.request("PUT", fmt.Sprintf("products/%d", p.ID), nil, p, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = json.Unmarshal(bodyBytes, &product)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &product, nil
}

func (w *wooapi) ProductVariationList(productID int) ([]*models.ProductVariation, error) {
	logger := logging.GetLogger()
	logger.Println("ProductVariationList:>Start")
	defer logger.Println("ProductVariationList:>End")

	params := url.Values{}
	params.Add("per_page", "100")

	bodyBytes, err := w.request("GET", fmt.Sprintf("products/%d/variations", productID), params, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var variations []*models.ProductVariation
	err = json.Unmarshal(bodyBytes, &variations)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return variations, nil
}

func (w *wooapi) ProductVariationAdd(productID int, v *models.ProductVariation) (*models.ProductVariation, error) {
	logger := logging.GetLogger()
	logger.Println("ProductVariationAdd:>Start")
	defer logger.Println("ProductVariationAdd:>End")

	bodyBytes, err := w.request("POST", fmt.Sprintf("products/%d/variations", productID), nil, v, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var variation models.ProductVariation
	err = json.Unmarshal(bodyBytes, &variation)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &variation, nil
}

func (w *wooapi) ProductVariationUpdate(productID int, v *models.ProductVariation) (*models.ProductVariation, error) {
	logger := logging.GetLogger()
	logger.Println("ProductVariationUpdate:>Start")
	defer logger.Println("ProductVariationUpdate:>End")

	if v.ID == 0 {
		return nil, errors.New("не указана ID вариации")
	}

	bodyBytes, err := w.request("PUT", fmt.Sprintf("products/%d/variations/%d", productID, v.ID), nil, v, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var variation models.ProductVariation
	err = json.Unmarshal(bodyBytes, &variation)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &variation, nil
}

func (w *wooapi) ProductCategoryGet(ID int) (*models.ProductCategory, error) {
	logger := logging.GetLogger()
	logger.Println("ProductCategoryGet:>Start")
	defer logger.Println("ProductCategoryGet:>End")

	bodyBytes, err := w.request("GET", fmt.Sprintf("products/categories/%d", ID), nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var productCategory models.ProductCategory
	err = json.Unmarshal(bodyBytes, &productCategory)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &productCategory, nil
}

func (w *wooapi) ProductCategoryListAll() ([]*models.ProductCategory, error) {
	logger := logging.GetLogger()
	logger.Println("ProductCategoryListAll:>Start")
	defer logger.Println("ProductCategoryListAll:>End")

	var productsCategory []*models.ProductCategory
	var i = 1
	perPage := 100
	for {
		params := url.Values{}
		params.Add("per_page", strconv.Itoa(perPage))
		params.Add("page", strconv.Itoa(i))

		bodyBytes, err := w.request("GET", "products/categories", params, nil, http.StatusOK)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при получении ProductCategoryList, PerPage:%d, Page:%d", perPage, i)
		}

		var productsCategoryTemp []*models.ProductCategory
		err = json.Unmarshal(bodyBytes, &productsCategoryTemp)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
		}

		if len(productsCategoryTemp) == 0 {
			break
		}

		productsCategory = append(productsCategory, productsCategoryTemp...)
		logger.Debugf("Page load:%d", i)
		i++
	}

	return productsCategory, nil
}

// ProductCategoryAdd возвращает (категория, resource_id существующей при дубле, ошибка)
func (w *wooapi) ProductCategoryAdd(c *models.ProductCategory) (*models.ProductCategory, int, error) {
	logger := logging.GetLogger()
	logger.Println("ProductCategoryAdd:>Start")
	defer logger.Println("ProductCategoryAdd:>End")

	if c.Name == "" {
		return nil, 0, errors.New("не указано имя категории")
	}

	bodyBytes, err := w.request("POST", "products/categories", nil, c, http.StatusCreated)
	if err != nil {
		if ErrorWoo, ok := err.(*models.ErrorWoo); ok && ErrorWoo.Code == "term_exists" {
			return nil, ErrorWoo.Data.ResourceId, ErrorWoo
		}
		return nil, 0, err
	}

	var productCategory models.ProductCategory
	err = json.Unmarshal(bodyBytes, &productCategory)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &productCategory, 0, nil
}

func (w *wooapi) ProductCategoryUpdate(pc *models.ProductCategory) (*models.ProductCategory, error) {
	logger := logging.GetLogger()
	logger.Println("ProductCategoryUpdate:>Start")
	defer logger.Println("ProductCategoryUpdate:>End")

	if pc.ID == 0 {
		return nil, errors.New("не указана ID категории")
	}

	bodyBytes, err := w.request("PUT", fmt.Sprintf("products/categories/%d", pc.ID), nil, pc, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var productCategory models.ProductCategory
	err = json.Unmarshal(bodyBytes, &productCategory)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &productCategory, nil
}

func (w *wooapi) OrderGet(ID int) (*models.Order, error) {
	logger := logging.GetLogger()
	logger.Println("OrderGet:>Start")
	defer logger.Println("OrderGet:>End")

	bodyBytes, err := w.request("GET", fmt.Sprintf("orders/%d", ID), nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = json.Unmarshal(bodyBytes, &order)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &order, nil
}

func (w *wooapi) OrderList(opts ...optionsWoo.Option) ([]*models.Order, error) {
	logger := logging.GetLogger()
	logger.Println("OrderList:>Start")
	defer logger.Println("OrderList:>End")

	params := url.Values{}
	Option := new(optionsWoo.OptionStruct)
	for _, field := range opts {
		field(Option)
		params.Add(Option.Key, Option.Value)
	}

	bodyBytes, err := w.request("GET", "orders", params, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var orders []*models.Order
	err = json.Unmarshal(bodyBytes, &orders)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return orders, nil
}

func (w *wooapi) OrderUpdate(o *models.Order) (*models.Order, error) {
	logger := logging.GetLogger()
	logger.Println("OrderUpdate:>Start")
	defer logger.Println("OrderUpdate:>End")

	if o.ID == 0 {
		return nil, errors.New("не указана ID заказа")
	}

	bodyBytes, err := w.request("PUT", fmt.Sprintf("orders/%d", o.ID), nil, o, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = json.Unmarshal(bodyBytes, &order)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &order, nil
}

func (w *wooapi) OrderNoteAdd(orderID int, note string) error {
	logger := logging.GetLogger()
	logger.Println("OrderNoteAdd:>Start")
	defer logger.Println("OrderNoteAdd:>End")

	_, err := w.request("POST", fmt.Sprintf("orders/%d/notes", orderID), nil, &models.OrderNote{Note: note}, http.StatusCreated)
	if err != nil {
		return err
	}
	return nil
}

// MediaUpload загружает картинку в библиотеку WP через wp/v2 media с basic-auth
func (w *wooapi) MediaUpload(filename string, mimeType string, data []byte) (*models.Media, error) {
	logger := logging.GetLogger()
	logger.Println("MediaUpload:>Start")
	defer logger.Println("MediaUpload:>End")

	w.CheckRPS()
	defer func() { w.requestTime = time.Now() }()

	requestURL := fmt.Sprintf("%s/wp-json/wp/v2/media", w.url)
	logger.Debugf("Endpoint: POST %s", requestURL)

	req, err := http.NewRequest("POST", requestURL, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed http.NewRequest")
	}
	req.SetBasicAuth(w.user, w.pass)
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	r, err := w.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при загрузке media, filename:%s", filename)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(r.Body)

	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при ioutil.ReadAll(r.Body): error: %v", err)
	}
	logger.Debugf(string(bodyBytes))

	if r.StatusCode != http.StatusCreated {
		var ErrorWoo models.ErrorWoo
		err := json.Unmarshal(bodyBytes, &ErrorWoo)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
		}
		return nil, &ErrorWoo
	}

	var media models.Media
	err = json.Unmarshal(bodyBytes, &media)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &media, nil
}

func NewAPI(apiURL, key, secret, user, pass string, rps int) WOOAPI {
	if rps <= 0 {
		rps = 2
	}

	wooapiGlobal = &wooapi{
		url:    apiURL,
		key:    key,
		secret: secret,
		user:   user,
		pass:   pass,
		client: &http.Client{Timeout: 60 * time.Second},
		rps:    rps,
	}

	return wooapiGlobal
}

func GetAPI() WOOAPI {
	return wooapiGlobal
}
