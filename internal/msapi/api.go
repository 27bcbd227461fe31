package msapi

import (
	"WooWithMoysklad/internal/msapi/models"
	"WooWithMoysklad/pkg/logging"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DEFAULT_URL = "https://api.moysklad.ru/api/remap/1.2"

// MSAPI - клиент МойСклад; без ретраев, политика повторов на стороне вызывающего
type MSAPI interface {
	ProductList(limit, offset int) (*models.ProductListResult, error)
	VariantList(productID string) ([]*models.Variant, error)
	ProductFolderListAll() ([]*models.ProductFolder, error)
	ImageList(imagesHref string) ([]*models.Image, error)
	DownloadImage(href string) ([]byte, string, error)

	OrderGet(ID string) (*models.CustomerOrder, error)
	OrderCreate(o *models.CustomerOrder) (*models.CustomerOrder, error)
	OrderUpdate(ID string, o *models.CustomerOrder) (*models.CustomerOrder, error)
	CounterpartyFindOrCreate(c *models.Counterparty) (*models.Counterparty, error)

	WebhookRegister(webhookURL, entityType, action string) (*models.Webhook, error)

	AssortmentMeta(kind, ID string) models.MetaRef
	StateMeta(stateID string) models.MetaRef
	EntityMeta(kind, ID string) models.MetaRef
}

var msapiGlobal *msapi

type msapi struct {
	url    string
	user   string
	pass   string
	client *http.Client
}

func (m *msapi) request(method, endpoint string, params url.Values, body interface{}) ([]byte, error) {
	logger := logging.GetLogger()

	var requestURL string
	if strings.HasPrefix(endpoint, "http") {
		requestURL = endpoint
	} else {
		requestURL = m.url + endpoint
	}
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
	req.SetBasicAuth(m.user, m.pass)
	req.Header.Set("Accept", "application/json;charset=utf-8")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
		logger.Debugf("RawQuery: %s", req.URL.RawQuery)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при отправке запроса в МойСклад, endpoint:%s", endpoint)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(resp.Body)

	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка при ioutil.ReadAll(resp.Body)")
	}
	logger.Debugf(string(bodyBytes))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		ErrorMS := &models.ErrorMS{StatusCode: resp.StatusCode}
		err := json.Unmarshal(bodyBytes, ErrorMS)
		if err != nil {
			logger.Errorf("не удалось разобрать ошибку МойСклад: %v", err)
		}
		return nil, ErrorMS
	}

	return bodyBytes, nil
}

func (m *msapi) ProductList(limit, offset int) (*models.ProductListResult, error) {
	logger := logging.GetLogger()
	logger.Println("ProductList:>Start")
	defer logger.Println("ProductList:>End")

	params := url.Values{}
	params.Add("limit", strconv.Itoa(limit))
	params.Add("offset", strconv.Itoa(offset))

	bodyBytes, err := m.request("GET", "/entity/product", params, nil)
	if err != nil {
		return nil, err
	}

	var result models.ProductListResult
	err = json.Unmarshal(bodyBytes, &result)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &result, nil
}

func (m *msapi) VariantList(productID string) ([]*models.Variant, error) {
	logger := logging.GetLogger()
	logger.Println("VariantList:>Start")
	defer logger.Println("VariantList:>End")

	params := url.Values{}
	params.Add("filter", fmt.Sprintf("productid=%s", productID))

	bodyBytes, err := m.request("GET", "/entity/variant", params, nil)
	if err != nil {
		return nil, err
	}

	var result models.VariantListResult
	err = json.Unmarshal(bodyBytes, &result)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return result.Rows, nil
}

func (m *msapi) ProductFolderListAll() ([]*models.ProductFolder, error) {
	logger := logging.GetLogger()
	logger.Println("ProductFolderListAll:>Start")
	defer logger.Println("ProductFolderListAll:>End")

	var folders []*models.ProductFolder
	limit := 100
	offset := 0
	for {
		params := url.Values{}
		params.Add("limit", strconv.Itoa(limit))
		params.Add("offset", strconv.Itoa(offset))

		bodyBytes, err := m.request("GET", "/entity/productfolder", params, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при получении productfolder, offset:%d", offset)
		}

		var result models.ProductFolderListResult
		err = json.Unmarshal(bodyBytes, &result)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
		}

		if len(result.Rows) == 0 {
			break
		}
		folders = append(folders, result.Rows...)
		offset += limit
		if offset >= result.Meta.Size {
			break
		}
	}

	return folders, nil
}

func (m *msapi) ImageList(imagesHref string) ([]*models.Image, error) {
	logger := logging.GetLogger()
	logger.Println("ImageList:>Start")
	defer logger.Println("ImageList:>End")

	bodyBytes, err := m.request("GET", imagesHref, nil, nil)
	if err != nil {
		return nil, err
	}

	var result models.ImageListResult
	err = json.Unmarshal(bodyBytes, &result)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return result.Rows, nil
}

// DownloadImage скачивает картинку по href с basic-auth, возвращает байты и имя файла
func (m *msapi) DownloadImage(href string) ([]byte, string, error) {
	logger := logging.GetLogger()
	logger.Println("DownloadImage:>Start")
	defer logger.Println("DownloadImage:>End")

	req, err := http.NewRequest("GET", href, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed http.NewRequest")
	}
	req.SetBasicAuth(m.user, m.pass)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "ошибка при скачивании картинки, href:%s", href)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.New(fmt.Sprintf("ошибка при скачивании картинки, href:%s, status:%d", href, resp.StatusCode))
	}

	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка при ioutil.ReadAll(resp.Body)")
	}

	filename := path.Base(resp.Request.URL.Path)
	if filename == "" || filename == "." || filename == "/" {
		filename = "image.jpg"
	}

	return bodyBytes, filename, nil
}

func (m *msapi) OrderGet(ID string) (*models.CustomerOrder, error) {
	logger := logging.GetLogger()
	logger.Println("OrderGet:>Start")
	defer logger.Println("OrderGet:>End")

	bodyBytes, err := m.request("GET", fmt.Sprintf("/entity/customerorder/%s", ID), nil, nil)
	if err != nil {
		return nil, err
	}

	var order models.CustomerOrder
	err = json.Unmarshal(bodyBytes, &order)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &order, nil
}

func (m *msapi) OrderCreate(o *models.CustomerOrder) (*models.CustomerOrder, error) {
	logger := logging.GetLogger()
	logger.Println("OrderCreate:>Start")
	defer logger.Println("OrderCreate:>End")

	if o.Name == "" {
		return nil, errors.New("не указано имя заказа")
	}

	bodyBytes, err := m.request("POST", "/entity/customerorder", nil, o)
	if err != nil {
		return nil, err
	}

	var order models.CustomerOrder
	err = json.Unmarshal(bodyBytes, &order)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &order, nil
}

func (m *msapi) OrderUpdate(ID string, o *models.CustomerOrder) (*models.CustomerOrder, error) {
	logger := logging.GetLogger()
	logger.Println("OrderUpdate:>Start")
	defer logger.Println("OrderUpdate:>End")

	if ID == "" {
		return nil, errors.New("не указан ID заказа")
	}

	bodyBytes, err := m.request("PUT", fmt.Sprintf("/entity/customerorder/%s", ID), nil, o)
	if err != nil {
		return nil, err
	}

	var order models.CustomerOrder
	err = json.Unmarshal(bodyBytes, &order)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &order, nil
}

// CounterpartyFindOrCreate ищет контрагента по externalCode, затем по email, иначе создает
func (m *msapi) CounterpartyFindOrCreate(c *models.Counterparty) (*models.Counterparty, error) {
	logger := logging.GetLogger()
	logger.Println("CounterpartyFindOrCreate:>Start")
	defer logger.Println("CounterpartyFindOrCreate:>End")

	filters := []string{
		fmt.Sprintf("externalCode=%s", c.ExternalCode),
	}
	if c.Email != "" {
		filters = append(filters, fmt.Sprintf("email=%s", c.Email))
	}

	for _, filter := range filters {
		params := url.Values{}
		params.Add("filter", filter)

		bodyBytes, err := m.request("GET", "/entity/counterparty", params, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при поиске контрагента, filter:%s", filter)
		}

		var result models.CounterpartyListResult
		err = json.Unmarshal(bodyBytes, &result)
		if err != nil {
			return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
		}

		if len(result.Rows) > 0 {
			logger.Debugf("Контрагент найден, filter:%s, ID:%s", filter, result.Rows[0].ID)
			return result.Rows[0], nil
		}
	}

	logger.Infof("Контрагент не найден, создаем нового: %s", c.Name)
	bodyBytes, err := m.request("POST", "/entity/counterparty", nil, c)
	if err != nil {
		return nil, err
	}

	var created models.Counterparty
	err = json.Unmarshal(bodyBytes, &created)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &created, nil
}

func (m *msapi) WebhookRegister(webhookURL, entityType, action string) (*models.Webhook, error) {
	logger := logging.GetLogger()
	logger.Println("WebhookRegister:>Start")
	defer logger.Println("WebhookRegister:>End")

	// не плодим дубли - проверяем существующие вебхуки
	bodyBytes, err := m.request("GET", "/entity/webhook", nil, nil)
	if err != nil {
		return nil, err
	}
	var existing models.WebhookListResult
	err = json.Unmarshal(bodyBytes, &existing)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	for _, wh := range existing.Rows {
		if wh.URL == webhookURL && wh.EntityType == entityType && wh.Action == action {
			logger.Infof("Вебхук уже зарегистрирован, ID:%s", wh.ID)
			return wh, nil
		}
	}

	webhook := &models.Webhook{
		URL:        webhookURL,
		Action:     action,
		EntityType: entityType,
	}

	bodyBytes, err = m.request("POST", "/entity/webhook", nil, webhook)
	if err != nil {
		return nil, err
	}

	var created models.Webhook
	err = json.Unmarshal(bodyBytes, &created)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при json.Unmarshal(): error: %v", err)
	}
	return &created, nil
}

// AssortmentMeta - ссылка на товар или модификацию для позиции заказа
func (m *msapi) AssortmentMeta(kind, ID string) models.MetaRef {
	return models.MetaRef{Meta: models.Meta{
		Href:      fmt.Sprintf("%s/entity/%s/%s", m.url, kind, ID),
		Type:      kind,
		MediaType: "application/json",
	}}
}

// StateMeta - ссылка на статус заказа
func (m *msapi) StateMeta(stateID string) models.MetaRef {
	return models.MetaRef{Meta: models.Meta{
		Href:      fmt.Sprintf("%s/entity/customerorder/metadata/states/%s", m.url, stateID),
		Type:      "state",
		MediaType: "application/json",
	}}
}

func (m *msapi) EntityMeta(kind, ID string) models.MetaRef {
	return models.MetaRef{Meta: models.Meta{
		Href:      fmt.Sprintf("%s/entity/%s/%s", m.url, kind, ID),
		Type:      kind,
		MediaType: "application/json",
	}}
}

func NewAPI(apiURL, user, pass string) MSAPI {
	if apiURL == "" {
		apiURL = DEFAULT_URL
	}

	msapiGlobal = &msapi{
		url:    strings.TrimRight(apiURL, "/"),
		user:   user,
		pass:   pass,
		client: &http.Client{Timeout: 60 * time.Second},
	}

	return msapiGlobal
}

func GetAPI() MSAPI {
	return msapiGlobal
}
