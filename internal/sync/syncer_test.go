package sync

import (
	"WooWithMoysklad/internal/cache"
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/internal/database"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"WooWithMoysklad/internal/stopflag"
	modelsWOOAPI "WooWithMoysklad/internal/wooapi/models"
	optionsWoo "WooWithMoysklad/internal/wooapi/options"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// msapiMock - ручной мок МойСклад API для тестов движка
type msapiMock struct {
	products      []*modelsMSAPI.Product
	folders       []*modelsMSAPI.ProductFolder
	variants      map[string][]*modelsMSAPI.Variant
	images        map[string][]*modelsMSAPI.Image
	createdOrders []*modelsMSAPI.CustomerOrder
	updatedOrders map[string]*modelsMSAPI.CustomerOrder

	listCalls      []int // limit каждого вызова ProductList
	failList       int   // сколько первых вызовов ProductList завалить
	failRateLimit  bool  // валить ошибкой лимита 1049
	failLimit      int   // валить только вызовы с этим limit, 0 - любые
	counterparties map[string]*modelsMSAPI.Counterparty
}

func newMsapiMock() *msapiMock {
	return &msapiMock{
		variants:       make(map[string][]*modelsMSAPI.Variant),
		images:         make(map[string][]*modelsMSAPI.Image),
		updatedOrders:  make(map[string]*modelsMSAPI.CustomerOrder),
		counterparties: make(map[string]*modelsMSAPI.Counterparty),
	}
}

func (m *msapiMock) ProductList(limit, offset int) (*modelsMSAPI.ProductListResult, error) {
	m.listCalls = append(m.listCalls, limit)
	if m.failList > 0 && (m.failLimit == 0 || m.failLimit == limit) {
		m.failList--
		if m.failRateLimit {
			return nil, &modelsMSAPI.ErrorMS{
				StatusCode: 429,
				Errors:     []modelsMSAPI.ErrorItem{{ErrorText: "Превышен лимит запросов", Code: modelsMSAPI.ERROR_CODE_RATE_LIMIT}},
			}
		}
		return nil, errors.New("временная ошибка")
	}

	end := offset + limit
	if end > len(m.products) {
		end = len(m.products)
	}
	rows := []*modelsMSAPI.Product{}
	if offset < len(m.products) {
		rows = m.products[offset:end]
	}
	return &modelsMSAPI.ProductListResult{
		Meta: modelsMSAPI.Meta{Size: len(m.products), Limit: limit, Offset: offset},
		Rows: rows,
	}, nil
}

func (m *msapiMock) VariantList(productID string) ([]*modelsMSAPI.Variant, error) {
	return m.variants[productID], nil
}

func (m *msapiMock) ProductFolderListAll() ([]*modelsMSAPI.ProductFolder, error) {
	return m.folders, nil
}

func (m *msapiMock) ImageList(imagesHref string) ([]*modelsMSAPI.Image, error) {
	return m.images[imagesHref], nil
}

func (m *msapiMock) DownloadImage(href string) ([]byte, string, error) {
	return []byte("image-bytes"), "image.jpg", nil
}

func (m *msapiMock) OrderGet(ID string) (*modelsMSAPI.CustomerOrder, error) {
	if order, found := m.updatedOrders[ID]; found {
		return order, nil
	}
	return nil, errors.Errorf("заказ не найден, ID:%s", ID)
}

func (m *msapiMock) OrderCreate(o *modelsMSAPI.CustomerOrder) (*modelsMSAPI.CustomerOrder, error) {
	created := *o
	created.ID = fmt.Sprintf("ms-order-%d", len(m.createdOrders)+1)
	m.createdOrders = append(m.createdOrders, &created)
	return &created, nil
}

func (m *msapiMock) OrderUpdate(ID string, o *modelsMSAPI.CustomerOrder) (*modelsMSAPI.CustomerOrder, error) {
	m.updatedOrders[ID] = o
	return o, nil
}

func (m *msapiMock) CounterpartyFindOrCreate(c *modelsMSAPI.Counterparty) (*modelsMSAPI.Counterparty, error) {
	if found, ok := m.counterparties[c.Email]; ok {
		return found, nil
	}
	created := *c
	created.ID = fmt.Sprintf("agent-%d", len(m.counterparties)+1)
	created.Meta = modelsMSAPI.Meta{Href: "https://api.moysklad.ru/api/remap/1.2/entity/counterparty/" + created.ID, Type: "counterparty"}
	m.counterparties[c.Email] = &created
	return &created, nil
}

func (m *msapiMock) WebhookRegister(webhookURL, entityType, action string) (*modelsMSAPI.Webhook, error) {
	return &modelsMSAPI.Webhook{URL: webhookURL, EntityType: entityType, Action: action}, nil
}

func (m *msapiMock) AssortmentMeta(kind, ID string) modelsMSAPI.MetaRef {
	return modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: fmt.Sprintf("https://api.moysklad.ru/api/remap/1.2/entity/%s/%s", kind, ID),
		Type: kind,
	}}
}

func (m *msapiMock) StateMeta(stateID string) modelsMSAPI.MetaRef {
	return modelsMSAPI.MetaRef{Meta: modelsMSAPI.Meta{
		Href: fmt.Sprintf("https://api.moysklad.ru/api/remap/1.2/entity/customerorder/metadata/states/%s", stateID),
		Type: "state",
	}}
}

func (m *msapiMock) EntityMeta(kind, ID string) modelsMSAPI.MetaRef {
	return m.AssortmentMeta(kind, ID)
}

// wooapiMock - ручной мок WooCommerce API
type wooapiMock struct {
	nextID     int
	products   map[int]*modelsWOOAPI.Product
	bySku      map[string]int
	variations map[int][]*modelsWOOAPI.ProductVariation
	categories map[int]*modelsWOOAPI.ProductCategory
	orders     map[int]*modelsWOOAPI.Order
	notes      map[int][]string
	media      int

	onProductAdd func(p *modelsWOOAPI.Product)
}

func newWooapiMock() *wooapiMock {
	return &wooapiMock{
		nextID:     100,
		products:   make(map[int]*modelsWOOAPI.Product),
		bySku:      make(map[string]int),
		variations: make(map[int][]*modelsWOOAPI.ProductVariation),
		categories: make(map[int]*modelsWOOAPI.ProductCategory),
		orders:     make(map[int]*modelsWOOAPI.Order),
		notes:      make(map[int][]string),
	}
}

func (w *wooapiMock) ProductGet(ID int) (*modelsWOOAPI.Product, error) {
	if p, found := w.products[ID]; found {
		return p, nil
	}
	return nil, errors.Errorf("товар не найден, ID:%d", ID)
}

func (w *wooapiMock) ProductGetBySku(sku string) (*modelsWOOAPI.Product, error) {
	if ID, found := w.bySku[sku]; found {
		return w.products[ID], nil
	}
	return nil, nil
}

func (w *wooapiMock) ProductList(opts ...optionsWoo.Option) ([]*modelsWOOAPI.Product, error) {
	var products []*modelsWOOAPI.Product
	for _, p := range w.products {
		products = append(products, p)
	}
	return products, nil
}

func (w *wooapiMock) ProductAdd(p *modelsWOOAPI.Product) (*modelsWOOAPI.Product, error) {
	w.nextID++
	created := *p
	created.ID = w.nextID
	w.products[created.ID] = &created
	if created.Sku != "" {
		w.bySku[created.Sku] = created.ID
	}
	if w.onProductAdd != nil {
		w.onProductAdd(&created)
	}
	return &created, nil
}

func (w *wooapiMock) ProductUpdate(p *modelsWOOAPI.Product) (*modelsWOOAPI.Product, error) {
	existing, found := w.products[p.ID]
	if !found {
		return nil, errors.Errorf("товар не найден, ID:%d", p.ID)
	}
	if p.Name != "" {
		existing.Name = p.Name
	}
	if p.Type != "" {
		existing.Type = p.Type
	}
	if p.RegularPrice != "" {
		existing.RegularPrice = p.RegularPrice
	}
	if p.Attributes != nil {
		existing.Attributes = p.Attributes
	}
	if p.Images != nil {
		existing.Images = p.Images
	}
	if p.Categories != nil {
		existing.Categories = p.Categories
	}
	return existing, nil
}

func (w *wooapiMock) ProductVariationList(productID int) ([]*modelsWOOAPI.ProductVariation, error) {
	return w.variations[productID], nil
}

func (w *wooapiMock) ProductVariationAdd(productID int, v *modelsWOOAPI.ProductVariation) (*modelsWOOAPI.ProductVariation, error) {
	w.nextID++
	created := *v
	created.ID = w.nextID
	w.variations[productID] = append(w.variations[productID], &created)
	return &created, nil
}

func (w *wooapiMock) ProductVariationUpdate(productID int, v *modelsWOOAPI.ProductVariation) (*modelsWOOAPI.ProductVariation, error) {
	for i, existing := range w.variations[productID] {
		if existing.ID == v.ID {
			w.variations[productID][i] = v
			return v, nil
		}
	}
	return nil, errors.Errorf("вариация не найдена, ID:%d", v.ID)
}

func (w *wooapiMock) ProductCategoryGet(ID int) (*modelsWOOAPI.ProductCategory, error) {
	if c, found := w.categories[ID]; found {
		return c, nil
	}
	return nil, errors.Errorf("категория не найдена, ID:%d", ID)
}

func (w *wooapiMock) ProductCategoryListAll() ([]*modelsWOOAPI.ProductCategory, error) {
	var categories []*modelsWOOAPI.ProductCategory
	for _, c := range w.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (w *wooapiMock) ProductCategoryAdd(c *modelsWOOAPI.ProductCategory) (*modelsWOOAPI.ProductCategory, int, error) {
	w.nextID++
	created := *c
	created.ID = w.nextID
	w.categories[created.ID] = &created
	return &created, 0, nil
}

func (w *wooapiMock) ProductCategoryUpdate(pc *modelsWOOAPI.ProductCategory) (*modelsWOOAPI.ProductCategory, error) {
	if _, found := w.categories[pc.ID]; !found {
		return nil, errors.Errorf("категория не найдена, ID:%d", pc.ID)
	}
	w.categories[pc.ID] = pc
	return pc, nil
}

func (w *wooapiMock) OrderGet(ID int) (*modelsWOOAPI.Order, error) {
	if o, found := w.orders[ID]; found {
		return o, nil
	}
	return nil, errors.Errorf("заказ не найден, ID:%d", ID)
}

func (w *wooapiMock) OrderList(opts ...optionsWoo.Option) ([]*modelsWOOAPI.Order, error) {
	var orders []*modelsWOOAPI.Order
	for _, o := range w.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (w *wooapiMock) OrderUpdate(o *modelsWOOAPI.Order) (*modelsWOOAPI.Order, error) {
	existing, found := w.orders[o.ID]
	if !found {
		return nil, errors.Errorf("заказ не найден, ID:%d", o.ID)
	}
	if o.Status != "" {
		existing.Status = o.Status
	}
	return existing, nil
}

func (w *wooapiMock) OrderNoteAdd(orderID int, note string) error {
	w.notes[orderID] = append(w.notes[orderID], note)
	return nil
}

func (w *wooapiMock) MediaUpload(filename string, mimeType string, data []byte) (*modelsWOOAPI.Media, error) {
	w.media++
	return &modelsWOOAPI.Media{Id: 9000 + w.media, SourceUrl: "https://shop.example.com/media/" + filename}, nil
}

// testEnv собирает движок на in-memory sqlite с подменой сна
type testEnv struct {
	syncer *Syncer
	ms     *msapiMock
	woo    *wooapiMock
	db     *sqlx.DB
	stop   *stopflag.Flag
	sleeps []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed sqlx.Connect; %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.MustExec(database.DB_SCHEMA)

	cfg := &config.Config{}
	cfg.PRODUCTSYNC.Mode = MODE_STANDARD
	cfg.PRODUCTSYNC.SyncName = 1
	cfg.PRODUCTSYNC.SyncDescription = 1
	cfg.ORDERSYNC.Enabled = 1
	cfg.ORDERSYNC.StatusEnabled = 1
	cfg.ORDERSYNC.Prefix = "WOO-"

	env := &testEnv{
		ms:   newMsapiMock(),
		woo:  newWooapiMock(),
		db:   db,
		stop: &stopflag.Flag{},
	}
	env.syncer = NewSyncer(cfg, env.ms, env.woo, db, cache.NewCacheCategory(db), env.stop)
	env.syncer.sleep = func(d time.Duration) {
		env.sleeps = append(env.sleeps, d)
	}
	return env
}

func msProduct(id, name, sku string, kopecks int64) *modelsMSAPI.Product {
	return &modelsMSAPI.Product{
		ID:         id,
		Name:       name,
		Article:    sku,
		SalePrices: []modelsMSAPI.SalePrice{{Value: kopecks}},
	}
}

func msService(id, name string) *modelsMSAPI.Product {
	return &modelsMSAPI.Product{
		ID:   id,
		Name: name,
		Attributes: []modelsMSAPI.Attribute{
			{Name: modelsMSAPI.ATTRIBUTE_PRODUCT_TYPE, Value: modelsMSAPI.PRODUCT_TYPE_SERVICE},
		},
	}
}
