package models

// мета-ключи соответствий на стороне WooCommerce
const (
	META_MS_PRODUCT_ID = "_ms_product_id"
	META_MS_VARIANT_ID = "_ms_variant_id"
	META_MS_ORDER_ID   = "_ms_order_id"
	META_MS_IMAGE_URL  = "_ms_image_url"
)

type Product struct {
	ID                int                 `json:"id,omitempty"`
	Name              string              `json:"name,omitempty"`
	Slug              string              `json:"slug,omitempty"`
	Type              string              `json:"type,omitempty"` // simple|variable
	Status            string              `json:"status,omitempty"`
	CatalogVisibility string              `json:"catalog_visibility,omitempty"`
	Description       string              `json:"description,omitempty"`
	Sku               string              `json:"sku,omitempty"`
	Price             string              `json:"price,omitempty"`
	RegularPrice      string              `json:"regular_price,omitempty"`
	Categories        []*Categories       `json:"categories,omitempty"`
	Images            []ProductImage      `json:"images,omitempty"`
	Attributes        []*ProductAttribute `json:"attributes,omitempty"`
	Variations        []int               `json:"variations,omitempty"`
	MetaData          []MetaData          `json:"meta_data,omitempty"`
	Links             *Links              `json:"_links,omitempty"`
}

type ProductImage struct {
	Id   int    `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

type ProductAttribute struct {
	Id        int      `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Position  int      `json:"position,omitempty"`
	Visible   bool     `json:"visible,omitempty"`
	Variation bool     `json:"variation,omitempty"`
	Options   []string `json:"options,omitempty"`
}

type Categories struct {
	Id   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type MetaData struct {
	Id    int         `json:"id,omitempty"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

type Links struct {
	Self []struct {
		Href string `json:"href,omitempty"`
	} `json:"self,omitempty"`
	Collection []struct {
		Href string `json:"href,omitempty"`
	} `json:"collection,omitempty"`
}

// MetaValue достает значение meta_data по ключу
func MetaValue(meta []MetaData, key string) string {
	for i := range meta {
		if meta[i].Key == key {
			if s, ok := meta[i].Value.(string); ok {
				return s
			}
		}
	}
	return ""
}
