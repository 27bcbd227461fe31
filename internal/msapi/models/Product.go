package models

// Attribute "Тип номенклатуры"="Услуга" помечает услуги - их не синхронизируем
const (
	ATTRIBUTE_PRODUCT_TYPE = "Тип номенклатуры"
	PRODUCT_TYPE_SERVICE   = "Услуга"
)

type Product struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code,omitempty"`
	Article       string      `json:"article,omitempty"`
	Description   string      `json:"description,omitempty"`
	Archived      bool        `json:"archived,omitempty"`
	SalePrices    []SalePrice `json:"salePrices,omitempty"`
	ProductFolder *MetaRef    `json:"productFolder,omitempty"`
	Images        *MetaRef    `json:"images,omitempty"`
	Attributes    []Attribute `json:"attributes,omitempty"`
}

type SalePrice struct {
	Value     int64      `json:"value"` // копейки
	PriceType *PriceType `json:"priceType,omitempty"`
}

type PriceType struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Attribute struct {
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ValueString - значения атрибутов приходят и строками, и числами, и bool
func (a *Attribute) ValueString() string {
	if s, ok := a.Value.(string); ok {
		return s
	}
	return ""
}

// IsService проверяет атрибут типа номенклатуры
func (p *Product) IsService() bool {
	for i := range p.Attributes {
		if p.Attributes[i].Name == ATTRIBUTE_PRODUCT_TYPE && p.Attributes[i].ValueString() == PRODUCT_TYPE_SERVICE {
			return true
		}
	}
	return false
}

type ProductListResult struct {
	Meta Meta       `json:"meta"`
	Rows []*Product `json:"rows"`
}
