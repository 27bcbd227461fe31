package models

type Variant struct {
	ID              string           `json:"id"`
	Name            string           `json:"name,omitempty"`
	Code            string           `json:"code,omitempty"`
	Characteristics []Characteristic `json:"characteristics,omitempty"`
	SalePrices      []SalePrice      `json:"salePrices,omitempty"`
	Product         *MetaRef         `json:"product,omitempty"`
}

type Characteristic struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type VariantListResult struct {
	Meta Meta       `json:"meta"`
	Rows []*Variant `json:"rows"`
}
