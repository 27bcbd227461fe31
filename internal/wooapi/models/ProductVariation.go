package models

type ProductVariation struct {
	ID           int                  `json:"id,omitempty"`
	Sku          string               `json:"sku,omitempty"`
	Status       string               `json:"status,omitempty"`
	RegularPrice string               `json:"regular_price,omitempty"`
	Attributes   []VariationAttribute `json:"attributes,omitempty"`
	MetaData     []MetaData           `json:"meta_data,omitempty"`
}

type VariationAttribute struct {
	Id     int    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Option string `json:"option,omitempty"`
}

// MsVariantID - ID модификации МойСклад из meta_data
func (v *ProductVariation) MsVariantID() string {
	return MetaValue(v.MetaData, META_MS_VARIANT_ID)
}
