package models

type CustomerOrder struct {
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name,omitempty"`
	ExternalCode string     `json:"externalCode,omitempty"`
	Moment       string     `json:"moment,omitempty"` // "2006-01-02 15:04:05"
	Description  string     `json:"description,omitempty"`
	Agent        *MetaRef   `json:"agent,omitempty"`
	Organization *MetaRef   `json:"organization,omitempty"`
	Store        *MetaRef   `json:"store,omitempty"`
	State        *MetaRef   `json:"state,omitempty"`
	Positions    []Position `json:"positions,omitempty"`
}

type Position struct {
	Quantity   float64 `json:"quantity"`
	Price      int64   `json:"price"` // копейки
	Discount   float64 `json:"discount"`
	Vat        int     `json:"vat"`
	Assortment MetaRef `json:"assortment"`
}

// StateID - ID статуса из href вида .../metadata/states/<id>
func (o *CustomerOrder) StateID() string {
	if o.State == nil {
		return ""
	}
	return IDFromHref(o.State.Meta.Href, "states")
}
