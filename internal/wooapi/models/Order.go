package models

type Order struct {
	ID          int        `json:"id,omitempty"`
	Number      string     `json:"number,omitempty"`
	Status      string     `json:"status,omitempty"` // processing, completed, ...
	DateCreated string     `json:"date_created,omitempty"`
	CustomerID  int        `json:"customer_id,omitempty"`
	Billing     *Billing   `json:"billing,omitempty"`
	LineItems   []LineItem `json:"line_items,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`
	Links       *Links     `json:"_links,omitempty"`
}

type Billing struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LineItem struct {
	ID          int     `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	ProductID   int     `json:"product_id,omitempty"`
	VariationID int     `json:"variation_id,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Total       string  `json:"total,omitempty"`
}

type OrderNote struct {
	ID           int    `json:"id,omitempty"`
	Note         string `json:"note,omitempty"`
	CustomerNote bool   `json:"customer_note,omitempty"`
}

// MsOrderID - ID заказа МойСклад из meta_data
func (o *Order) MsOrderID() string {
	return MetaValue(o.MetaData, META_MS_ORDER_ID)
}
