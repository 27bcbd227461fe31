package models

type Counterparty struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	ExternalCode  string   `json:"externalCode,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Description   string   `json:"description,omitempty"`
	ActualAddress string   `json:"actualAddress,omitempty"`
	Group         *MetaRef `json:"group,omitempty"`
	Meta          Meta     `json:"meta,omitempty"`
}

type CounterpartyListResult struct {
	Meta Meta            `json:"meta"`
	Rows []*Counterparty `json:"rows"`
}
