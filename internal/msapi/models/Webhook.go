package models

type Webhook struct {
	ID         string `json:"id,omitempty"`
	URL        string `json:"url"`
	Action     string `json:"action"` // CREATE|UPDATE|DELETE
	EntityType string `json:"entityType"`
	Enabled    bool   `json:"enabled,omitempty"`
}

type WebhookListResult struct {
	Meta Meta       `json:"meta"`
	Rows []*Webhook `json:"rows"`
}

// входящее событие вебхука МойСклад
type WebhookEvent struct {
	Meta struct {
		Type string `json:"type"`
	} `json:"meta"`
	Action    string `json:"action"`
	EntityID  string `json:"entityId"`
	UpdatedAt string `json:"updated,omitempty"`
}

type WebhookPayload struct {
	Events []WebhookEvent `json:"events"`
}
