package models

type Media struct {
	Id        int    `json:"id,omitempty"`
	Slug      string `json:"slug,omitempty"`
	SourceUrl string `json:"source_url,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}
