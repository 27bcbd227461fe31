package models

type Image struct {
	Title     string   `json:"title,omitempty"`
	Filename  string   `json:"filename,omitempty"`
	Size      int      `json:"size,omitempty"`
	Miniature *MetaRef `json:"miniature,omitempty"`
	Meta      Meta     `json:"meta,omitempty"`
}

// Href - ссылка на скачивание, миниатюра если есть
func (i *Image) Href() string {
	if i.Miniature != nil && i.Miniature.Meta.Href != "" {
		return i.Miniature.Meta.Href
	}
	return i.Meta.Href
}

type ImageListResult struct {
	Meta Meta     `json:"meta"`
	Rows []*Image `json:"rows"`
}
