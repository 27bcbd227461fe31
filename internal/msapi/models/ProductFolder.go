package models

type ProductFolder struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PathName      string   `json:"pathName,omitempty"`
	Archived      bool     `json:"archived,omitempty"`
	ProductFolder *MetaRef `json:"productFolder,omitempty"` // родительская папка
}

type ProductFolderListResult struct {
	Meta Meta             `json:"meta"`
	Rows []*ProductFolder `json:"rows"`
}

// ParentID - ID родительской папки, пустая строка для корня
func (f *ProductFolder) ParentID() string {
	if f.ProductFolder == nil {
		return ""
	}
	return IDFromHref(f.ProductFolder.Meta.Href, "productfolder")
}
