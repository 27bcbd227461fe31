package models

import "strings"

type Meta struct {
	Href      string `json:"href,omitempty"`
	Type      string `json:"type,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Size      int    `json:"size,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type MetaRef struct {
	Meta Meta `json:"meta"`
}

// IDFromHref вырезает ID сущности из href вида .../entity/<entity>/<id>
// например .../entity/productfolder/xxx или .../metadata/states/xxx
func IDFromHref(href, entity string) string {
	marker := entity + "/"
	i := strings.LastIndex(href, marker)
	if i == -1 {
		return ""
	}
	id := href[i+len(marker):]
	if j := strings.IndexAny(id, "/?"); j != -1 {
		id = id[:j]
	}
	return id
}
