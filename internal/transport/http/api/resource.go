package api

type Link struct {
	Href string `json:"href"`
}

// Resource wraps an entity with hypermedia links.
type Resource struct {
	Content any             `json:"content"`
	Links   map[string]Link `json:"_links"`
}

func NewResource(content any) *Resource {
	return &Resource{Content: content, Links: map[string]Link{}}
}

func (r *Resource) WithLink(rel, href string) *Resource {
	r.Links[rel] = Link{Href: href}
	return r
}
