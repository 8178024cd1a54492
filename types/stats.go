package types

// Stats is the stored view count of one page.
type Stats struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
}

// ViewsMap maps a post slug to its view count. Missing slugs have zero views.
type ViewsMap map[string]int64

func (m ViewsMap) Get(slug string) int64 {
	return m[slug]
}
