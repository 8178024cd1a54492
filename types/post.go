package types

// Post is one blog entry. Views is nil until a count has been measured.
type Post struct {
	Slug        string `json:"slug" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	PublishedAt string `json:"publishedAt" yaml:"publishedAt"`
	Summary     string `json:"summary" yaml:"summary"`
	Category    string `json:"category,omitempty" yaml:"category"`
	Views       *int64 `json:"views,omitempty" yaml:"-"`

	// Archived posts live under /archive/ and count views separately.
	Archived bool   `json:"archived,omitempty" yaml:"-"`
	Body     string `json:"-" yaml:"-"`
}

func (p Post) PublishedDate() string { return p.PublishedAt }
func (p Post) PostCategory() string  { return p.Category }

func (p Post) ViewCount() int64 {
	if p.Views == nil {
		return 0
	}
	return *p.Views
}

// Page is the path the view counter keys this post by.
func (p Post) Page() string {
	return PagePath(p.Slug, p.Archived)
}

func PagePath(slug string, archived bool) string {
	if archived {
		return ArchivePrefix + slug
	}
	return "/" + slug
}

const ArchivePrefix = "/archive/"

// PostPage is a single post with its rendered body.
type PostPage struct {
	Post
	HTML string `json:"html"`
}
