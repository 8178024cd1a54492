package sorting

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type post struct {
	Slug        string `json:"slug"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category"`
	Views       *int64 `json:"views,omitempty"`
}

func (p post) PublishedDate() string { return p.PublishedAt }
func (p post) PostCategory() string  { return p.Category }

func (p post) ViewCount() int64 {
	if p.Views == nil {
		return 0
	}
	return *p.Views
}

func views(n int64) *int64 { return &n }

func mockPosts() []post {
	return []post{
		{Slug: "post-1", PublishedAt: "2023-01-15", Views: views(100)},
		{Slug: "post-2", PublishedAt: "2023-06-20", Views: views(250)},
		{Slug: "post-3", PublishedAt: "2023-03-10", Views: views(50)},
		{Slug: "post-4", PublishedAt: "2024-01-01"},
	}
}

func slugs(posts []post) []string {
	res := make([]string, 0, len(posts))
	for _, p := range posts {
		res = append(res, p.Slug)
	}
	return res
}

func TestSortPosts(t *testing.T) {
	tests := []struct {
		name string
		sort SortSetting
		want []string
	}{
		{"date desc", SortSetting{KeyDate, Desc}, []string{"post-4", "post-2", "post-3", "post-1"}},
		{"date asc", SortSetting{KeyDate, Asc}, []string{"post-1", "post-3", "post-2", "post-4"}},
		{"views desc", SortSetting{KeyViews, Desc}, []string{"post-2", "post-1", "post-3", "post-4"}},
		{"views asc", SortSetting{KeyViews, Asc}, []string{"post-4", "post-3", "post-1", "post-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugs(SortPosts(mockPosts(), tt.sort)))
		})
	}
}

func TestSortPostsDoesNotMutate(t *testing.T) {
	posts := mockPosts()
	before, err := json.Marshal(posts)
	require.NoError(t, err)

	for _, s := range []SortSetting{{KeyDate, Desc}, {KeyDate, Asc}, {KeyViews, Desc}, {KeyViews, Asc}} {
		SortPosts(posts, s)
	}

	after, err := json.Marshal(posts)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSortPostsStable(t *testing.T) {
	sameDate := []post{
		{Slug: "post-x", PublishedAt: "2023-01-01", Views: views(100)},
		{Slug: "post-y", PublishedAt: "2023-01-01", Views: views(200)},
		{Slug: "post-z", PublishedAt: "2023-01-01", Views: views(100)},
	}

	assert.Equal(t, []string{"post-x", "post-y", "post-z"}, slugs(SortPosts(sameDate, SortSetting{KeyDate, Desc})))
	assert.Equal(t, []string{"post-x", "post-y", "post-z"}, slugs(SortPosts(sameDate, SortSetting{KeyDate, Asc})))
	assert.Equal(t, []string{"post-y", "post-x", "post-z"}, slugs(SortPosts(sameDate, SortSetting{KeyViews, Desc})))
	assert.Equal(t, []string{"post-x", "post-z", "post-y"}, slugs(SortPosts(sameDate, SortSetting{KeyViews, Asc})))

	unknownAndZero := []post{
		{Slug: "a", PublishedAt: "2023-01-01"},
		{Slug: "b", PublishedAt: "2023-01-02", Views: views(0)},
		{Slug: "c", PublishedAt: "2023-01-03"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, slugs(SortPosts(unknownAndZero, SortSetting{KeyViews, Desc})))
}

func TestSortPostsUnparseableDatesLast(t *testing.T) {
	posts := []post{
		{Slug: "bad-1", PublishedAt: "not a date"},
		{Slug: "old", PublishedAt: "2020-05-01"},
		{Slug: "bad-2", PublishedAt: "2023-02-30"},
		{Slug: "new", PublishedAt: "2024-05-01"},
		{Slug: "bad-3", PublishedAt: ""},
	}

	assert.Equal(t, []string{"new", "old", "bad-1", "bad-2", "bad-3"}, slugs(SortPosts(posts, SortSetting{KeyDate, Desc})))
	assert.Equal(t, []string{"old", "new", "bad-1", "bad-2", "bad-3"}, slugs(SortPosts(posts, SortSetting{KeyDate, Asc})))
}

func TestSortPostsEdgeCases(t *testing.T) {
	empty := SortPosts([]post{}, DefaultSort)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Empty(t, SortPosts[post](nil, DefaultSort))

	single := mockPosts()[:1]
	assert.Equal(t, single, SortPosts(single, SortSetting{KeyViews, Asc}))
}

func TestSortIndicator(t *testing.T) {
	tests := []struct {
		sort              SortSetting
		target            SortKey
		showDesc, showAsc bool
		want              string
	}{
		{SortSetting{KeyDate, Asc}, KeyDate, false, true, "↑"},
		{SortSetting{KeyDate, Desc}, KeyDate, false, true, ""},
		{SortSetting{KeyDate, Desc}, KeyViews, true, true, ""},
		{SortSetting{KeyViews, Desc}, KeyViews, true, true, "↓"},
		{SortSetting{KeyViews, Asc}, KeyViews, true, true, "↑"},
		{SortSetting{KeyViews, Desc}, KeyDate, false, true, ""},
		{SortSetting{KeyViews, Desc}, KeyViews, true, false, "↓"},
		{SortSetting{KeyViews, Asc}, KeyViews, true, false, ""},
		{SortSetting{KeyViews, Asc}, KeyViews, false, false, ""},
		{SortSetting{KeyDate, Desc}, KeyDate, false, false, ""},
	}

	for _, tt := range tests {
		got := SortIndicator(tt.sort, tt.target, tt.showDesc, tt.showAsc)
		assert.Equal(t, tt.want, got, "%s target=%s desc=%v asc=%v", tt.sort, tt.target, tt.showDesc, tt.showAsc)
	}
}

func TestIsSortActive(t *testing.T) {
	assert.True(t, IsSortActive(SortSetting{KeyViews, Asc}, KeyViews))
	assert.False(t, IsSortActive(SortSetting{KeyViews, Asc}, KeyDate))
	assert.True(t, IsSortActive(SortSetting{KeyDate, Desc}, KeyDate))
	assert.False(t, IsSortActive(SortSetting{KeyDate, Desc}, KeyViews))
}

func TestParseSortSetting(t *testing.T) {
	s, err := ParseSortSetting("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, s)

	s, err = ParseSortSetting("Views", "ASC")
	require.NoError(t, err)
	assert.Equal(t, SortSetting{KeyViews, Asc}, s)

	_, err = ParseSortSetting("title", "asc")
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	_, err = ParseSortSetting("date", "up")
	assert.ErrorIs(t, err, ErrInvalidSortDirection)
}
