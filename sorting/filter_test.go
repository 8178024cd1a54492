package sorting

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestFilterByCategory(t *testing.T) {
	posts := []post{
		{Slug: "a", Category: "Web Design"},
		{Slug: "b", Category: "applications"},
		{Slug: "c", Category: "web design"},
		{Slug: "d"},
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, slugs(FilterByCategory(posts, "all")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, slugs(FilterByCategory(posts, "All")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, slugs(FilterByCategory(posts, "")))
	assert.Equal(t, []string{"a", "c"}, slugs(FilterByCategory(posts, "web design")))
	assert.Equal(t, []string{"b"}, slugs(FilterByCategory(posts, "Applications")))
	assert.Empty(t, FilterByCategory(posts, "photography"))
}

func TestGroupByYear(t *testing.T) {
	posts := []post{
		{Slug: "a", PublishedAt: "2024-01-01"},
		{Slug: "b", PublishedAt: "2023-06-20"},
		{Slug: "c", PublishedAt: "2023-03-10"},
		{Slug: "d", PublishedAt: "2023-01-15"},
		{Slug: "e", PublishedAt: "someday"},
	}

	assert.Equal(t, []YearMark{
		{Year: 2024, FirstOfYear: true, LastOfYear: true},
		{Year: 2023, FirstOfYear: true, LastOfYear: false},
		{Year: 2023, FirstOfYear: false, LastOfYear: false},
		{Year: 2023, FirstOfYear: false, LastOfYear: true},
		{Year: 0, FirstOfYear: true, LastOfYear: true},
	}, GroupByYear(posts))

	assert.Empty(t, GroupByYear([]post{}))
}

func TestHeaderFor(t *testing.T) {
	h := HeaderFor(DefaultSort)
	assert.Equal(t, "", h.DateIndicator)
	assert.Equal(t, "", h.ViewsIndicator)
	assert.False(t, h.DateActive)
	assert.False(t, h.ViewsActive)

	h = HeaderFor(SortSetting{KeyDate, Asc})
	assert.Equal(t, "↑", h.DateIndicator)
	assert.True(t, h.DateActive)

	h = HeaderFor(SortSetting{KeyViews, Desc})
	assert.Equal(t, "", h.DateIndicator)
	assert.Equal(t, "↓", h.ViewsIndicator)
	assert.True(t, h.ViewsActive)
}
