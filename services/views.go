package services

import (
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/dustin/go-humanize"
)

// PendingViews is shown in place of a count that has not loaded yet.
const PendingViews = "..."

// MergeViews returns copies of posts carrying the count from views, zero when
// the slug is missing. A nil map merges like an empty one.
func MergeViews(posts []types.Post, views types.ViewsMap) []types.PostView {
	res := make([]types.PostView, len(posts))
	for i, post := range posts {
		n := views.Get(post.Slug)
		post.Views = &n
		res[i] = types.PostView{
			Post:           post,
			ViewsFormatted: FormatViews(n),
		}
	}
	return res
}

// FormatViews groups thousands the en-US way: 1234567 -> "1,234,567".
func FormatViews(n int64) string {
	return humanize.Comma(n)
}

// BuildListing filters, merges, sorts and groups posts for the post table.
func BuildListing(posts []types.Post, views types.ViewsMap, pending bool, sort sorting.SortSetting, category string) types.Listing {
	filtered := sorting.FilterByCategory(posts, category)
	sorted := sorting.SortPosts(MergeViews(filtered, views), sort)
	marks := sorting.GroupByYear(sorted)

	items := make([]types.ListingItem, len(sorted))
	for i, post := range sorted {
		if pending {
			post.ViewsFormatted = PendingViews
		}
		items[i] = types.ListingItem{PostView: post, YearMark: marks[i]}
	}

	return types.Listing{
		Header:       sorting.HeaderFor(sort),
		Category:     category,
		ViewsPending: pending,
		Posts:        items,
	}
}
