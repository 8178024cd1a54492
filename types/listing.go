package types

import "github.com/TokDenis/folio/sorting"

// PostView is a post merged with a views snapshot.
type PostView struct {
	Post
	ViewsFormatted string `json:"viewsFormatted"`
}

type ListingItem struct {
	PostView
	sorting.YearMark
}

type Listing struct {
	Header       sorting.Header `json:"header"`
	Category     string         `json:"category,omitempty"`
	ViewsPending bool           `json:"viewsPending"`
	Posts        []ListingItem  `json:"posts"`
}
