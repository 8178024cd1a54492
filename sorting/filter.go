package sorting

import "strings"

// CategoryAll selects every post.
const CategoryAll = "all"

type Categorized interface {
	PostCategory() string
}

// FilterByCategory returns the posts in category, in their original order.
func FilterByCategory[P Categorized](posts []P, category string) []P {
	category = strings.TrimSpace(category)

	res := make([]P, 0, len(posts))
	for _, p := range posts {
		if category == "" || strings.EqualFold(category, CategoryAll) || strings.EqualFold(p.PostCategory(), category) {
			res = append(res, p)
		}
	}

	return res
}

// YearMark tells a list renderer where the year column changes.
type YearMark struct {
	Year        int  `json:"year"`
	FirstOfYear bool `json:"firstOfYear"`
	LastOfYear  bool `json:"lastOfYear"`
}

// GroupByYear returns one mark per post, in order. Posts with an unparseable date are year 0.
func GroupByYear[P Sortable](posts []P) []YearMark {
	years := make([]int, len(posts))
	for i, p := range posts {
		if t, ok := ParseDate(p.PublishedDate()); ok {
			years[i] = t.Year()
		}
	}

	marks := make([]YearMark, len(posts))
	for i, y := range years {
		marks[i] = YearMark{
			Year:        y,
			FirstOfYear: i == 0 || years[i-1] != y,
			LastOfYear:  i == len(years)-1 || years[i+1] != y,
		}
	}

	return marks
}

// Header is the state of the post table header for a sort setting.
type Header struct {
	Sort           SortSetting `json:"sort"`
	DateIndicator  string      `json:"dateIndicator"`
	ViewsIndicator string      `json:"viewsIndicator"`
	DateActive     bool        `json:"dateActive"`
	ViewsActive    bool        `json:"viewsActive"`
}

// HeaderFor renders the header the way the post table shows it: the date
// column only marks ascending order and is highlighted only then.
func HeaderFor(s SortSetting) Header {
	return Header{
		Sort:           s,
		DateIndicator:  SortIndicator(s, KeyDate, false, true),
		ViewsIndicator: SortIndicator(s, KeyViews, true, true),
		DateActive:     IsSortActive(s, KeyDate) && s.Direction != Desc,
		ViewsActive:    IsSortActive(s, KeyViews),
	}
}
