package sorting

import (
	"errors"
	"sort"
	"strings"
	"time"
)

type SortKey string

type SortDirection string

const (
	KeyDate  SortKey = "date"
	KeyViews SortKey = "views"

	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// DateLayout is the publishedAt format of every post.
const DateLayout = "2006-01-02"

type SortSetting struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

var DefaultSort = SortSetting{Key: KeyDate, Direction: Desc}

var ErrInvalidSortKey = errors.New("invalid sort key")
var ErrInvalidSortDirection = errors.New("invalid sort direction")

// ParseSortSetting reads a setting from untrusted strings (query args, session values).
// Empty strings fall back to DefaultSort's parts.
func ParseSortSetting(key, direction string) (SortSetting, error) {
	s := DefaultSort

	switch SortKey(strings.ToLower(key)) {
	case "":
	case KeyDate:
		s.Key = KeyDate
	case KeyViews:
		s.Key = KeyViews
	default:
		return SortSetting{}, ErrInvalidSortKey
	}

	switch SortDirection(strings.ToLower(direction)) {
	case "":
	case Asc:
		s.Direction = Asc
	case Desc:
		s.Direction = Desc
	default:
		return SortSetting{}, ErrInvalidSortDirection
	}

	return s, nil
}

func (s SortSetting) String() string {
	return string(s.Key) + ":" + string(s.Direction)
}

// Sortable is anything listed in the post table.
type Sortable interface {
	PublishedDate() string
	ViewCount() int64
}

// SortPosts returns a stably sorted copy of posts. Posts whose date does not
// parse go last whatever the direction.
func SortPosts[P Sortable](posts []P, s SortSetting) []P {
	sorted := make([]P, len(posts))
	copy(sorted, posts)

	if s.Key == KeyViews {
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].ViewCount(), sorted[j].ViewCount()
			if s.Direction == Desc {
				return a > b
			}
			return a < b
		})
		return sorted
	}

	// parse once, the comparator runs n log n times
	stamps := make([]time.Time, len(sorted))
	valid := make([]bool, len(sorted))
	for i, p := range sorted {
		stamps[i], valid[i] = ParseDate(p.PublishedDate())
	}

	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if valid[a] != valid[b] {
			return valid[a]
		}
		if !valid[a] {
			return false
		}
		if s.Direction == Desc {
			return stamps[a].After(stamps[b])
		}
		return stamps[a].Before(stamps[b])
	})

	res := make([]P, len(sorted))
	for i, k := range idx {
		res[i] = sorted[k]
	}

	return res
}

// ParseDate parses a publishedAt value. ok is false for anything that is not a calendar date.
func ParseDate(date string) (t time.Time, ok bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortIndicator returns the header glyph for targetKey.
func SortIndicator(s SortSetting, targetKey SortKey, showDesc, showAsc bool) string {
	if s.Key != targetKey {
		return ""
	}

	switch {
	case showDesc && showAsc:
		if s.Direction == Asc {
			return "↑"
		}
		return "↓"
	case showDesc:
		if s.Direction == Desc {
			return "↓"
		}
	case showAsc:
		if s.Direction == Asc {
			return "↑"
		}
	}

	return ""
}

func IsSortActive(s SortSetting, targetKey SortKey) bool {
	return s.Key == targetKey
}
