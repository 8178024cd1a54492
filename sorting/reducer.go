package sorting

// Action is a click on one of the two sortable column headers.
type Action int

const (
	ToggleDate Action = iota + 1
	ToggleViews
)

func (a Action) String() string {
	switch a {
	case ToggleDate:
		return "toggle-date"
	case ToggleViews:
		return "toggle-views"
	}
	return "unknown"
}

// Reduce returns the setting that follows s after action.
func Reduce(s SortSetting, action Action) SortSetting {
	switch action {
	case ToggleDate:
		return ToggleDateSort(s)
	case ToggleViews:
		return ToggleViewsSort(s)
	}
	return s
}

// ToggleDateSort switches to newest first, or flips the direction when date is already the key.
func ToggleDateSort(s SortSetting) SortSetting {
	if s.Key != KeyDate || s.Direction == Asc {
		return SortSetting{Key: KeyDate, Direction: Desc}
	}
	return SortSetting{Key: KeyDate, Direction: Asc}
}

// ToggleViewsSort cycles views desc -> views asc -> date desc.
func ToggleViewsSort(s SortSetting) SortSetting {
	if s.Key == KeyViews && s.Direction == Asc {
		return SortSetting{Key: KeyDate, Direction: Desc}
	}

	if s.Key != KeyViews {
		return SortSetting{Key: KeyViews, Direction: Desc}
	}

	return SortSetting{Key: KeyViews, Direction: Asc}
}
