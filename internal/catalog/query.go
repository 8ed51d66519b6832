package catalog

import "strings"

// Well-known list types of the upstream catalog.
const (
	ListSeries   = "phim-bo"
	ListSingles  = "phim-le"
	ListTVShows  = "tv-shows"
	ListAnimated = "hoat-hinh"
)

// ValidatePage returns ErrInvalidPage for pages below 1.
func ValidatePage(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	return nil
}

// NormalizeSlug trims slug and rejects empty values.
func NormalizeSlug(slug string) (string, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return "", ErrEmptySlug
	}
	return trimmed, nil
}

// NormalizeKeyword trims a search keyword and rejects empty values.
func NormalizeKeyword(keyword string) (string, error) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return "", ErrEmptyKeyword
	}
	return trimmed, nil
}

// NormalizeListType trims a list type and rejects empty values.
func NormalizeListType(listType string) (string, error) {
	trimmed := strings.TrimSpace(listType)
	if trimmed == "" {
		return "", ErrEmptyListType
	}
	return trimmed, nil
}
