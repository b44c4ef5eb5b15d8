// Package nav models the URL-carried view state of the Pokémon browser: the
// locale, the current page and the optionally open detail panel.
//
// The canonical form is /{locale}/page/{n}?details={id}.
package nav

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultLocale is used when a path carries no locale segment.
const DefaultLocale = "en"

const (
	pageSegment  = "page"
	detailsParam = "details"
)

// ErrInvalidLocation is returned for paths that do not follow the canonical form.
var ErrInvalidLocation = errors.New("invalid location")

// Location is the browser's navigable state.
type Location struct {
	Locale  string
	Page    int
	Details string
}

// Home is page 1 of the default locale with no detail panel.
func Home() Location {
	return Location{Locale: DefaultLocale, Page: 1}
}

// Parse reads a location from a path with an optional query string. A bare
// "/" or "/{locale}" means page 1.
func Parse(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %w", ErrInvalidLocation, raw, err)
	}

	loc := Home()
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	switch len(segments) {
	case 0:
	case 1:
		loc.Locale = segments[0]
	case 3:
		if segments[1] != pageSegment {
			return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, raw)
		}
		loc.Locale = segments[0]
		page, convErr := strconv.Atoi(segments[2])
		if convErr != nil || page < 1 {
			return Location{}, fmt.Errorf("%w: page %q in %q", ErrInvalidLocation, segments[2], raw)
		}
		loc.Page = page
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, raw)
	}

	loc.Details = strings.TrimSpace(u.Query().Get(detailsParam))
	return loc, nil
}

// String renders the canonical path.
func (l Location) String() string {
	locale := l.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	page := l.Page
	if page < 1 {
		page = 1
	}
	path := fmt.Sprintf("/%s/%s/%d", url.PathEscape(locale), pageSegment, page)
	if l.Details == "" {
		return path
	}
	return path + "?" + url.Values{detailsParam: {l.Details}}.Encode()
}

// WithPage moves to page and closes the detail panel, since it belonged to
// the previous page's items.
func (l Location) WithPage(page int) Location {
	l.Page = page
	l.Details = ""
	return l
}

// WithDetails opens the detail panel for id on the current page. An empty id
// closes it.
func (l Location) WithDetails(id string) Location {
	l.Details = strings.TrimSpace(id)
	return l
}
