package api

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 100

	// linksOnEachSide is the number of page links shown either side of the
	// current page once the link list has to be collapsed.
	linksOnEachSide = 3

	labelPrevious = "&laquo; Previous"
	labelNext     = "Next &raquo;"
	labelGap      = "..."
)

// MaxPage bounds the page number so that Offset cannot overflow for any
// per_page up to MaxPerPage. Larger pages are always past the end.
const MaxPage = math.MaxInt/MaxPerPage + 1

// Page is a 1-indexed page request.
type Page struct {
	Number  int
	PerPage int
}

// ParsePage reads "page" and "per_page" from the query. Missing, malformed
// or non-positive values fall back to the defaults; page is capped at MaxPage
// and per_page at MaxPerPage.
func ParsePage(q url.Values) Page {
	page := Page{Number: 1, PerPage: DefaultPerPage}

	if nStr := q.Get("page"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		switch {
		case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(nStr, "-"):
			page.Number = MaxPage
		case err == nil && n > 0:
			page.Number = min(n, MaxPage)
		}
	}

	if ppStr := q.Get("per_page"); ppStr != "" {
		if pp, err := strconv.Atoi(ppStr); err == nil && pp > 0 {
			page.PerPage = min(pp, MaxPerPage)
		}
	}

	return page
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Links       []Link `json:"links"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int64  `json:"total"`
}

// Link is one entry of the navigation list. URL is nil for disabled
// previous/next entries and for gap markers.
type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// NewMeta builds pagination metadata for a page holding count items out of
// total. Link URLs are absolute and keep the request's other query
// parameters.
func NewMeta(r *http.Request, page Page, count int, total int64) *Meta {
	lastPage := int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	meta := &Meta{
		CurrentPage: page.Number,
		LastPage:    lastPage,
		Path:        requestPath(r),
		PerPage:     page.PerPage,
		Total:       total,
	}

	if count > 0 {
		from := page.Offset() + 1
		to := from + count - 1
		meta.From = &from
		meta.To = &to
	}

	meta.Links = buildLinks(r, meta.Path, page.Number, lastPage)
	return meta
}

func requestPath(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func buildLinks(r *http.Request, path string, current, last int) []Link {
	pageURL := func(n int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		u := path + "?" + q.Encode()
		return &u
	}

	links := []Link{{Label: labelPrevious}}
	if current > 1 {
		links[0].URL = pageURL(current - 1)
	}

	for i, group := range linkWindow(current, last) {
		if i > 0 {
			links = append(links, Link{Label: labelGap})
		}
		for _, n := range group {
			links = append(links, Link{
				URL:    pageURL(n),
				Label:  strconv.Itoa(n),
				Active: n == current,
			})
		}
	}

	next := Link{Label: labelNext}
	if current < last {
		next.URL = pageURL(current + 1)
	}
	return append(links, next)
}

// linkWindow returns the page numbers to link, split into groups that are
// rendered with a gap marker between them. Short lists are shown in full;
// longer ones keep the first and last two pages plus a window around the
// current page.
func linkWindow(current, last int) [][]int {
	if last < linksOnEachSide*2+8 {
		return [][]int{pageRange(1, last)}
	}

	window := linksOnEachSide + 4
	switch {
	case current <= window:
		return [][]int{
			pageRange(1, window+linksOnEachSide),
			pageRange(last-1, last),
		}
	case current > last-window:
		return [][]int{
			pageRange(1, 2),
			pageRange(last-(window+linksOnEachSide-1), last),
		}
	default:
		return [][]int{
			pageRange(1, 2),
			pageRange(current-linksOnEachSide, current+linksOnEachSide),
			pageRange(last-1, last),
		}
	}
}

func pageRange(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		pages = append(pages, n)
	}
	return pages
}
