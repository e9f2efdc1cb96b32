package service

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"hrcms/internal/auth"
	"hrcms/internal/models"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultFeedLimit = 5
	MaxFeedLimit     = 20

	maxSearchLength = 100
)

// ListPostsParams is a post listing request as parsed from the query string.
type ListPostsParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Tag      string
	Status   string
	Sort     models.PostSort
}

// ParsePage reads page and limit, falling back to defaults for missing or
// unusable values and clamping limit to [1, MaxLimit].
func ParsePage(v url.Values) (page, limit int) {
	page = atoiOr(v.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	limit = clamp(atoiOr(v.Get("limit"), DefaultLimit), 1, MaxLimit)
	return page, limit
}

// ParseFeedLimit reads the limit of the recent and popular feeds.
func ParseFeedLimit(v url.Values) int {
	return clamp(atoiOr(v.Get("limit"), DefaultFeedLimit), 1, MaxFeedLimit)
}

func ParseListPostsParams(v url.Values) ListPostsParams {
	page, limit := ParsePage(v)

	search := strings.TrimSpace(v.Get("search"))
	if utf8.RuneCountInString(search) > maxSearchLength {
		search = string([]rune(search)[:maxSearchLength])
	}

	return ListPostsParams{
		Page:     page,
		Limit:    limit,
		Category: strings.TrimSpace(v.Get("category")),
		Search:   search,
		Tag:      strings.TrimSpace(v.Get("tag")),
		Status:   strings.TrimSpace(v.Get("status")),
		Sort:     models.PostSort(strings.TrimSpace(v.Get("sort"))),
	}
}

// BuildPostQuery turns listing parameters into a store query. Callers who
// are not admins only ever see published posts, whatever they ask for.
func BuildPostQuery(p ListPostsParams, principal auth.Principal) models.PostQuery {
	q := models.PostQuery{
		CategoryID:     p.Category,
		Tag:            p.Tag,
		Search:         p.Search,
		Sort:           normalizeSort(p.Sort),
		Skip:           (p.Page - 1) * p.Limit,
		Limit:          p.Limit,
		ExcludeContent: true,
	}

	switch {
	case !principal.IsAdmin():
		q.Status = models.PostPublished
	case models.PostStatus(p.Status).Valid():
		q.Status = models.PostStatus(p.Status)
	}
	return q
}

func normalizeSort(s models.PostSort) models.PostSort {
	switch s {
	case models.SortViews, models.SortComments, models.SortLikes:
		return s
	default:
		return models.SortLatest
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
