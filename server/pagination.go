package server

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// page is the limit/offset pagination envelope for every list endpoint.
type page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// pageParams reads limit/offset query parameters, clamping them to sane
// bounds.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// paginated builds the envelope around results. Next and previous are full
// URLs or null, preserving the search parameter when present.
func paginated(c *fiber.Ctx, count int64, limit, offset int, results any) page {
	p := page{Count: count, Results: results}

	if int64(offset+limit) < count {
		u := pageURL(c, limit, offset+limit)
		p.Next = &u
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		u := pageURL(c, limit, prev)
		p.Previous = &u
	}
	return p
}

func pageURL(c *fiber.Ctx, limit, offset int) string {
	v := url.Values{}
	v.Set("limit", fmt.Sprint(limit))
	v.Set("offset", fmt.Sprint(offset))
	if q := c.Query("search"); q != "" {
		v.Set("search", q)
	}
	return c.BaseURL() + c.Path() + "?" + v.Encode()
}
