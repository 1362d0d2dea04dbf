package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxLimit = 100

type Params struct {
	Page  int
	Limit int
}

// FromQuery reads ?page= and ?limit=, clamping to sane bounds.
func FromQuery(c *gin.Context, defaultLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}

	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxLimit {
		p.Limit = v
	}

	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the list envelope: total count, absolute next/previous page
// URLs (null at the edges) and the items themselves.
type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// NewPage builds the envelope, deriving next/previous links from the
// current request URL.
func NewPage(c *gin.Context, count int64, p Params, results any) Page {
	page := Page{Count: count, Results: results}

	lastPage := int((count + int64(p.Limit) - 1) / int64(p.Limit))
	if p.Page < lastPage {
		u := pageURL(c, p.Page+1)
		page.Next = &u
	}
	if p.Page > 1 {
		u := pageURL(c, p.Page-1)
		page.Previous = &u
	}

	return page
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + u.String()
}
