package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaginationParams struct {
	Page  int    `json:"page" form:"page"`
	Limit int    `json:"limit" form:"limit"`
	Sort  string `json:"sort" form:"sort"`
	Order string `json:"order" form:"order"`
}

type PaginationMeta struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Pages       int   `json:"pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// GetPaginationParams reads page and limit from the query string. Values that
// are missing or not positive integers fall back to the defaults.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	return NewPaginationParams(c.Query("page"), c.Query("limit"))
}

func NewPaginationParams(pageStr, limitStr string) *PaginationParams {
	page := DefaultPage
	if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
		page = v
	}

	limit := DefaultPageSize
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
		limit = v
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// Keep (page-1)*limit from overflowing. Such a page is past any result set.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	return &PaginationParams{
		Page:  page,
		Limit: limit,
		Sort:  "created_at",
		Order: "desc",
	}
}

func (p *PaginationParams) GetSkip() int {
	return (p.Page - 1) * p.Limit
}

func (p *PaginationParams) GetLimit() int {
	return p.Limit
}

func (p *PaginationParams) GetSortOptions() *options.FindOptions {
	opts := options.Find()
	opts.SetSkip(int64(p.GetSkip()))
	opts.SetLimit(int64(p.GetLimit()))

	sortOrder := 1
	if p.Order == "desc" {
		sortOrder = -1
	}
	// _id breaks ties between ratings created in the same millisecond
	opts.SetSort(bson.D{{Key: p.Sort, Value: sortOrder}, {Key: "_id", Value: sortOrder}})

	return opts
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	pages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginationMeta{
		Total:       total,
		Page:        params.Page,
		Limit:       params.Limit,
		Pages:       pages,
		HasNext:     params.Page < pages,
		HasPrevious: params.Page > 1,
	}
}
