// Package pagination provides the list-response envelope shared by every
// paginated endpoint.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

type Response[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// Params reads ?page= and ?size=, clamping out-of-range values to defaults.
func Params(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultSize)))
	return Clamp(page, size)
}

func Clamp(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}
	return page, size
}

// Paginate counts the query, fetches one page ordered as the caller left
// it, and fills the envelope.
func Paginate[T any](query *gorm.DB, page, size int) (*Response[T], error) {
	page, size = Clamp(page, size)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, size)
	if err := query.Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return nil, err
	}

	pages := int((total + int64(size) - 1) / int64(size))
	return &Response[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Size:    size,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}, nil
}
