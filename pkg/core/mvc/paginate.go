package mvc

import (
	"math"

	"gorm.io/gorm"
)

type Page struct {
	PageNum int    `json:"pageNum" query:"pageNum"`
	Size    int    `json:"size" query:"size"`
	Sort    string `json:"sort" query:"sort"`
}

// Normalize 补齐默认页码和页大小，页大小上限 200
func (page *Page) Normalize() {
	if page.PageNum <= 0 {
		page.PageNum = 1
	}
	if page.Size <= 0 {
		page.Size = 10
	}
	if page.Size > 200 {
		page.Size = 200
	}
	// 偏移量不超过 int32，过大的页码直接落到空页
	if page.PageNum > math.MaxInt32/page.Size {
		page.PageNum = math.MaxInt32 / page.Size
	}
}

func Paginate(page *Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page.Normalize()
		return db.Offset((page.PageNum - 1) * page.Size).Limit(page.Size)
	}
}
