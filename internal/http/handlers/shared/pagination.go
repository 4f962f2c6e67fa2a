package shared

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListParams 列表查询参数（未解析的值按 0 处理，由 service 归一化）
type ListParams struct {
	Status     string
	Page       int
	Limit      int
	CategoryID uint
	TagID      uint
	Search     string
}

// ParseListParams 读取 status/page/limit/category_id/tag_id/search，
// limit 兼容 page_size 写法。
func ParseListParams(c *gin.Context) ListParams {
	limitRaw := c.Query("limit")
	if limitRaw == "" {
		limitRaw = c.Query("page_size")
	}
	return ListParams{
		Status:     c.Query("status"),
		Page:       atoiOrZero(c.Query("page")),
		Limit:      atoiOrZero(limitRaw),
		CategoryID: uintOrZero(c.Query("category_id")),
		TagID:      uintOrZero(c.Query("tag_id")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
}

// ParseID 解析路径中的正整数 ID
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func atoiOrZero(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func uintOrZero(raw string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
