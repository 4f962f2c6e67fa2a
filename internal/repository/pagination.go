package repository

import "gorm.io/gorm"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page 归一化后的分页参数
type Page struct {
	Number int
	Limit  int
}

// Offset 当前页起始偏移
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// NormalizePage 页码小于 1 视为第一页；limit 缺省取 defaultLimit，超出 maxLimit 截断
func NormalizePage(page, limit, defaultLimit, maxLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxPageLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

// applyPagination pageSize 为 0 表示不分页；上限由调用方先经 NormalizePage 截断
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	p := NormalizePage(page, pageSize, pageSize, pageSize)
	return query.Limit(p.Limit).Offset(p.Offset())
}
