package repository

import "time"

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page           int
	PageSize       int
	Status         string // 为空表示不过滤
	CategoryID     uint
	TagID          uint
	Search         string // 标题/slug 关键字（后台使用）
	IncludeContent bool
}

// CategoryWithCount 分类及其已发布文章数
type CategoryWithCount struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	PublishedCount int64  `json:"published_count"`
}

// TagWithUsage 标签及其使用次数
type TagWithUsage struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	UsageCount int64  `json:"usage_count"`
}

// ScheduledPost 待定时发布的文章
type ScheduledPost struct {
	ID          uint
	Slug        string
	PublishedAt time.Time
}
