package models

import (
	"time"
)

// Post 博客文章表
type Post struct {
	ID             uint        `gorm:"primarykey" json:"id"`                                              // 主键
	Title          string      `gorm:"type:varchar(255);not null" json:"title"`                           // 标题
	Slug           string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`                // 唯一标识（URL 安全）
	Content        string      `gorm:"type:text;not null" json:"content,omitempty"`                       // HTML 正文（列表接口不返回）
	Excerpt        *string     `gorm:"type:text" json:"excerpt"`                                          // 摘要
	HeroImage      *string     `gorm:"type:text" json:"hero_image"`                                       // 头图（URL 或 data URI）
	SEOTitle       *string     `gorm:"column:seo_title;type:varchar(255)" json:"seo_title"`               // SEO 标题
	SEODescription *string     `gorm:"column:seo_description;type:text" json:"seo_description"`           // SEO 描述
	PublishedAt    *time.Time  `gorm:"index" json:"published_at"`                                         // 发布时间
	Status         string      `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`       // 状态（draft/scheduled/published）
	AuthorID       uint        `gorm:"not null;index" json:"author_id"`                                   // 作者 ID
	CategoryID     *uint       `gorm:"index" json:"category_id"`                                          // 分类 ID（可空）
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt      time.Time   `json:"updated_at"`                                                        // 更新时间
	Author         *Author     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`                       // 作者
	Category       *Category   `gorm:"foreignKey:CategoryID" json:"category"`                             // 分类
	Tags           []Tag       `gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID" json:"tags"` // 标签
	Media          []PostMedia `gorm:"foreignKey:PostID" json:"media,omitempty"`                          // 媒体（按 position 排序）
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// PostTag 文章与标签关联表
type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false"` // 文章 ID
	TagID  uint `gorm:"primaryKey;autoIncrement:false"` // 标签 ID
}

// TableName 指定表名
func (PostTag) TableName() string {
	return "post_tags"
}

// PostMedia 文章媒体表
type PostMedia struct {
	ID       uint   `gorm:"primarykey" json:"id"`                   // 主键
	PostID   uint   `gorm:"not null;index" json:"post_id"`          // 文章 ID
	URL      string `gorm:"type:text;not null" json:"url"`          // 资源地址
	AltText  string `gorm:"type:varchar(255)" json:"alt_text"`      // 替代文本
	Position int    `gorm:"not null;default:0;index" json:"position"` // 展示顺序
}

// TableName 指定表名
func (PostMedia) TableName() string {
	return "post_media"
}
