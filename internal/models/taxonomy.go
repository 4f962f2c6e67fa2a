package models

// Category 分类表
type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Tag 标签表
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`
	Slug string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}
