package models

// Author 作者表（只读参考数据）
type Author struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Bio       string `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL string `gorm:"column:avatar_url;type:text" json:"avatar_url,omitempty"`
}

// TableName 指定表名
func (Author) TableName() string {
	return "authors"
}
