package models

import "time"

// AdminUser 后台管理员表
type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                     // 主键
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`      // 登录邮箱（小写）
	PasswordHash string     `gorm:"not null" json:"-"`                                        // 密码哈希（不返回给前端）
	Role         string     `gorm:"type:varchar(32);not null;default:admin;index" json:"role"` // 角色
	LastLoginAt  *time.Time `json:"last_login_at"`                                            // 最后登录时间
	CreatedAt    time.Time  `json:"created_at"`                                               // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (AdminUser) TableName() string {
	return "admin_users"
}
