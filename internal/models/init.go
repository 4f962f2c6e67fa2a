package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inkpost/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProvisionAdmin 按邮箱创建或更新管理员（离线开通脚本使用）
// 返回 created=true 表示新建
func ProvisionAdmin(db *gorm.DB, email, password, role string) (*AdminUser, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.TrimSpace(role)
	if email == "" || password == "" {
		return nil, false, errors.New("email and password are required")
	}
	if role == "" {
		role = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	var existing AdminUser
	created := false
	err = db.Where("email = ?", email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created = true
	} else if err != nil {
		return nil, false, err
	}

	admin := AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "updated_at"}),
	}).Create(&admin).Error
	if err != nil {
		return nil, false, err
	}

	var stored AdminUser
	if err := db.Where("email = ?", email).First(&stored).Error; err != nil {
		return nil, false, err
	}
	if created {
		logger.Infow("admin_user_created", "email", email, "role", role)
	} else {
		logger.Infow("admin_user_updated", "email", email, "role", role)
	}
	return &stored, created, nil
}
