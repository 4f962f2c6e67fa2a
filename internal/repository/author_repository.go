package repository

import (
	"github.com/inkpost/internal/models"

	"gorm.io/gorm"
)

// AuthorRepository 作者数据访问接口
type AuthorRepository interface {
	List() ([]models.Author, error)
	Exists(id uint) (bool, error)
}

// GormAuthorRepository GORM 实现
type GormAuthorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓库
func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

// List 作者列表（仅 id/name/slug），按名称排序
func (r *GormAuthorRepository) List() ([]models.Author, error) {
	authors := make([]models.Author, 0)
	err := r.db.
		Select("id", "name", "slug").
		Order("name ASC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// Exists 判断作者是否存在
func (r *GormAuthorRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
