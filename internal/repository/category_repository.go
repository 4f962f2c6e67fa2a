package repository

import (
	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	ListWithCounts() ([]CategoryWithCount, error)
	Exists(id uint) (bool, error)
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListWithCounts 分类列表，附带已发布文章数，按名称排序
func (r *GormCategoryRepository) ListWithCounts() ([]CategoryWithCount, error) {
	rows := make([]CategoryWithCount, 0)
	err := r.db.Model(&models.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.description, COUNT(posts.id) AS published_count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id AND posts.status = ?", constants.PostStatusPublished).
		Group("categories.id, categories.name, categories.slug, categories.description").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists 判断分类是否存在
func (r *GormCategoryRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
