package repository

import (
	"github.com/inkpost/internal/models"

	"gorm.io/gorm"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	ListWithUsage() ([]TagWithUsage, error)
	CountByIDs(ids []uint) (int64, error)
}

// GormTagRepository GORM 实现
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// ListWithUsage 标签列表，附带关联文章数（不区分状态）
func (r *GormTagRepository) ListWithUsage() ([]TagWithUsage, error) {
	rows := make([]TagWithUsage, 0)
	err := r.db.Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.slug, COUNT(post_tags.post_id) AS usage_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.slug").
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByIDs 统计给定 ID 中真实存在的标签数量
func (r *GormTagRepository) CountByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
