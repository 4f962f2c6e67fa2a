package service

import (
	"github.com/inkpost/internal/repository"
)

// TagService 标签业务服务
type TagService struct {
	repo repository.TagRepository
}

// NewTagService 创建标签服务
func NewTagService(repo repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

// List 获取标签列表（含使用次数）
func (s *TagService) List() ([]repository.TagWithUsage, error) {
	return s.repo.ListWithUsage()
}
