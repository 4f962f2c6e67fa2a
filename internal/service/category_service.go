package service

import (
	"github.com/inkpost/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List 获取分类列表（含已发布文章数）
func (s *CategoryService) List() ([]repository.CategoryWithCount, error) {
	return s.repo.ListWithCounts()
}
