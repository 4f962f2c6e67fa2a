package service

import (
	"github.com/inkpost/internal/repository"
)

// AuthorService 作者业务服务
type AuthorService struct {
	repo repository.AuthorRepository
}

// NewAuthorService 创建作者服务
func NewAuthorService(repo repository.AuthorRepository) *AuthorService {
	return &AuthorService{repo: repo}
}

// AuthorOption 后台下拉选项
type AuthorOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListOptions 获取作者选项列表
func (s *AuthorService) ListOptions() ([]AuthorOption, error) {
	authors, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	options := make([]AuthorOption, 0, len(authors))
	for _, author := range authors {
		options = append(options, AuthorOption{ID: author.ID, Name: author.Name, Slug: author.Slug})
	}
	return options, nil
}
