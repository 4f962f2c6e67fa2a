package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/models"
	"github.com/inkpost/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type blogTestEnv struct {
	db       *gorm.DB
	posts    *PostService
	author   models.Author
	category models.Category
	tags     []models.Tag
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func setupBlogServiceTest(t *testing.T) *blogTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	env := &blogTestEnv{
		db:       db,
		author:   models.Author{Name: "Ada", Slug: "ada", Bio: "Writes about databases"},
		category: models.Category{Name: "Engineering", Slug: "engineering"},
		tags: []models.Tag{
			{Name: "go", Slug: "go"},
			{Name: "sql", Slug: "sql"},
			{Name: "web", Slug: "web"},
		},
	}
	if err := db.Create(&env.author).Error; err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	if err := db.Create(&env.category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if err := db.Create(&env.tags).Error; err != nil {
		t.Fatalf("create tags failed: %v", err)
	}

	cfg := &config.Config{Blog: config.BlogConfig{DefaultPageSize: 20, MaxPageSize: 100}}
	env.posts = NewPostService(
		repository.NewPostRepository(db),
		repository.NewAuthorRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewTagRepository(db),
		nil,
		cfg,
	)
	return env
}

func strPtr(v string) *string {
	return &v
}
