package main

import (
	"errors"
	"time"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/editor"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/models"
	"github.com/inkpost/internal/slug"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const welcomeContent = `<h2>Welcome to Inkpost</h2>
<p>This post was created by the <strong>seed</strong> command. Edit it from the admin panel or remove it once your own posts are in place.</p>
<ul><li>Posts support drafts, scheduling and publishing.</li><li>Tags and categories are managed as reference data.</li></ul>`

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	authors := []models.Author{
		{Name: "Ada Lovelace", Bio: "Writes about engines and the numbers behind them."},
		{Name: "Grace Hopper", Bio: "Compilers, debugging and plain-spoken engineering."},
	}
	for i := range authors {
		authors[i].Slug = slug.Make(authors[i].Name)
	}
	if err := upsertBySlug(models.DB, &authors); err != nil {
		stdLog.Fatalf("Failed to seed authors: %v", err)
	}

	categories := []models.Category{
		{Name: "Engineering", Description: "Building and running software."},
		{Name: "Product", Description: "Release notes and roadmaps."},
		{Name: "Culture", Description: "How the team works."},
	}
	for i := range categories {
		categories[i].Slug = slug.Make(categories[i].Name)
	}
	if err := upsertBySlug(models.DB, &categories); err != nil {
		stdLog.Fatalf("Failed to seed categories: %v", err)
	}

	tags := []models.Tag{
		{Name: "Go"},
		{Name: "Databases"},
		{Name: "Release Notes"},
	}
	for i := range tags {
		tags[i].Slug = slug.Make(tags[i].Name)
	}
	if err := upsertBySlug(models.DB, &tags); err != nil {
		stdLog.Fatalf("Failed to seed tags: %v", err)
	}

	if err := seedWelcomePost(models.DB, cfg.Blog.ExcerptLength); err != nil {
		stdLog.Fatalf("Failed to seed welcome post: %v", err)
	}
	stdLog.Printf("Seed completed")
}

// upsertBySlug 按 slug 去重写入参考数据，已存在的记录保持不变
func upsertBySlug(db *gorm.DB, rows interface{}) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(rows).Error
}

func seedWelcomePost(db *gorm.DB, excerptLength int) error {
	const welcomeSlug = "welcome-to-inkpost"
	var existing models.Post
	err := db.Where("slug = ?", welcomeSlug).First(&existing).Error
	if err == nil {
		logger.Infow("seed_post_exists", "slug", welcomeSlug)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var author models.Author
	if err := db.Where("slug = ?", slug.Make("Ada Lovelace")).First(&author).Error; err != nil {
		return err
	}
	var category models.Category
	if err := db.Where("slug = ?", "engineering").First(&category).Error; err != nil {
		return err
	}
	var tags []models.Tag
	if err := db.Where("slug IN ?", []string{"go", "release-notes"}).Find(&tags).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	excerpt := editor.Excerpt(welcomeContent, excerptLength)
	post := models.Post{
		Title:       "Welcome to Inkpost",
		Slug:        welcomeSlug,
		Content:     welcomeContent,
		Excerpt:     &excerpt,
		PublishedAt: &now,
		Status:      constants.PostStatusPublished,
		AuthorID:    author.ID,
		CategoryID:  &category.ID,
		Tags:        tags,
	}
	if err := db.Create(&post).Error; err != nil {
		return err
	}
	logger.Infow("seed_post_created", "post_id", post.ID, "slug", post.Slug)
	return nil
}
