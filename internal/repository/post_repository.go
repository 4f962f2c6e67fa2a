package repository

import (
	"errors"
	"time"

	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postSummaryColumns 列表接口查询的列（不含正文）
var postSummaryColumns = []string{
	"posts.id",
	"posts.title",
	"posts.slug",
	"posts.excerpt",
	"posts.hero_image",
	"posts.seo_title",
	"posts.seo_description",
	"posts.published_at",
	"posts.status",
	"posts.author_id",
	"posts.category_id",
	"posts.created_at",
	"posts.updated_at",
}

// PostRepository 文章数据访问接口
type PostRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PostRepository
	List(filter PostListFilter) ([]models.Post, int64, error)
	GetBySlug(slug string, onlyPublished bool) (*models.Post, error)
	GetByID(id uint) (*models.Post, error)
	Exists(id uint) (bool, error)
	Create(post *models.Post) error
	UpdateColumns(id uint, columns map[string]interface{}) (int64, error)
	LinkTags(postID uint, tagIDs []uint) error
	ReplaceTags(postID uint, tagIDs []uint) error
	Delete(id uint) (int64, error)
	ListDueScheduled(now time.Time, limit int) ([]ScheduledPost, error)
	PublishIfDue(id uint, now time.Time) (bool, error)
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) PostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPostRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 文章列表，按发布时间倒序分页
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})

	if filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}
	if filter.CategoryID > 0 {
		query = query.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.TagID > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag_id = ?)", filter.TagID)
	}
	if condition, args := buildSearchCondition(r.db, filter.Search, "posts.title", "posts.slug"); condition != "" {
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if !filter.IncludeContent {
		query = query.Select(postSummaryColumns)
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	posts := make([]models.Post, 0)
	err := query.
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug")
		}).
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Order(postListOrder).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetBySlug 根据 slug 获取文章（含作者、分类、标签与媒体）
func (r *GormPostRepository) GetBySlug(slug string, onlyPublished bool) (*models.Post, error) {
	query := r.withDetail(r.db).Where("posts.slug = ?", slug)
	if onlyPublished {
		query = query.Where("posts.status = ?", constants.PostStatusPublished)
	}

	var post models.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetByID 根据 ID 获取文章（任意状态）
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetail(r.db).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) withDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_media.position ASC, post_media.id ASC")
		})
}

// Exists 判断文章是否存在
func (r *GormPostRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建文章（不级联写入关联）
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

// UpdateColumns 按列更新文章，返回受影响行数
func (r *GormPostRepository) UpdateColumns(id uint, columns map[string]interface{}) (int64, error) {
	if len(columns) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Post{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// LinkTags 关联标签，重复与已存在的关联会被忽略
func (r *GormPostRepository) LinkTags(postID uint, tagIDs []uint) error {
	links := buildPostTagLinks(postID, tagIDs)
	if len(links) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// ReplaceTags 以给定集合整体替换文章标签
func (r *GormPostRepository) ReplaceTags(postID uint, tagIDs []uint) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	return r.LinkTags(postID, tagIDs)
}

// Delete 删除文章及其标签关联与媒体，返回删除的文章行数
func (r *GormPostRepository) Delete(id uint) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostMedia{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// ListDueScheduled 查询已到发布时间的定时文章
func (r *GormPostRepository) ListDueScheduled(now time.Time, limit int) ([]ScheduledPost, error) {
	if limit <= 0 {
		limit = 100
	}
	var posts []models.Post
	err := r.db.Model(&models.Post{}).
		Select("id", "slug", "published_at").
		Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", constants.PostStatusScheduled, now).
		Order("published_at ASC, id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	result := make([]ScheduledPost, 0, len(posts))
	for _, post := range posts {
		if post.PublishedAt == nil {
			continue
		}
		result = append(result, ScheduledPost{ID: post.ID, Slug: post.Slug, PublishedAt: *post.PublishedAt})
	}
	return result, nil
}

// PublishIfDue 条件发布：仅当文章仍为定时状态且已到期时更新
func (r *GormPostRepository) PublishIfDue(id uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ? AND status = ? AND published_at IS NOT NULL AND published_at <= ?", id, constants.PostStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":     constants.PostStatusPublished,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func buildPostTagLinks(postID uint, tagIDs []uint) []models.PostTag {
	seen := make(map[uint]struct{}, len(tagIDs))
	links := make([]models.PostTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if tagID == 0 {
			continue
		}
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		links = append(links, models.PostTag{PostID: postID, TagID: tagID})
	}
	return links
}
