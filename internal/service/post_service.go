package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inkpost/internal/cache"
	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/editor"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/metrics"
	"github.com/inkpost/internal/models"
	"github.com/inkpost/internal/queue"
	"github.com/inkpost/internal/repository"
	"github.com/inkpost/internal/slug"

	"gorm.io/gorm"
)

// PostService 文章业务服务
type PostService struct {
	repo         repository.PostRepository
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	queueClient  *queue.Client
	blog         config.BlogConfig
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewPostService 创建文章服务
func NewPostService(
	repo repository.PostRepository,
	authorRepo repository.AuthorRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	queueClient *queue.Client,
	cfg *config.Config,
) *PostService {
	svc := &PostService{
		repo:         repo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		queueClient:  queueClient,
		now:          time.Now,
	}
	if cfg != nil {
		svc.blog = cfg.Blog
		svc.cacheTTL = time.Duration(cfg.Cache.PostTTLSeconds) * time.Second
	}
	if svc.blog.DefaultPageSize <= 0 {
		svc.blog.DefaultPageSize = repository.DefaultPageLimit
	}
	if svc.blog.MaxPageSize <= 0 {
		svc.blog.MaxPageSize = repository.MaxPageLimit
	}
	return svc
}

// PostListQuery 文章列表查询参数
type PostListQuery struct {
	Status     string
	Page       int
	Limit      int
	CategoryID uint
	TagID      uint
	Search     string
}

// PostListResult 文章列表结果
type PostListResult struct {
	Items  []PostSummary
	Total  int64
	Page   int
	Limit  int
	Status string
}

// PostAuthorView 文章作者
type PostAuthorView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TaxonomyRef 分类/标签引用
type TaxonomyRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostMediaView 文章媒体
type PostMediaView struct {
	ID       uint   `json:"id"`
	URL      string `json:"url"`
	AltText  string `json:"alt_text"`
	Position int    `json:"position"`
}

// PostSummary 列表项（不含正文）
type PostSummary struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Excerpt        *string         `json:"excerpt"`
	HeroImage      *string         `json:"hero_image"`
	SEOTitle       *string         `json:"seo_title"`
	SEODescription *string         `json:"seo_description"`
	PublishedAt    *time.Time      `json:"published_at"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Author         *PostAuthorView `json:"author"`
	Category       *TaxonomyRef    `json:"category"`
	Tags           []TaxonomyRef   `json:"tags"`
}

// PostDetail 文章详情
type PostDetail struct {
	PostSummary
	Content     string          `json:"content"`
	AuthorID    uint            `json:"author_id"`
	CategoryID  *uint           `json:"category_id"`
	Media       []PostMediaView `json:"media"`
	ReadingTime int             `json:"reading_time"`
}

// CreatePostInput 创建文章输入
type CreatePostInput struct {
	Title          string
	Slug           string
	Content        string
	Status         string
	Excerpt        *string
	HeroImage      *string
	SEOTitle       *string
	SEODescription *string
	PublishedAt    *time.Time
	AuthorID       uint
	CategoryID     *uint
	TagIDs         []uint
}

// PostPatch 部分更新输入，仅写入出现的字段
type PostPatch struct {
	Title          Optional[string]    `json:"title"`
	Slug           Optional[string]    `json:"slug"`
	Content        Optional[string]    `json:"content"`
	Status         Optional[string]    `json:"status"`
	Excerpt        Optional[string]    `json:"excerpt"`
	HeroImage      Optional[string]    `json:"heroImage"`
	SEOTitle       Optional[string]    `json:"seoTitle"`
	SEODescription Optional[string]    `json:"seoDescription"`
	PublishedAt    Optional[time.Time] `json:"publishedAt"`
	AuthorID       Optional[uint]      `json:"authorId"`
	CategoryID     Optional[uint]      `json:"categoryId"`
	TagIDs         Optional[[]uint]    `json:"tagIds"`
}

// ResolveStatus 归一化列表状态过滤：空值取默认，all 表示不过滤
func ResolveStatus(raw, fallback string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		status = fallback
	}
	switch status {
	case constants.PostStatusAll, constants.PostStatusDraft, constants.PostStatusScheduled, constants.PostStatusPublished:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

func isPostStatus(status string) bool {
	switch status {
	case constants.PostStatusDraft, constants.PostStatusScheduled, constants.PostStatusPublished:
		return true
	default:
		return false
	}
}

// List 文章列表
func (s *PostService) List(q PostListQuery) (*PostListResult, error) {
	status, err := ResolveStatus(q.Status, constants.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	p := repository.NormalizePage(q.Page, q.Limit, s.blog.DefaultPageSize, s.blog.MaxPageSize)

	filter := repository.PostListFilter{
		Page:       p.Number,
		PageSize:   p.Limit,
		CategoryID: q.CategoryID,
		TagID:      q.TagID,
		Search:     q.Search,
	}
	if status != constants.PostStatusAll {
		filter.Status = status
	}
	posts, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	items := make([]PostSummary, 0, len(posts))
	for i := range posts {
		items = append(items, toPostSummary(&posts[i], false))
	}
	return &PostListResult{
		Items:  items,
		Total:  total,
		Page:   p.Number,
		Limit:  p.Limit,
		Status: status,
	}, nil
}

// GetPublishedBySlug 获取已发布文章详情（优先读缓存）
func (s *PostService) GetPublishedBySlug(ctx context.Context, postSlug string) (*PostDetail, error) {
	postSlug = strings.TrimSpace(postSlug)
	if postSlug == "" {
		return nil, ErrPostNotFound
	}

	var cached PostDetail
	hit, err := cache.GetPostDetail(ctx, postSlug, &cached)
	if err != nil {
		logger.Warnw("post_cache_read_failed", "slug", postSlug, "error", err)
	}
	if hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	if cache.Enabled() {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	post, err := s.repo.GetBySlug(postSlug, true)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	detail := toPostDetail(post)
	if err := cache.SetPostDetail(ctx, postSlug, detail, s.cacheTTL); err != nil {
		logger.Warnw("post_cache_write_failed", "slug", postSlug, "error", err)
	}
	return detail, nil
}

// GetByID 获取任意状态的文章详情
func (s *PostService) GetByID(id uint) (*PostDetail, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return toPostDetail(post), nil
}

// Create 创建文章及标签关联
func (s *PostService) Create(input CreatePostInput) (post *models.Post, err error) {
	defer func() { metrics.ObservePostWrite("create", err) }()

	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	if input.Status == "" {
		input.Status = constants.PostStatusDraft
	}
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(&input.AuthorID, input.CategoryID, input.TagIDs); err != nil {
		return nil, err
	}

	publishedAt := normalizeTime(input.PublishedAt)
	if input.Status == constants.PostStatusPublished && publishedAt == nil {
		now := s.now().UTC()
		publishedAt = &now
	}

	excerpt := input.Excerpt
	if excerpt == nil {
		excerpt = s.deriveExcerpt(input.Content)
	}

	post = &models.Post{
		Title:          input.Title,
		Slug:           input.Slug,
		Content:        input.Content,
		Status:         input.Status,
		Excerpt:        excerpt,
		HeroImage:      input.HeroImage,
		SEOTitle:       input.SEOTitle,
		SEODescription: input.SEODescription,
		PublishedAt:    publishedAt,
		AuthorID:       input.AuthorID,
		CategoryID:     input.CategoryID,
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(post); err != nil {
			return err
		}
		if len(input.TagIDs) > 0 {
			return txRepo.LinkTags(post.ID, input.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, translateWriteError(err)
	}

	logger.Infow("post_created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	s.afterWrite(post.ID, post.Status, post.PublishedAt, "create")
	return post, nil
}

// Update 按字段更新文章；tagIds 出现时整体替换标签
func (s *PostService) Update(id uint, patch PostPatch) (err error) {
	defer func() { metrics.ObservePostWrite("update", err) }()

	columns, err := s.buildUpdateColumns(patch)
	if err != nil {
		return err
	}
	var authorID *uint
	if patch.AuthorID.HasValue() {
		authorID = &patch.AuthorID.Value
	}
	var categoryID *uint
	if patch.CategoryID.HasValue() {
		categoryID = &patch.CategoryID.Value
	}
	// tagIds 为 null 时视为未提供，不清空已有标签
	replaceTags := patch.TagIDs.HasValue()
	var tagIDs []uint
	if replaceTags {
		tagIDs = patch.TagIDs.Value
	}

	exists, err := s.repo.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPostNotFound
	}
	if err := s.checkReferences(authorID, categoryID, tagIDs); err != nil {
		return err
	}

	var current *models.Post
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		existing, err := txRepo.GetByID(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrPostNotFound
		}
		if err := validateScheduledState(existing, columns, patch); err != nil {
			return err
		}
		if len(columns) > 0 {
			columns["updated_at"] = s.now()
			if _, err := txRepo.UpdateColumns(id, columns); err != nil {
				return err
			}
		}
		if replaceTags {
			if err := txRepo.ReplaceTags(id, tagIDs); err != nil {
				return err
			}
		}
		current, err = txRepo.GetByID(id)
		return err
	})
	if err != nil {
		return translateWriteError(err)
	}

	logger.Infow("post_updated", "post_id", id, "columns", len(columns), "tags_replaced", replaceTags)
	if current != nil {
		s.afterWrite(current.ID, current.Status, current.PublishedAt, "update")
	}
	return nil
}

// Delete 删除文章
func (s *PostService) Delete(id uint) (err error) {
	defer func() { metrics.ObservePostWrite("delete", err) }()

	rows, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}
	logger.Infow("post_deleted", "post_id", id)
	s.afterWrite(id, "", nil, "delete")
	return nil
}

// PublishDue 发布所有已到期的定时文章，返回发布数量
func (s *PostService) PublishDue(source string) (int, error) {
	now := s.now().UTC()
	due, err := s.repo.ListDueScheduled(now, 100)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, item := range due {
		ok, err := s.repo.PublishIfDue(item.ID, now)
		if err != nil {
			logger.Errorw("post_publish_failed", "post_id", item.ID, "source", source, "error", err)
			continue
		}
		if ok {
			published++
			logger.Infow("post_published", "post_id", item.ID, "slug", item.Slug, "source", source)
		}
	}
	if published > 0 {
		metrics.PostsPublished.WithLabelValues(source).Add(float64(published))
		s.invalidateCache()
	}
	return published, nil
}

// PublishScheduled 发布指定的定时文章（队列任务使用）
func (s *PostService) PublishScheduled(id uint) (bool, error) {
	ok, err := s.repo.PublishIfDue(id, s.now().UTC())
	if err != nil {
		return false, err
	}
	if ok {
		metrics.PostsPublished.WithLabelValues("queue").Inc()
		logger.Infow("post_published", "post_id", id, "source", "queue")
		s.invalidateCache()
	}
	return ok, nil
}

// PurgeCache 使文章详情缓存失效
func (s *PostService) PurgeCache(ctx context.Context) error {
	return cache.InvalidatePosts(ctx)
}

func (s *PostService) validateCreate(input CreatePostInput) error {
	if input.Title == "" {
		return newValidationError("title", "title is required")
	}
	if input.Slug == "" {
		return newValidationError("slug", "slug is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return newValidationError("content", "content is required")
	}
	if input.AuthorID == 0 {
		return newValidationError("authorId", "authorId is required")
	}
	if err := validateTitle(input.Title); err != nil {
		return err
	}
	if !slug.Valid(input.Slug) {
		return &ValidationError{Field: "slug", Message: ErrInvalidSlug.Error(), Err: ErrInvalidSlug}
	}
	if !isPostStatus(input.Status) {
		return ErrInvalidStatus
	}
	if input.Excerpt != nil {
		if err := validateExcerpt(*input.Excerpt); err != nil {
			return err
		}
	}
	if input.Status == constants.PostStatusScheduled && input.PublishedAt == nil {
		return newValidationError("publishedAt", "publishedAt is required for scheduled posts")
	}
	return nil
}

func (s *PostService) buildUpdateColumns(patch PostPatch) (map[string]interface{}, error) {
	columns := make(map[string]interface{})

	if patch.Title.Set {
		if patch.Title.Null || strings.TrimSpace(patch.Title.Value) == "" {
			return nil, newValidationError("title", "title cannot be empty")
		}
		title := strings.TrimSpace(patch.Title.Value)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		columns["title"] = title
	}
	if patch.Slug.Set {
		if patch.Slug.Null || strings.TrimSpace(patch.Slug.Value) == "" {
			return nil, newValidationError("slug", "slug cannot be empty")
		}
		value := strings.TrimSpace(patch.Slug.Value)
		if !slug.Valid(value) {
			return nil, &ValidationError{Field: "slug", Message: ErrInvalidSlug.Error(), Err: ErrInvalidSlug}
		}
		columns["slug"] = value
	}
	if patch.Content.Set {
		if patch.Content.Null || strings.TrimSpace(patch.Content.Value) == "" {
			return nil, newValidationError("content", "content cannot be empty")
		}
		columns["content"] = patch.Content.Value
	}
	if patch.Status.Set {
		status := strings.ToLower(strings.TrimSpace(patch.Status.Value))
		if patch.Status.Null || !isPostStatus(status) {
			return nil, ErrInvalidStatus
		}
		columns["status"] = status
	}
	if patch.AuthorID.Set {
		if patch.AuthorID.Null || patch.AuthorID.Value == 0 {
			return nil, newValidationError("authorId", "authorId cannot be empty")
		}
		columns["author_id"] = patch.AuthorID.Value
	}
	if patch.Excerpt.HasValue() {
		if err := validateExcerpt(patch.Excerpt.Value); err != nil {
			return nil, err
		}
	}

	setNullableString(columns, "excerpt", patch.Excerpt)
	setNullableString(columns, "hero_image", patch.HeroImage)
	setNullableString(columns, "seo_title", patch.SEOTitle)
	setNullableString(columns, "seo_description", patch.SEODescription)
	if patch.PublishedAt.Set {
		if patch.PublishedAt.Null {
			columns["published_at"] = nil
		} else {
			columns["published_at"] = patch.PublishedAt.Value.UTC()
		}
	} else if columns["status"] == constants.PostStatusPublished {
		// 首次发布时补齐发布时间，已有值保持不变
		columns["published_at"] = gorm.Expr("COALESCE(published_at, ?)", s.now().UTC())
	}
	if patch.CategoryID.Set {
		if patch.CategoryID.Null || patch.CategoryID.Value == 0 {
			columns["category_id"] = nil
		} else {
			columns["category_id"] = patch.CategoryID.Value
		}
	}
	return columns, nil
}

// deriveExcerpt 未提供摘要时从正文生成，长度受 blog.excerpt_length 与字段上限约束
func (s *PostService) deriveExcerpt(content string) *string {
	limit := s.blog.ExcerptLength
	if limit <= 0 {
		return nil
	}
	if limit > constants.PostExcerptMaxLength {
		limit = constants.PostExcerptMaxLength
	}
	text := editor.Excerpt(content, limit)
	if text == "" {
		return nil
	}
	return &text
}

// validateScheduledState 更新后的定时文章必须带发布时间，否则无法被发布
func validateScheduledState(existing *models.Post, columns map[string]interface{}, patch PostPatch) error {
	status := existing.Status
	if value, ok := columns["status"].(string); ok {
		status = value
	}
	if status != constants.PostStatusScheduled {
		return nil
	}
	hasPublishedAt := existing.PublishedAt != nil
	if patch.PublishedAt.Set {
		hasPublishedAt = !patch.PublishedAt.Null
	}
	if !hasPublishedAt {
		return newValidationError("publishedAt", "publishedAt is required for scheduled posts")
	}
	return nil
}

func setNullableString(columns map[string]interface{}, column string, value Optional[string]) {
	if !value.Set {
		return
	}
	if value.Null {
		columns[column] = nil
		return
	}
	columns[column] = value.Value
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > constants.PostTitleMaxLength {
		return newValidationError("title", fmt.Sprintf("title must be at most %d characters", constants.PostTitleMaxLength))
	}
	return nil
}

func validateExcerpt(excerpt string) error {
	if utf8.RuneCountInString(excerpt) > constants.PostExcerptMaxLength {
		return newValidationError("excerpt", fmt.Sprintf("excerpt must be at most %d characters", constants.PostExcerptMaxLength))
	}
	return nil
}

// checkReferences 校验作者/分类/标签是否存在（sqlite 默认不启用外键约束）
func (s *PostService) checkReferences(authorID, categoryID *uint, tagIDs []uint) error {
	if authorID != nil && s.authorRepo != nil {
		ok, err := s.authorRepo.Exists(*authorID)
		if err != nil {
			return err
		}
		if !ok {
			return newReferenceError("authorId")
		}
	}
	if categoryID != nil && *categoryID > 0 && s.categoryRepo != nil {
		ok, err := s.categoryRepo.Exists(*categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return newReferenceError("categoryId")
		}
	}
	if len(tagIDs) > 0 && s.tagRepo != nil {
		for _, id := range tagIDs {
			if id == 0 {
				return newReferenceError("tagIds")
			}
		}
		unique := uniqueIDs(tagIDs)
		count, err := s.tagRepo.CountByIDs(unique)
		if err != nil {
			return err
		}
		if count != int64(len(unique)) {
			return newReferenceError("tagIds")
		}
	}
	return nil
}

func (s *PostService) afterWrite(id uint, status string, publishedAt *time.Time, reason string) {
	s.invalidateCache()
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if status == constants.PostStatusScheduled && publishedAt != nil {
		payload := queue.PostPublishPayload{PostID: id, PublishAtTS: publishedAt.Unix()}
		if err := s.queueClient.EnqueuePostPublish(payload, *publishedAt); err != nil {
			logger.Warnw("post_publish_enqueue_failed", "post_id", id, "error", err)
		}
	}
	if err := s.queueClient.EnqueuePostCachePurge(queue.PostCachePurgePayload{PostID: id, Reason: reason}); err != nil {
		logger.Warnw("post_cache_purge_enqueue_failed", "post_id", id, "error", err)
	}
}

func (s *PostService) invalidateCache() {
	if err := cache.InvalidatePosts(context.Background()); err != nil {
		logger.Warnw("post_cache_invalidate_failed", "error", err)
	}
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsUniqueViolation(err) {
		return ErrSlugExists
	}
	if repository.IsForeignKeyViolation(err) {
		return &ValidationError{Field: "reference", Message: "referenced record does not exist", Err: ErrInvalidReference}
	}
	return err
}

func normalizeTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func toPostSummary(post *models.Post, withProfile bool) PostSummary {
	summary := PostSummary{
		ID:             post.ID,
		Title:          post.Title,
		Slug:           post.Slug,
		Excerpt:        post.Excerpt,
		HeroImage:      post.HeroImage,
		SEOTitle:       post.SEOTitle,
		SEODescription: post.SEODescription,
		PublishedAt:    post.PublishedAt,
		Status:         post.Status,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
		Tags:           make([]TaxonomyRef, 0, len(post.Tags)),
	}
	if post.Author != nil {
		summary.Author = &PostAuthorView{
			ID:   post.Author.ID,
			Name: post.Author.Name,
			Slug: post.Author.Slug,
		}
		if withProfile {
			summary.Author.Bio = post.Author.Bio
			summary.Author.AvatarURL = post.Author.AvatarURL
		}
	}
	if post.Category != nil {
		summary.Category = &TaxonomyRef{ID: post.Category.ID, Name: post.Category.Name, Slug: post.Category.Slug}
	}
	for _, tag := range post.Tags {
		summary.Tags = append(summary.Tags, TaxonomyRef{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	return summary
}

func toPostDetail(post *models.Post) *PostDetail {
	detail := &PostDetail{
		PostSummary: toPostSummary(post, true),
		Content:     post.Content,
		AuthorID:    post.AuthorID,
		CategoryID:  post.CategoryID,
		Media:       make([]PostMediaView, 0, len(post.Media)),
		ReadingTime: editor.ReadingTime(post.Content),
	}
	for _, media := range post.Media {
		detail.Media = append(detail.Media, PostMediaView{
			ID:       media.ID,
			URL:      media.URL,
			AltText:  media.AltText,
			Position: media.Position,
		})
	}
	return detail
}
