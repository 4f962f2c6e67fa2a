package admin

import (
	"time"

	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/http/handlers/shared"
	"github.com/inkpost/internal/http/response"
	"github.com/inkpost/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInvalidPostID = "id must be a positive integer"

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Title          string     `json:"title" binding:"required"`
	Slug           string     `json:"slug" binding:"required"`
	Content        string     `json:"content" binding:"required"`
	Status         string     `json:"status"`
	Excerpt        *string    `json:"excerpt"`
	HeroImage      *string    `json:"heroImage"`
	SEOTitle       *string    `json:"seoTitle"`
	SEODescription *string    `json:"seoDescription"`
	PublishedAt    *time.Time `json:"publishedAt"`
	AuthorID       uint       `json:"authorId" binding:"required"`
	CategoryID     *uint      `json:"categoryId"`
	TagIDs         []uint     `json:"tagIds"`
}

// ToServiceInput 转换为服务层输入
func (r CreatePostRequest) ToServiceInput() service.CreatePostInput {
	return service.CreatePostInput{
		Title:          r.Title,
		Slug:           r.Slug,
		Content:        r.Content,
		Status:         r.Status,
		Excerpt:        r.Excerpt,
		HeroImage:      r.HeroImage,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
		PublishedAt:    r.PublishedAt,
		AuthorID:       r.AuthorID,
		CategoryID:     r.CategoryID,
		TagIDs:         r.TagIDs,
	}
}

// ListPosts 后台文章列表，默认不过滤状态
func (h *Handler) ListPosts(c *gin.Context) {
	params := shared.ParseListParams(c)
	status, err := service.ResolveStatus(params.Status, constants.PostStatusAll)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	result, err := h.PostService.List(service.PostListQuery{
		Status:     status,
		Page:       params.Page,
		Limit:      params.Limit,
		CategoryID: params.CategoryID,
		TagID:      params.TagID,
		Search:     params.Search,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, result.Items, response.ListMeta{
		Status: result.Status,
		Limit:  result.Limit,
		Page:   result.Page,
		Total:  result.Total,
	})
}

// GetPost 按 ID 获取文章（任意状态）
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := shared.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, msgInvalidPostID)
		return
	}
	detail, err := h.PostService.GetByID(id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, detail)
}

// CreatePost 创建文章
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	post, err := h.PostService.Create(req.ToServiceInput())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, gin.H{"id": post.ID, "slug": post.Slug})
}

// UpdatePost 部分更新文章
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := shared.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, msgInvalidPostID)
		return
	}
	var patch service.PostPatch
	if !shared.BindJSON(c, &patch) {
		return
	}
	if err := h.PostService.Update(id, patch); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// DeletePost 删除文章
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := shared.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, msgInvalidPostID)
		return
	}
	if err := h.PostService.Delete(id); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
