package public

import (
	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/http/handlers/shared"
	"github.com/inkpost/internal/http/response"
	"github.com/inkpost/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPosts 文章列表，默认仅返回已发布文章
// 非 published 的状态过滤需要管理员令牌
func (h *Handler) ListPosts(c *gin.Context) {
	params := shared.ParseListParams(c)
	status, err := service.ResolveStatus(params.Status, constants.PostStatusPublished)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	if status != constants.PostStatusPublished && !h.canReadUnpublished(c) {
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

// canReadUnpublished 校验可选鉴权中间件写入的管理员身份，失败时已输出响应
func (h *Handler) canReadUnpublished(c *gin.Context) bool {
	if _, ok := c.Get(shared.ContextAdminID); !ok {
		response.Error(c, response.CodeUnauthorized, response.MsgUnauthorized)
		return false
	}
	role := c.GetString(shared.ContextAdminRole)
	allowed, err := h.AuthzService.EnforceRole(role, "/admin/posts", "GET")
	if err != nil {
		shared.RespondError(c, response.CodeInternal, response.MsgInternal, err)
		return false
	}
	if !allowed {
		shared.RequestLog(c).Warnw("unpublished_listing_denied", "role", role)
		response.Error(c, response.CodeForbidden, response.MsgForbidden)
		return false
	}
	return true
}

// GetPostBySlug 已发布文章详情
func (h *Handler) GetPostBySlug(c *gin.Context) {
	detail, err := h.PostService.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, detail)
}
