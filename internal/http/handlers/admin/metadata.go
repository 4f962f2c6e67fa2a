package admin

import (
	"github.com/inkpost/internal/http/handlers/shared"
	"github.com/inkpost/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListAuthors 作者下拉选项
func (h *Handler) ListAuthors(c *gin.Context) {
	authors, err := h.AuthorService.ListOptions()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, authors)
}
