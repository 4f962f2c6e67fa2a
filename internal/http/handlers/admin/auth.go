package admin

import (
	"net/http"
	"time"

	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/http/handlers/shared"
	"github.com/inkpost/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
// 邮箱与密码的必填校验交给 AuthService，保持统一的错误文案
type LoginRequest struct {
	Email          string                       `json:"email"`
	Password       string                       `json:"password"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginUser 登录成功返回的管理员信息
type LoginUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      LoginUser `json:"user"`
}

// ProfileResponse 管理员资料
type ProfileResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !shared.BindJSON(c, &req) {
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		User: LoginUser{
			ID:    admin.ID,
			Email: admin.Email,
			Role:  admin.Role,
		},
	})
}

// GetCaptcha 获取登录图片验证码
func (h *Handler) GetCaptcha(c *gin.Context) {
	setting := h.CaptchaService.Setting()
	if !setting.IsSceneEnabled(constants.CaptchaSceneLogin) {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// GetProfile 当前管理员资料
func (h *Handler) GetProfile(c *gin.Context) {
	adminID, ok := shared.GetAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetProfile(adminID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, ProfileResponse{
		ID:          admin.ID,
		Email:       admin.Email,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
		CreatedAt:   admin.CreatedAt,
	})
}
