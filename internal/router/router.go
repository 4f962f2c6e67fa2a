package router

import (
	"fmt"
	"strings"

	"github.com/inkpost/internal/cache"
	"github.com/inkpost/internal/config"
	adminhandlers "github.com/inkpost/internal/http/handlers/admin"
	publichandlers "github.com/inkpost/internal/http/handlers/public"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/metrics"
	"github.com/inkpost/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "inkpost"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:post_write", redisPrefix),
		WindowSeconds: cfg.Security.WriteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WriteRateLimit.MaxRequests,
	}
	writeLimiter := RateLimitMiddleware(redisClient, writeRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(BodyLimitMiddleware(cfg.Security.BodyLimitBytes))

	// 健康检查与指标
	r.GET("/health", publicHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		// 公开接口
		api.GET("/posts", OptionalJWTMiddleware(c.AuthService), publicHandler.ListPosts)
		api.GET("/posts/:slug", publicHandler.GetPostBySlug)
		api.GET("/categories", publicHandler.ListCategories)
		api.GET("/tags", publicHandler.ListTags)

		// 管理员接口
		admin := api.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/auth/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), adminHandler.Login)
			admin.GET("/auth/captcha", adminHandler.GetCaptcha)

			// 需要鉴权的接口
			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", adminHandler.GetProfile)
				authorized.GET("/metadata/authors", adminHandler.ListAuthors)

				// 文章查询
				authorized.GET("/posts", adminHandler.ListPosts)
				authorized.GET("/posts/:id", adminHandler.GetPost)
			}

			// 文章写入：限流先于鉴权，未登录的请求同样计数
			writes := admin.Group("")
			writes.Use(writeLimiter, JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				writes.POST("/posts", adminHandler.CreatePost)
				writes.PATCH("/posts/:id", adminHandler.UpdatePost)
				writes.DELETE("/posts/:id", adminHandler.DeletePost)
			}
		}
	}

	return r
}
