package constants

// 文章状态常量
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	// PostStatusAll 列表查询时表示不过滤状态
	PostStatusAll = "all"
)

// 管理员角色常量
const (
	AdminRoleAdmin  = "admin"
	AdminRoleEditor = "editor"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskPostPublish    = "post:publish"
	TaskPostCachePurge = "post:cache_purge"
)

// 验证码场景与提供方常量
const (
	CaptchaSceneLogin     = "login"
	CaptchaProviderNone   = "none"
	CaptchaProviderImage  = "image"
	CaptchaDefaultCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// 文章字段长度限制
const (
	PostTitleMaxLength   = 120
	PostExcerptMaxLength = 160
	PostSlugMaxLength    = 90
)
