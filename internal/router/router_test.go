package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/models"
	"github.com/inkpost/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct-horse"
	testEditorEmail   = "editor@example.com"
)

type routerTestEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	author models.Author
	tags   []models.Tag
}

func setupRouterTest(t *testing.T, overrides ...func(cfg *config.Config)) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	env := &routerTestEnv{
		db:     db,
		author: models.Author{Name: "Ada", Slug: "ada"},
		tags: []models.Tag{
			{Name: "go", Slug: "go"},
			{Name: "sql", Slug: "sql"},
		},
	}
	if err := db.Create(&env.author).Error; err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	if err := db.Create(&env.tags).Error; err != nil {
		t.Fatalf("create tags failed: %v", err)
	}
	if _, _, err := models.ProvisionAdmin(db, testAdminEmail, testAdminPassword, "admin"); err != nil {
		t.Fatalf("provision admin failed: %v", err)
	}
	if _, _, err := models.ProvisionAdmin(db, testEditorEmail, testAdminPassword, "editor"); err != nil {
		t.Fatalf("provision editor failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{SecretKey: "router-test-secret", ExpireHours: 2, Issuer: "inkpost"},
		Security: config.SecurityConfig{
			LoginRateLimit: config.RateLimitConfig{WindowSeconds: 900, MaxRequests: 20},
			WriteRateLimit: config.RateLimitConfig{WindowSeconds: 60, MaxRequests: 100},
			BodyLimitBytes: 1 << 20,
		},
		Blog:    config.BlogConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Captcha: config.CaptchaConfig{Provider: "none"},
	}
	for _, override := range overrides {
		override(cfg)
	}
	container, err := provider.Build(cfg, db, nil)
	if err != nil {
		t.Fatalf("build container failed: %v", err)
	}
	env.engine = SetupRouter(cfg, container)
	return env
}

func (e *routerTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *routerTestEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"email":    email,
		"password": testAdminPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status want 200 got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decodeJSON(t, w, &resp)
	if resp.Token == "" || resp.User.Email != strings.ToLower(strings.TrimSpace(email)) {
		t.Fatalf("unexpected login response: %s", w.Body.String())
	}
	return resp.Token
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	decodeJSON(t, w, &resp)
	if resp.RequestID == "" {
		t.Fatalf("error body should carry request_id: %s", w.Body.String())
	}
	return resp.Error
}

type postDetailResponse struct {
	Data struct {
		ID     uint   `json:"id"`
		Slug   string `json:"slug"`
		Status string `json:"status"`
		Tags   []struct {
			ID uint `json:"id"`
		} `json:"tags"`
		Media []interface{} `json:"media"`
	} `json:"data"`
}

func TestAdminPostLifecycle(t *testing.T) {
	env := setupRouterTest(t)
	token := env.login(t, testAdminEmail)

	w := env.do(t, http.MethodPost, "/api/admin/posts", token, map[string]interface{}{
		"title":    "A",
		"slug":     "a",
		"content":  "<p>x</p>",
		"authorId": env.author.ID,
		"tagIds":   []uint{env.tags[0].ID, env.tags[1].ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status want 201 got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data struct {
			ID   uint   `json:"id"`
			Slug string `json:"slug"`
		} `json:"data"`
	}
	decodeJSON(t, w, &created)
	if created.Data.ID == 0 || created.Data.Slug != "a" {
		t.Fatalf("unexpected create response: %s", w.Body.String())
	}
	postPath := fmt.Sprintf("/api/admin/posts/%d", created.Data.ID)

	w = env.do(t, http.MethodGet, postPath, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status want 200 got %d: %s", w.Code, w.Body.String())
	}
	var detail postDetailResponse
	decodeJSON(t, w, &detail)
	if detail.Data.Status != "draft" {
		t.Fatalf("status should default to draft, got %s", detail.Data.Status)
	}
	if len(detail.Data.Tags) != 2 || detail.Data.Tags[0].ID != env.tags[0].ID || detail.Data.Tags[1].ID != env.tags[1].ID {
		t.Fatalf("tags mismatch: %s", w.Body.String())
	}
	if detail.Data.Media == nil || len(detail.Data.Media) != 0 {
		t.Fatalf("media should be an empty list: %s", w.Body.String())
	}

	w = env.do(t, http.MethodPatch, postPath, token, map[string]interface{}{
		"tagIds": []uint{env.tags[1].ID},
		"status": "published",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status want 200 got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodGet, postPath, token, nil)
	decodeJSON(t, w, &detail)
	if len(detail.Data.Tags) != 1 || detail.Data.Tags[0].ID != env.tags[1].ID {
		t.Fatalf("tag replacement mismatch: %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/posts/a", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public get status want 200 got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodDelete, postPath, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status want 204 got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodDelete, postPath, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status want 404 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Post not found" {
		t.Fatalf("second delete message want Post not found got %q", msg)
	}
}

func TestCreatePostValidation(t *testing.T) {
	env := setupRouterTest(t)
	token := env.login(t, testAdminEmail)

	w := env.do(t, http.MethodPost, "/api/admin/posts", token, map[string]interface{}{
		"title":   "Missing author",
		"slug":    "missing-author",
		"content": "<p>x</p>",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "authorId is required" {
		t.Fatalf("message want authorId is required got %q", msg)
	}

	valid := map[string]interface{}{
		"title":    "First",
		"slug":     "dup",
		"content":  "<p>x</p>",
		"authorId": env.author.ID,
	}
	if w := env.do(t, http.MethodPost, "/api/admin/posts", token, valid); w.Code != http.StatusCreated {
		t.Fatalf("first create want 201 got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/admin/posts", token, valid)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate slug want 409 got %d: %s", w.Code, w.Body.String())
	}
	if msg := errorMessage(t, w); msg != "Slug already exists" {
		t.Fatalf("duplicate slug message got %q", msg)
	}

	w = env.do(t, http.MethodPost, "/api/admin/posts", token, `{"title":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed json want 400 got %d", w.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	env := setupRouterTest(t)

	w := env.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password want 401 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Invalid credentials" {
		t.Fatalf("wrong password message got %q", msg)
	}
	var admin models.AdminUser
	if err := env.db.Where("email = ?", testAdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("load admin failed: %v", err)
	}
	if admin.LastLoginAt != nil {
		t.Fatalf("last_login_at must stay unset after a failed login")
	}

	w = env.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{"email": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password want 400 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Email and password are required" {
		t.Fatalf("missing fields message got %q", msg)
	}

	env.login(t, " ADMIN@example.com ")
	if err := env.db.Where("email = ?", testAdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("last_login_at should be set after a successful login")
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := setupRouterTest(t)

	w := env.do(t, http.MethodGet, "/api/admin/posts", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token want 401 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Unauthorized" {
		t.Fatalf("missing token message got %q", msg)
	}

	w = env.do(t, http.MethodGet, "/api/admin/posts", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token want 401 got %d", w.Code)
	}

	editorToken := env.login(t, testEditorEmail)
	w = env.do(t, http.MethodGet, "/api/admin/posts", editorToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("editor token want 403 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Forbidden" {
		t.Fatalf("editor message got %q", msg)
	}

	adminToken := env.login(t, testAdminEmail)
	w = env.do(t, http.MethodGet, "/api/admin/profile", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile want 200 got %d", w.Code)
	}
	var profile struct {
		Data struct {
			Email       string     `json:"email"`
			Role        string     `json:"role"`
			LastLoginAt *time.Time `json:"last_login_at"`
		} `json:"data"`
	}
	decodeJSON(t, w, &profile)
	if profile.Data.Email != testAdminEmail || profile.Data.Role != "admin" || profile.Data.LastLoginAt == nil {
		t.Fatalf("unexpected profile: %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/admin/metadata/authors", adminToken, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"slug":"ada"`) {
		t.Fatalf("authors metadata unexpected: %d %s", w.Code, w.Body.String())
	}
}

func TestPublicPostListingStatusFilter(t *testing.T) {
	env := setupRouterTest(t)
	token := env.login(t, testAdminEmail)

	for _, item := range []struct{ slug, status string }{
		{slug: "draft-one", status: "draft"},
		{slug: "live-one", status: "published"},
		{slug: "live-two", status: "published"},
	} {
		w := env.do(t, http.MethodPost, "/api/admin/posts", token, map[string]interface{}{
			"title":    item.slug,
			"slug":     item.slug,
			"content":  "<p>body</p>",
			"status":   item.status,
			"authorId": env.author.ID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s want 201 got %d: %s", item.slug, w.Code, w.Body.String())
		}
	}

	type listResponse struct {
		Data []struct {
			Slug    string  `json:"slug"`
			Status  string  `json:"status"`
			Content *string `json:"content"`
		} `json:"data"`
		Meta struct {
			Status string `json:"status"`
			Limit  int    `json:"limit"`
			Page   int    `json:"page"`
			Total  int64  `json:"total"`
		} `json:"meta"`
	}

	w := env.do(t, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public list want 200 got %d", w.Code)
	}
	var published listResponse
	decodeJSON(t, w, &published)
	if len(published.Data) != 2 || published.Meta.Total != 2 || published.Meta.Status != "published" {
		t.Fatalf("published listing mismatch: %s", w.Body.String())
	}
	for _, item := range published.Data {
		if item.Status != "published" || item.Content != nil {
			t.Fatalf("published listing row unexpected: %+v", item)
		}
	}
	if published.Meta.Limit != 20 || published.Meta.Page != 1 {
		t.Fatalf("default paging mismatch: %+v", published.Meta)
	}

	w = env.do(t, http.MethodGet, "/api/posts?status=all", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=all want 401 got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/posts?status=all", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status=all want 200 got %d", w.Code)
	}
	var all listResponse
	decodeJSON(t, w, &all)
	if len(all.Data) != 3 || all.Meta.Status != "all" {
		t.Fatalf("status=all should include every post: %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/posts?status=archived", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status want 400 got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/posts/draft-one", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft by slug want 404 got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Post not found" {
		t.Fatalf("draft by slug message got %q", msg)
	}

	w = env.do(t, http.MethodGet, "/api/posts?limit=1&page=2", "", nil)
	var paged listResponse
	decodeJSON(t, w, &paged)
	if len(paged.Data) != 1 || paged.Meta.Page != 2 || paged.Meta.Limit != 1 || paged.Meta.Total != 2 {
		t.Fatalf("paging mismatch: %s", w.Body.String())
	}
}

func TestTaxonomyAndHealthEndpoints(t *testing.T) {
	env := setupRouterTest(t)

	w := env.do(t, http.MethodGet, "/api/tags", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"slug":"go"`) {
		t.Fatalf("tags unexpected: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodGet, "/api/categories", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("categories want 200 got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health want 200 got %d", w.Code)
	}
	var health map[string]string
	decodeJSON(t, w, &health)
	if health["status"] != "ok" || health["time"] == "" {
		t.Fatalf("health body unexpected: %s", w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "inkpost_http_requests_total") {
		t.Fatalf("metrics endpoint unexpected: %d", w.Code)
	}
}

func TestWriteLimiterRunsBeforeAuthentication(t *testing.T) {
	env := setupRouterTest(t, func(cfg *config.Config) {
		cfg.Security.WriteRateLimit = config.RateLimitConfig{WindowSeconds: 60, MaxRequests: 2}
	})
	body := map[string]interface{}{"title": "A", "slug": "a", "content": "<p>x</p>", "authorId": env.author.ID}

	for i := 0; i < 2; i++ {
		if w := env.do(t, http.MethodPost, "/api/admin/posts", "", body); w.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous write %d want 401 got %d", i+1, w.Code)
		}
	}
	w := env.do(t, http.MethodPost, "/api/admin/posts", "", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous write flood want 429 got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 should carry Retry-After")
	}
	if w := env.do(t, http.MethodGet, "/api/admin/posts", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("reads should not share the write limiter, got %d", w.Code)
	}
}
