package repository

import (
	"testing"
	"time"

	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/models"
)

func TestCategoryRepositoryListWithCounts(t *testing.T) {
	db := setupBlogRepositoryTest(t)
	fx := seedBlogFixtures(t, db)
	empty := models.Category{Name: "Announcements", Slug: "announcements"}
	if err := db.Create(&empty).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	posts := NewPostRepository(db)
	published := createTestPost(t, posts, "pub", constants.PostStatusPublished, fx.author.ID, timePtr(time.Now().UTC()))
	draft := createTestPost(t, posts, "wip", constants.PostStatusDraft, fx.author.ID, nil)
	for _, id := range []uint{published.ID, draft.ID} {
		if _, err := posts.UpdateColumns(id, map[string]interface{}{"category_id": fx.category.ID}); err != nil {
			t.Fatalf("assign category failed: %v", err)
		}
	}

	repo := NewCategoryRepository(db)
	rows, err := repo.ListWithCounts()
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("category count want 2 got %d", len(rows))
	}
	if rows[0].Slug != "announcements" || rows[0].PublishedCount != 0 {
		t.Fatalf("unexpected first category: %+v", rows[0])
	}
	if rows[1].Slug != "engineering" || rows[1].PublishedCount != 1 {
		t.Fatalf("only published posts should be counted: %+v", rows[1])
	}

	ok, err := repo.Exists(fx.category.ID)
	if err != nil || !ok {
		t.Fatalf("category should exist: %v", err)
	}
	ok, err = repo.Exists(9999)
	if err != nil || ok {
		t.Fatalf("missing category should not exist: %v", err)
	}
}

func TestTagRepositoryListWithUsage(t *testing.T) {
	db := setupBlogRepositoryTest(t)
	fx := seedBlogFixtures(t, db)
	posts := NewPostRepository(db)
	first := createTestPost(t, posts, "first", constants.PostStatusDraft, fx.author.ID, nil)
	second := createTestPost(t, posts, "second", constants.PostStatusPublished, fx.author.ID, timePtr(time.Now().UTC()))
	if err := posts.LinkTags(first.ID, []uint{fx.tags[0].ID}); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if err := posts.LinkTags(second.ID, []uint{fx.tags[0].ID, fx.tags[1].ID}); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	repo := NewTagRepository(db)
	rows, err := repo.ListWithUsage()
	if err != nil {
		t.Fatalf("list tags failed: %v", err)
	}
	usage := map[string]int64{}
	for i, row := range rows {
		usage[row.Slug] = row.UsageCount
		if i > 0 && rows[i-1].Name > row.Name {
			t.Fatalf("tags should be ordered by name")
		}
	}
	if usage["go"] != 2 || usage["databases"] != 1 || usage["web"] != 0 {
		t.Fatalf("unexpected usage counts: %+v", usage)
	}

	count, err := repo.CountByIDs([]uint{fx.tags[0].ID, fx.tags[1].ID, 9999})
	if err != nil {
		t.Fatalf("count by ids failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("existing tag count want 2 got %d", count)
	}
}

func TestAuthorRepositoryList(t *testing.T) {
	db := setupBlogRepositoryTest(t)
	fx := seedBlogFixtures(t, db)
	if err := db.Create(&models.Author{Name: "Brian", Slug: "brian"}).Error; err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	repo := NewAuthorRepository(db)
	authors, err := repo.List()
	if err != nil {
		t.Fatalf("list authors failed: %v", err)
	}
	if len(authors) != 2 || authors[0].Name != "Ada" || authors[1].Name != "Brian" {
		t.Fatalf("authors should be ordered by name: %+v", authors)
	}
	if authors[0].Bio != "" {
		t.Fatalf("metadata listing should only select id, name, slug")
	}
	ok, err := repo.Exists(fx.author.ID)
	if err != nil || !ok {
		t.Fatalf("author should exist: %v", err)
	}
}

func TestAdminRepositoryTouchLastLogin(t *testing.T) {
	db := setupBlogRepositoryTest(t)
	admin, _, err := models.ProvisionAdmin(db, "root@example.com", "secret-pass", "admin")
	if err != nil {
		t.Fatalf("provision admin failed: %v", err)
	}
	repo := NewAdminRepository(db)

	got, err := repo.GetByEmail("root@example.com")
	if err != nil || got == nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("new admin should not have last login")
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := repo.TouchLastLogin(admin.ID, at); err != nil {
		t.Fatalf("touch last login failed: %v", err)
	}
	got, err = repo.GetByID(admin.ID)
	if err != nil || got == nil || got.LastLoginAt == nil {
		t.Fatalf("last login should be set: %v", err)
	}
	if !got.LastLoginAt.Equal(at) {
		t.Fatalf("last login want %v got %v", at, got.LastLoginAt)
	}
	missing, err := repo.GetByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("unknown email should return nil, nil")
	}
}
