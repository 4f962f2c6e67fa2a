package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/inkpost/internal/constants"
	"github.com/inkpost/internal/models"
)

func TestPostServiceCreateAndGetByIDRoundTrip(t *testing.T) {
	env := setupBlogServiceTest(t)
	publishedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	post, err := env.posts.Create(CreatePostInput{
		Title:          "Hello",
		Slug:           "hello",
		Content:        "<p>Hello <strong>world</strong></p>",
		Status:         constants.PostStatusPublished,
		Excerpt:        strPtr("short"),
		SEOTitle:       strPtr("Hello SEO"),
		PublishedAt:    &publishedAt,
		AuthorID:       env.author.ID,
		CategoryID:     &env.category.ID,
		TagIDs:         []uint{env.tags[1].ID, env.tags[0].ID, env.tags[0].ID},
		HeroImage:      strPtr("https://cdn.example.com/hero.png"),
		SEODescription: strPtr("desc"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	detail, err := env.posts.GetByID(post.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if detail.Title != "Hello" || detail.Slug != "hello" || detail.Content != "<p>Hello <strong>world</strong></p>" {
		t.Fatalf("core fields mismatch: %+v", detail)
	}
	if detail.Excerpt == nil || *detail.Excerpt != "short" || detail.SEOTitle == nil || *detail.SEOTitle != "Hello SEO" {
		t.Fatalf("optional fields mismatch")
	}
	if detail.PublishedAt == nil || !detail.PublishedAt.Equal(publishedAt) {
		t.Fatalf("published_at mismatch: %v", detail.PublishedAt)
	}
	if detail.Category == nil || detail.Category.ID != env.category.ID {
		t.Fatalf("category mismatch: %+v", detail.Category)
	}
	if len(detail.Tags) != 2 || detail.Tags[0].Name != "go" || detail.Tags[1].Name != "sql" {
		t.Fatalf("tags mismatch: %+v", detail.Tags)
	}
	if detail.Media == nil || len(detail.Media) != 0 {
		t.Fatalf("media should be an empty list")
	}
	if detail.Author == nil || detail.Author.Bio != "Writes about databases" {
		t.Fatalf("detail author should include bio")
	}
	if detail.ReadingTime != 1 {
		t.Fatalf("reading time want 1 got %d", detail.ReadingTime)
	}
}

func TestPostServiceCreateValidation(t *testing.T) {
	env := setupBlogServiceTest(t)
	base := CreatePostInput{Title: "T", Slug: "t", Content: "<p>x</p>", AuthorID: env.author.ID}

	cases := []struct {
		name  string
		edit  func(in *CreatePostInput)
		field string
	}{
		{"missing title", func(in *CreatePostInput) { in.Title = "  " }, "title"},
		{"missing slug", func(in *CreatePostInput) { in.Slug = "" }, "slug"},
		{"missing content", func(in *CreatePostInput) { in.Content = "" }, "content"},
		{"missing author", func(in *CreatePostInput) { in.AuthorID = 0 }, "authorId"},
		{"bad slug", func(in *CreatePostInput) { in.Slug = "Not A Slug" }, "slug"},
		{"scheduled without date", func(in *CreatePostInput) { in.Status = constants.PostStatusScheduled }, "publishedAt"},
		{"unknown author", func(in *CreatePostInput) { in.AuthorID = 999 }, "authorId"},
		{"unknown tag", func(in *CreatePostInput) { in.TagIDs = []uint{env.tags[0].ID, 999} }, "tagIds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.edit(&input)
			_, err := env.posts.Create(input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want validation error, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("field want %s got %s", tc.field, vErr.Field)
			}
		})
	}

	input := base
	input.Status = "archived"
	if _, err := env.posts.Create(input); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("unknown status want ErrInvalidStatus got %v", err)
	}
}

func TestPostServiceCreateDuplicateSlug(t *testing.T) {
	env := setupBlogServiceTest(t)
	input := CreatePostInput{Title: "A", Slug: "a", Content: "<p>x</p>", AuthorID: env.author.ID}
	if _, err := env.posts.Create(input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := env.posts.Create(input); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists got %v", err)
	}
}

func TestPostServiceCreatePublishedDefaultsPublishedAt(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{Title: "Now", Slug: "now", Content: "<p>x</p>", AuthorID: env.author.ID, Status: "published"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if post.PublishedAt == nil {
		t.Fatalf("published post should get a published_at")
	}
	draft, err := env.posts.Create(CreatePostInput{Title: "Later", Slug: "later", Content: "<p>x</p>", AuthorID: env.author.ID})
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if draft.Status != constants.PostStatusDraft || draft.PublishedAt != nil {
		t.Fatalf("draft defaults mismatch: status=%s published_at=%v", draft.Status, draft.PublishedAt)
	}
}

func TestPostServiceUpdatePatchSemantics(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{
		Title:      "Original",
		Slug:       "original",
		Content:    "<p>x</p>",
		AuthorID:   env.author.ID,
		Excerpt:    strPtr("keep me?"),
		CategoryID: &env.category.ID,
		TagIDs:     []uint{env.tags[0].ID, env.tags[1].ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = env.posts.Update(post.ID, PostPatch{
		Title:      Some("Renamed"),
		Excerpt:    Null[string](),
		CategoryID: Null[uint](),
		TagIDs:     Some([]uint{env.tags[2].ID}),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	detail, err := env.posts.GetByID(post.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if detail.Title != "Renamed" || detail.Slug != "original" {
		t.Fatalf("only supplied fields should change: title=%s slug=%s", detail.Title, detail.Slug)
	}
	if detail.Excerpt != nil || detail.Category != nil {
		t.Fatalf("null should clear nullable columns")
	}
	if len(detail.Tags) != 1 || detail.Tags[0].ID != env.tags[2].ID {
		t.Fatalf("tags should be replaced exactly: %+v", detail.Tags)
	}

	if err := env.posts.Update(post.ID, PostPatch{TagIDs: Some([]uint{})}); err != nil {
		t.Fatalf("clear tags failed: %v", err)
	}
	detail, _ = env.posts.GetByID(post.ID)
	if len(detail.Tags) != 0 {
		t.Fatalf("empty tagIds should clear tags")
	}
}

func TestPostServiceUpdateErrors(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{Title: "A", Slug: "a", Content: "<p>x</p>", AuthorID: env.author.ID, TagIDs: []uint{env.tags[0].ID}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.posts.Create(CreatePostInput{Title: "B", Slug: "b", Content: "<p>x</p>", AuthorID: env.author.ID}); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	if err := env.posts.Update(9999, PostPatch{TagIDs: Some([]uint{env.tags[1].ID})}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("tag-only update on missing post want ErrPostNotFound got %v", err)
	}
	if err := env.posts.Update(post.ID, PostPatch{Title: Null[string]()}); err == nil {
		t.Fatalf("null title should be rejected")
	}
	if err := env.posts.Update(post.ID, PostPatch{Status: Some("bogus")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bogus status want ErrInvalidStatus got %v", err)
	}
	if err := env.posts.Update(post.ID, PostPatch{Slug: Some("b"), TagIDs: Some([]uint{env.tags[2].ID})}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("slug conflict want ErrSlugExists got %v", err)
	}
	detail, _ := env.posts.GetByID(post.ID)
	if detail.Slug != "a" || len(detail.Tags) != 1 || detail.Tags[0].ID != env.tags[0].ID {
		t.Fatalf("failed update should roll back tag changes: %+v", detail.Tags)
	}
}

func TestPostServiceUpdateMissingPostBeforeReferences(t *testing.T) {
	env := setupBlogServiceTest(t)
	err := env.posts.Update(9999, PostPatch{AuthorID: Some(uint(4242))})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post with unknown author want ErrPostNotFound got %v", err)
	}
}

func TestPostServiceUpdateNullTagIDsKeepsTags(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{Title: "A", Slug: "a", Content: "<p>x</p>", AuthorID: env.author.ID, TagIDs: []uint{env.tags[0].ID}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.posts.Update(post.ID, PostPatch{TagIDs: Null[[]uint]()}); err != nil {
		t.Fatalf("null tagIds update failed: %v", err)
	}
	detail, _ := env.posts.GetByID(post.ID)
	if len(detail.Tags) != 1 || detail.Tags[0].ID != env.tags[0].ID {
		t.Fatalf("null tagIds should leave tags untouched: %+v", detail.Tags)
	}
}

func TestPostServiceUpdateScheduledRequiresPublishedAt(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{Title: "Draft", Slug: "draft", Content: "<p>x</p>", AuthorID: env.author.ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = env.posts.Update(post.ID, PostPatch{Status: Some(constants.PostStatusScheduled)})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "publishedAt" {
		t.Fatalf("scheduling without publishedAt want publishedAt validation error got %v", err)
	}
	detail, _ := env.posts.GetByID(post.ID)
	if detail.Status != constants.PostStatusDraft {
		t.Fatalf("rejected update should keep draft status, got %s", detail.Status)
	}

	future := time.Now().UTC().Add(time.Hour)
	if err := env.posts.Update(post.ID, PostPatch{Status: Some(constants.PostStatusScheduled), PublishedAt: Some(future)}); err != nil {
		t.Fatalf("scheduling with publishedAt failed: %v", err)
	}
	// 已有发布时间时，清空发布时间同样应被拒绝
	err = env.posts.Update(post.ID, PostPatch{PublishedAt: Null[time.Time]()})
	if !errors.As(err, &validationErr) || validationErr.Field != "publishedAt" {
		t.Fatalf("clearing publishedAt of scheduled post want validation error got %v", err)
	}
	if err := env.posts.Update(post.ID, PostPatch{Title: Some("Still scheduled")}); err != nil {
		t.Fatalf("unrelated update on scheduled post failed: %v", err)
	}
}

func TestPostServiceCreateDerivesExcerpt(t *testing.T) {
	env := setupBlogServiceTest(t)
	env.posts.blog.ExcerptLength = 20

	post, err := env.posts.Create(CreatePostInput{
		Title:    "Derived",
		Slug:     "derived",
		Content:  "<h2>Intro</h2><p>The quick brown fox jumps over the lazy dog</p>",
		AuthorID: env.author.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if post.Excerpt == nil {
		t.Fatalf("excerpt should be derived from content")
	}
	if got := []rune(*post.Excerpt); len(got) > 20 || !strings.HasPrefix(*post.Excerpt, "Intro The quick") {
		t.Fatalf("unexpected derived excerpt %q", *post.Excerpt)
	}

	explicit, err := env.posts.Create(CreatePostInput{
		Title:    "Explicit",
		Slug:     "explicit",
		Content:  "<p>body text</p>",
		AuthorID: env.author.ID,
		Excerpt:  strPtr("hand written"),
	})
	if err != nil {
		t.Fatalf("create explicit failed: %v", err)
	}
	if explicit.Excerpt == nil || *explicit.Excerpt != "hand written" {
		t.Fatalf("supplied excerpt should be kept, got %v", explicit.Excerpt)
	}
}

func TestPostServiceListStatusFilter(t *testing.T) {
	env := setupBlogServiceTest(t)
	for _, in := range []CreatePostInput{
		{Title: "P1", Slug: "p1", Content: "<p>x</p>", AuthorID: env.author.ID, Status: constants.PostStatusPublished},
		{Title: "P2", Slug: "p2", Content: "<p>x</p>", AuthorID: env.author.ID, Status: constants.PostStatusPublished},
		{Title: "D1", Slug: "d1", Content: "<p>x</p>", AuthorID: env.author.ID},
	} {
		if _, err := env.posts.Create(in); err != nil {
			t.Fatalf("create %s failed: %v", in.Slug, err)
		}
	}

	published, err := env.posts.List(PostListQuery{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if published.Status != constants.PostStatusPublished || published.Total != 2 {
		t.Fatalf("default listing should be published only: status=%s total=%d", published.Status, published.Total)
	}
	for _, item := range published.Items {
		if item.Status != constants.PostStatusPublished {
			t.Fatalf("non-published post leaked: %s", item.Slug)
		}
	}

	all, err := env.posts.List(PostListQuery{Status: "all"})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if all.Total != 3 || len(all.Items) != 3 {
		t.Fatalf("status=all should include every post, got %d", all.Total)
	}

	clamped, err := env.posts.List(PostListQuery{Status: "all", Limit: 1000})
	if err != nil {
		t.Fatalf("list clamped failed: %v", err)
	}
	if clamped.Limit != 100 {
		t.Fatalf("limit should clamp to 100, got %d", clamped.Limit)
	}

	if _, err := env.posts.List(PostListQuery{Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("unknown status want ErrInvalidStatus got %v", err)
	}
}

func TestPostServiceGetPublishedBySlug(t *testing.T) {
	env := setupBlogServiceTest(t)
	if _, err := env.posts.Create(CreatePostInput{Title: "Draft", Slug: "draft", Content: "<p>x</p>", AuthorID: env.author.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.posts.GetPublishedBySlug(context.Background(), "draft"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("draft should not be public, got %v", err)
	}
	if _, err := env.posts.Create(CreatePostInput{Title: "Live", Slug: "live", Content: "<p>x</p>", AuthorID: env.author.ID, Status: "published"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	detail, err := env.posts.GetPublishedBySlug(context.Background(), "live")
	if err != nil {
		t.Fatalf("get published failed: %v", err)
	}
	if detail.Slug != "live" {
		t.Fatalf("slug mismatch: %s", detail.Slug)
	}
}

func TestPostServiceDelete(t *testing.T) {
	env := setupBlogServiceTest(t)
	post, err := env.posts.Create(CreatePostInput{Title: "A", Slug: "a", Content: "<p>x</p>", AuthorID: env.author.ID, TagIDs: []uint{env.tags[0].ID}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.posts.Delete(post.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := env.posts.Delete(post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("second delete want ErrPostNotFound got %v", err)
	}
	var links int64
	env.db.Model(&models.PostTag{}).Count(&links)
	if links != 0 {
		t.Fatalf("tag links should be removed with the post")
	}
}

func TestPostServicePublishDue(t *testing.T) {
	env := setupBlogServiceTest(t)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	env.posts.now = func() time.Time { return now }

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	due, err := env.posts.Create(CreatePostInput{Title: "Due", Slug: "due", Content: "<p>x</p>", AuthorID: env.author.ID, Status: "scheduled", PublishedAt: &past})
	if err != nil {
		t.Fatalf("create due failed: %v", err)
	}
	later, err := env.posts.Create(CreatePostInput{Title: "Later", Slug: "later", Content: "<p>x</p>", AuthorID: env.author.ID, Status: "scheduled", PublishedAt: &future})
	if err != nil {
		t.Fatalf("create later failed: %v", err)
	}

	count, err := env.posts.PublishDue("cron")
	if err != nil {
		t.Fatalf("publish due failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("published count want 1 got %d", count)
	}
	detail, _ := env.posts.GetByID(due.ID)
	if detail.Status != constants.PostStatusPublished {
		t.Fatalf("due post should be published")
	}

	ok, err := env.posts.PublishScheduled(later.ID)
	if err != nil || ok {
		t.Fatalf("future post should not publish early: ok=%v err=%v", ok, err)
	}
	env.posts.now = func() time.Time { return future.Add(time.Second) }
	ok, err = env.posts.PublishScheduled(later.ID)
	if err != nil || !ok {
		t.Fatalf("post should publish once due: ok=%v err=%v", ok, err)
	}
}
