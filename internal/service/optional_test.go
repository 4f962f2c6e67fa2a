package service

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	var patch struct {
		Excerpt     Optional[string]    `json:"excerpt"`
		CategoryID  Optional[uint]      `json:"categoryId"`
		PublishedAt Optional[time.Time] `json:"publishedAt"`
		TagIDs      Optional[[]uint]    `json:"tagIds"`
	}
	body := `{"excerpt":null,"publishedAt":"2026-04-01T10:00:00Z","tagIds":[]}`
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !patch.Excerpt.Set || !patch.Excerpt.Null {
		t.Fatalf("excerpt should be explicit null: %+v", patch.Excerpt)
	}
	if patch.CategoryID.Set {
		t.Fatalf("categoryId should be absent")
	}
	if !patch.PublishedAt.HasValue() || patch.PublishedAt.Value.Hour() != 10 {
		t.Fatalf("publishedAt should be parsed: %+v", patch.PublishedAt)
	}
	if !patch.TagIDs.HasValue() || len(patch.TagIDs.Value) != 0 {
		t.Fatalf("empty tagIds should be present with no items: %+v", patch.TagIDs)
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var patch struct {
		AuthorID Optional[uint] `json:"authorId"`
	}
	if err := json.Unmarshal([]byte(`{"authorId":"abc"}`), &patch); err == nil {
		t.Fatalf("string author id should fail to decode")
	}
}
