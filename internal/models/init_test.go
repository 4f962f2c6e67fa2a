package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupModelsTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestProvisionAdminCreatesThenUpdates(t *testing.T) {
	db := setupModelsTest(t)

	admin, created, err := ProvisionAdmin(db, "  Editor@Example.com ", "first-password", "")
	if err != nil {
		t.Fatalf("provision admin failed: %v", err)
	}
	if !created {
		t.Fatalf("first provisioning should create the admin")
	}
	if admin.Email != "editor@example.com" {
		t.Fatalf("email should be normalized, got %s", admin.Email)
	}
	if admin.Role != "admin" {
		t.Fatalf("role should default to admin, got %s", admin.Role)
	}

	updated, created, err := ProvisionAdmin(db, "editor@example.com", "second-password", "editor")
	if err != nil {
		t.Fatalf("re-provision admin failed: %v", err)
	}
	if created {
		t.Fatalf("second provisioning should update the admin")
	}
	if updated.ID != admin.ID {
		t.Fatalf("upsert should keep id, want %d got %d", admin.ID, updated.ID)
	}
	if updated.Role != "editor" {
		t.Fatalf("role want editor got %s", updated.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("second-password")); err != nil {
		t.Fatalf("password hash should be replaced: %v", err)
	}

	var count int64
	db.Model(&AdminUser{}).Count(&count)
	if count != 1 {
		t.Fatalf("admin count want 1 got %d", count)
	}
}

func TestProvisionAdminRequiresCredentials(t *testing.T) {
	db := setupModelsTest(t)
	if _, _, err := ProvisionAdmin(db, "", "secret", "admin"); err == nil {
		t.Fatalf("missing email should fail")
	}
	if _, _, err := ProvisionAdmin(db, "a@example.com", "", "admin"); err == nil {
		t.Fatalf("missing password should fail")
	}
}

func TestPing(t *testing.T) {
	db := setupModelsTest(t)
	if err := Ping(db); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if err := Ping(nil); err == nil {
		t.Fatalf("ping on nil db should fail")
	}
}
