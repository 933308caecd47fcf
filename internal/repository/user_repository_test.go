package repository

import (
	"testing"

	"looknest/internal/model"
	"looknest/pkg/config"
	"looknest/pkg/db"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	// 配置测试数据库连接
	if err := db.InitDB(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	cleanupTables(t)
}

func cleanupTables(t *testing.T) {
	session := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []interface{}{
		&model.Notification{},
		&model.Like{},
		&model.SavedPhoto{},
		&model.Comment{},
		&model.Follow{},
		&model.Photo{},
		&model.User{},
	} {
		if err := session.Unscoped().Delete(m).Error; err != nil {
			t.Logf("Failed to cleanup table for %T: %v", m, err)
		}
	}
}

func createUser(t *testing.T, username string) *model.User {
	repo := NewUserRepository()
	user := &model.User{
		FullName: "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "testpass",
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	user := &model.User{
		FullName: "Test User",
		Username: "testuser",
		Email:    "test@example.com",
		Password: "testpass",
	}

	if err := repo.Create(user); err != nil {
		t.Errorf("Create() error = %v", err)
	}

	found, err := repo.FindByUsername("testuser")
	if err != nil {
		t.Errorf("FindByUsername() error = %v", err)
	}
	if found == nil {
		t.Error("Expected to find created user, got nil")
		return
	}
	if found.Email != user.Email {
		t.Errorf("Expected email %v, got %v", user.Email, found.Email)
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	// 查找不存在的用户不应报错
	user, err := repo.FindByUsername("nonexistent")
	if err != nil {
		t.Errorf("FindByUsername() error = %v", err)
	}
	if user != nil {
		t.Error("Expected nil for non-existent user, got user")
	}
}

func TestUserRepository_Update(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	user := createUser(t, "updateme")
	user.Bio = "new bio"
	user.Private = true

	if err := repo.Update(user); err != nil {
		t.Errorf("Update() error = %v", err)
	}

	found, err := repo.FindByID(user.ID)
	if err != nil {
		t.Errorf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("Expected to find updated user, got nil")
	}
	if found.Bio != "new bio" {
		t.Errorf("Expected bio %q, got %q", "new bio", found.Bio)
	}
	if !found.Private {
		t.Error("Expected private account after update")
	}
}
