package service

import (
	"looknest/internal/model"
	"looknest/internal/repository"
	"looknest/pkg/config"
	"looknest/pkg/db"
	"looknest/pkg/logger"
	"testing"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if err := logger.InitLogger("debug", false); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	// 配置测试数据库连接
	if err := db.InitDB(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	cleanupTables(t)
}

// 帮助函数：清空测试涉及的所有表
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

func TestAuthService_Register(t *testing.T) {
	setupTestDB(t)
	userRepo := repository.NewUserRepository()
	service := NewAuthService(userRepo)

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{
			name: "Valid registration",
			req: RegisterRequest{
				FullName: "Test User",
				Username: "testuser",
				Password: "password123",
				Email:    "test@example.com",
			},
			wantErr: false,
		},
		{
			name: "Duplicate username",
			req: RegisterRequest{
				Username: "testuser",
				Password: "password123",
				Email:    "another@example.com",
			},
			wantErr: true,
		},
		{
			name: "Duplicate email",
			req: RegisterRequest{
				Username: "anotheruser",
				Password: "password123",
				Email:    "test@example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Register(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if user == nil {
					t.Error("Register() returned nil user")
					return
				}
				if user.Password == tt.req.Password {
					t.Error("Register() stored plaintext password")
				}
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	setupTestDB(t)
	userRepo := repository.NewUserRepository()
	service := NewAuthService(userRepo)

	if _, err := service.Register(RegisterRequest{
		Username: "loginuser",
		Password: "password123",
		Email:    "login@example.com",
	}); err != nil {
		t.Fatalf("Failed to register test user: %v", err)
	}

	tests := []struct {
		name    string
		req     LoginRequest
		wantErr bool
	}{
		{
			name:    "Valid login",
			req:     LoginRequest{Username: "loginuser", Password: "password123"},
			wantErr: false,
		},
		{
			name:    "Wrong password",
			req:     LoginRequest{Username: "loginuser", Password: "wrong"},
			wantErr: true,
		},
		{
			name:    "Unknown user",
			req:     LoginRequest{Username: "ghost", Password: "password123"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := service.Login(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if token == "" {
					t.Error("Login() returned empty token")
				}
				if user == nil {
					t.Error("Login() returned nil user")
				}
			}
		})
	}
}

func TestAuthService_VerifyCredential(t *testing.T) {
	setupTestDB(t)
	userRepo := repository.NewUserRepository()
	service := NewAuthService(userRepo)

	if _, err := service.Register(RegisterRequest{
		Username: "pushuser",
		Password: "password123",
		Email:    "push@example.com",
	}); err != nil {
		t.Fatalf("Failed to register test user: %v", err)
	}

	token, user, err := service.Login(LoginRequest{Username: "pushuser", Password: "password123"})
	if err != nil {
		t.Fatalf("Failed to login test user: %v", err)
	}

	// 有效凭证返回用户ID
	userID, err := service.VerifyCredential(token)
	if err != nil {
		t.Errorf("VerifyCredential() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("VerifyCredential() got userID = %v, want %v", userID, user.ID)
	}

	// 无效凭证
	if _, err := service.VerifyCredential("not-a-token"); err == nil {
		t.Error("VerifyCredential() should fail for malformed token")
	}
}
