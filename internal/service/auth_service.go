package service

import (
	"errors"
	"looknest/internal/model"
	"looknest/internal/repository"
	"looknest/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential 凭证格式错误、过期或对应的用户不存在
var ErrInvalidCredential = errors.New("invalid credential")

// 处理认证相关业务逻辑 同时作为推送层的CredentialVerifier
type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// 用户注册请求
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"max=100"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
}

// 用户登陆请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// 注册新用户
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	// 检查用户名是否已存在
	existingUser, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, errors.New("username already exists")
	}

	// 检查邮箱是否已存在
	existingEmail, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existingEmail != nil {
		return nil, errors.New("email already exists")
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Password:     string(hashedPassword),
		Email:        req.Email,
		ProfileImage: "default-avatar.png",
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// 用户登陆
func (s *AuthService) Login(req LoginRequest) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredential
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyCredential 实现interfaces.CredentialVerifier
// 推送连接上的auth帧携带的就是登陆发放的JWT
func (s *AuthService) VerifyCredential(token string) (uint, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return 0, ErrInvalidCredential
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrInvalidCredential
	}

	return user.ID, nil
}
