package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"looknest/internal/model"
	"looknest/internal/push"
	"looknest/internal/repository"
)

var ErrUsernameTaken = errors.New("username already taken")

// UserService 个人资料与设置
type UserService struct {
	userRepo *repository.UserRepository
	notifier *push.Notifier
}

func NewUserService(userRepo *repository.UserRepository, notifier *push.Notifier) *UserService {
	return &UserService{
		userRepo: userRepo,
		notifier: notifier,
	}
}

// UpdateProfileRequest 空字段不更新
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name"`
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
	Private      *bool   `json:"private"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile 更新资料 成功后通知本人的其他会话
func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Username != nil && *req.Username != user.Username {
		// 检查用户名是否被占用
		existing, err := s.userRepo.FindByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	if req.Private != nil {
		user.Private = *req.Private
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.notifier.ProfileUpdated(userID)
	return user, nil
}

// UpdateSettingsRequest 设置与资料基本项一起提交 空字段不更新
type UpdateSettingsRequest struct {
	FullName     *string        `json:"full_name"`
	Email        *string        `json:"email"`
	Username     *string        `json:"username"`
	Bio          *string        `json:"bio"`
	ProfileImage *string        `json:"profile_image"`
	Settings     map[string]any `json:"settings"`
}

// GetSettings 返回用户与解码后的设置对象
func (s *UserService) GetSettings(userID uint) (*model.User, map[string]any, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	settings, err := decodeSettings(user.Settings)
	if err != nil {
		return nil, nil, err
	}
	return user, settings, nil
}

// UpdateSettings 更新设置与资料基本项 设置对象做浅合并(只覆盖提交的键)
// 成功后通知本人的其他会话
func (s *UserService) UpdateSettings(userID uint, req UpdateSettingsRequest) (*model.User, map[string]any, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	if req.Username != nil && *req.Username != user.Username {
		existing, err := s.userRepo.FindByUsername(*req.Username)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}

	settings, err := decodeSettings(user.Settings)
	if err != nil {
		return nil, nil, err
	}
	if req.Settings != nil {
		for key, value := range req.Settings {
			settings[key] = value
		}
		encoded, err := json.Marshal(settings)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		user.Settings = string(encoded)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}

	s.notifier.ProfileUpdated(userID)
	return user, settings, nil
}

func decodeSettings(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}
