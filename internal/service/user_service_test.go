package service

import (
	"testing"

	"looknest/internal/event"
	"looknest/internal/push"
	"looknest/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(rec *recordingDispatcher) *UserService {
	return NewUserService(repository.NewUserRepository(), push.NewNotifier(rec))
}

func strPtr(s string) *string { return &s }

func TestUserService_UpdateSettingsNotifiesSelf(t *testing.T) {
	setupTestDB(t)
	rec := &recordingDispatcher{}
	service := newTestUserService(rec)
	user := createTestUser(t, "settler")

	updated, settings, err := service.UpdateSettings(user.ID, UpdateSettingsRequest{
		Bio:      strPtr("hello there"),
		Settings: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, "dark", settings["theme"])

	// 设置更新总是通知本人 用于多标签页同步
	calls := rec.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatchedEvent{userID: user.ID, evType: event.TypeProfileUpdated}, calls[0])
}

func TestUserService_UpdateSettingsShallowMerge(t *testing.T) {
	setupTestDB(t)
	rec := &recordingDispatcher{}
	service := newTestUserService(rec)
	user := createTestUser(t, "merger")

	_, _, err := service.UpdateSettings(user.ID, UpdateSettingsRequest{
		Settings: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)

	// 第二次更新只带新键 旧键保留
	_, _, err = service.UpdateSettings(user.ID, UpdateSettingsRequest{
		Settings: map[string]any{"language": "zh"},
	})
	require.NoError(t, err)

	_, settings, err := service.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, "zh", settings["language"])
}

func TestUserService_UpdateSettingsUsernameTaken(t *testing.T) {
	setupTestDB(t)
	rec := &recordingDispatcher{}
	service := newTestUserService(rec)
	user := createTestUser(t, "renamer")
	createTestUser(t, "occupied")

	_, _, err := service.UpdateSettings(user.ID, UpdateSettingsRequest{
		Username: strPtr("occupied"),
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Empty(t, rec.recorded())
}
