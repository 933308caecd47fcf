package push

import (
	"testing"

	"looknest/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDispatcher 记录所有Dispatch调用的桩
type recordingDispatcher struct {
	calls []dispatchCall
}

type dispatchCall struct {
	userID uint
	evType event.Type
}

func (r *recordingDispatcher) Dispatch(targetUserID uint, ev event.Event) {
	r.calls = append(r.calls, dispatchCall{userID: targetUserID, evType: ev.Type})
}

func TestNotifier_SelfEngagementSuppressed(t *testing.T) {
	rec := &recordingDispatcher{}
	notifier := NewNotifier(rec)

	// 自己赞/评自己的照片 不产生notification事件
	notifier.PhotoLiked(1, 1)
	notifier.PhotoCommented(1, 1)
	assert.Empty(t, rec.calls)

	// 他人操作则照常通知所有者
	notifier.PhotoLiked(1, 2)
	notifier.PhotoCommented(1, 3)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, dispatchCall{userID: 1, evType: event.TypeNotification}, rec.calls[0])
	assert.Equal(t, dispatchCall{userID: 1, evType: event.TypeNotification}, rec.calls[1])
}

func TestNotifier_SelfSyncEventsAlwaysSent(t *testing.T) {
	rec := &recordingDispatcher{}
	notifier := NewNotifier(rec)

	// 上传/删除/资料更新始终通知本人 用于多标签页同步
	notifier.PhotoUploaded(5)
	notifier.PhotoDeleted(5)
	notifier.ProfileUpdated(5)

	require.Len(t, rec.calls, 3)
	assert.Equal(t, dispatchCall{userID: 5, evType: event.TypePhotoUploaded}, rec.calls[0])
	assert.Equal(t, dispatchCall{userID: 5, evType: event.TypePhotoDeleted}, rec.calls[1])
	assert.Equal(t, dispatchCall{userID: 5, evType: event.TypeProfileUpdated}, rec.calls[2])
}

func TestNotifier_FollowEventsTargetBothParties(t *testing.T) {
	rec := &recordingDispatcher{}
	notifier := NewNotifier(rec)

	notifier.FollowAccepted(3, 4)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, dispatchCall{userID: 3, evType: event.TypeFollowingUpdated}, rec.calls[0])
	assert.Equal(t, dispatchCall{userID: 4, evType: event.TypeFollowersUpdated}, rec.calls[1])

	rec.calls = nil
	notifier.FollowRemoved(3, 4)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, dispatchCall{userID: 3, evType: event.TypeFollowingUpdated}, rec.calls[0])
	assert.Equal(t, dispatchCall{userID: 4, evType: event.TypeFollowersUpdated}, rec.calls[1])
}

func TestNotifier_FollowRequestNotifiesTarget(t *testing.T) {
	rec := &recordingDispatcher{}
	notifier := NewNotifier(rec)

	notifier.FollowRequested(9)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, dispatchCall{userID: 9, evType: event.TypeNotification}, rec.calls[0])
}
