package push

import (
	"looknest/internal/event"
	"looknest/internal/interfaces"
)

// Notifier 把已提交的状态变更翻译成推送事件
// 各个mutation handler在提交成功后调用 全部是fire-and-forget
//
// 规则: 社交/互动类事件不通知行为人自己(给自己的照片点赞不产生notification)
// 上传/删除/资料更新则总是通知行为人自己的其他会话 用于多标签页同步
type Notifier struct {
	dispatcher interfaces.Dispatcher
}

func NewNotifier(dispatcher interfaces.Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// PhotoUploaded 上传成功 通知上传者自己的所有会话
func (n *Notifier) PhotoUploaded(actorID uint) {
	n.dispatcher.Dispatch(actorID, event.New(event.TypePhotoUploaded))
}

// PhotoDeleted 删除成功 通知行为人自己的所有会话
func (n *Notifier) PhotoDeleted(actorID uint) {
	n.dispatcher.Dispatch(actorID, event.New(event.TypePhotoDeleted))
}

// PhotoLiked 点赞 通知照片所有者 自己赞自己的照片不通知
func (n *Notifier) PhotoLiked(ownerID, actorID uint) {
	if ownerID == actorID {
		return
	}
	n.dispatcher.Dispatch(ownerID, event.New(event.TypeNotification))
}

// PhotoCommented 评论 通知照片所有者 评论自己的照片不通知
func (n *Notifier) PhotoCommented(ownerID, actorID uint) {
	if ownerID == actorID {
		return
	}
	n.dispatcher.Dispatch(ownerID, event.New(event.TypeNotification))
}

// FollowRequested 发出关注请求(目标账号为私密) 通知目标用户
func (n *Notifier) FollowRequested(targetID uint) {
	n.dispatcher.Dispatch(targetID, event.New(event.TypeNotification))
}

// FollowAccepted 关注生效(自动接受或请求被接受)
// 关注者的following列表变了 被关注者的followers列表变了 两边都要通知
func (n *Notifier) FollowAccepted(followerID, followedID uint) {
	n.dispatcher.Dispatch(followerID, event.New(event.TypeFollowingUpdated))
	n.dispatcher.Dispatch(followedID, event.New(event.TypeFollowersUpdated))
}

// FollowRemoved 取关或移除粉丝 双方列表都需要刷新
func (n *Notifier) FollowRemoved(followerID, followedID uint) {
	n.dispatcher.Dispatch(followerID, event.New(event.TypeFollowingUpdated))
	n.dispatcher.Dispatch(followedID, event.New(event.TypeFollowersUpdated))
}

// ProfileUpdated 资料更新 通知本人的其他会话
func (n *Notifier) ProfileUpdated(ownerID uint) {
	n.dispatcher.Dispatch(ownerID, event.New(event.TypeProfileUpdated))
}
