package interfaces

import "looknest/internal/event"

// Client 注册表视角下的一条推送连接
type Client interface {
	ID() string
	QueueBytes(data []byte) error
	Close()
}

// ConnectionRegistry 维护连接与已认证用户之间的映射
// push.Registry实现
type ConnectionRegistry interface {
	Track(client Client)
	Bind(client Client, userID uint) error
	Untrack(client Client)
	ConnectionsFor(userID uint) []Client
	IsUserOnline(userID uint) bool
}

// Dispatcher 把事件推送给目标用户的所有在线连接
// 尽力而为 不返回错误给调用方(变更已提交 不能因推送失败回滚)
type Dispatcher interface {
	Dispatch(targetUserID uint, ev event.Event)
}

// CredentialVerifier 校验推送通道上的auth帧携带的凭证
// service.AuthService实现
type CredentialVerifier interface {
	VerifyCredential(token string) (uint, error)
}
