package push

import (
	"errors"
	"sync"

	"looknest/internal/interfaces"
	"looknest/pkg/logger"

	"go.uber.org/zap"
)

var (
	// ErrNotTracked 连接已经关闭或从未注册 绑定视为no-op
	ErrNotTracked = errors.New("connection is not tracked")
	// ErrAlreadyBound 同一连接上的第二次认证 属于协议违规
	ErrAlreadyBound = errors.New("connection is already bound to a user")
	// ErrInvalidUser 0是内部的未绑定哨兵值 不能作为绑定目标
	ErrInvalidUser = errors.New("invalid user id for bind")
)

// Registry 跟踪所有在线推送连接以及每条连接绑定的用户
// 唯一的共享可变状态 所有读写都在锁内完成 凭证校验等I/O不持锁
type Registry struct {
	mu sync.RWMutex
	// conns 包含所有被跟踪的连接 值为绑定的用户ID 0表示未认证
	conns map[interfaces.Client]uint
	// users 每个用户当前绑定的连接集合 空集合会被删除
	users map[uint]map[interfaces.Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[interfaces.Client]uint),
		users: make(map[uint]map[interfaces.Client]struct{}),
	}
}

// Track 注册一条新建立的连接 未认证状态
func (r *Registry) Track(client interfaces.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[client] = 0
	logger.L.Debug("Connection tracked", zap.String("connID", client.ID()))
}

// Bind 在凭证校验成功后把连接绑定到用户
// 连接已关闭时返回ErrNotTracked 重复绑定返回ErrAlreadyBound
func (r *Registry) Bind(client interfaces.Client, userID uint) error {
	if userID == 0 {
		return ErrInvalidUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bound, ok := r.conns[client]
	if !ok {
		// 校验完成前连接已经关闭
		return ErrNotTracked
	}
	if bound != 0 {
		return ErrAlreadyBound
	}

	r.conns[client] = userID
	set, ok := r.users[userID]
	if !ok {
		set = make(map[interfaces.Client]struct{})
		r.users[userID] = set
	}
	set[client] = struct{}{}

	logger.L.Info("Connection bound to user",
		zap.String("connID", client.ID()),
		zap.Uint("userID", userID))
	return nil
}

// Untrack 连接关闭时调用 从所属用户的集合中移除 集合为空则删除用户条目
func (r *Registry) Untrack(client interfaces.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.conns[client]
	if !ok {
		return
	}
	delete(r.conns, client)

	if userID != 0 {
		if set, ok := r.users[userID]; ok {
			delete(set, client)
			if len(set) == 0 {
				delete(r.users, userID)
			}
		}
	}

	logger.L.Debug("Connection untracked",
		zap.String("connID", client.ID()),
		zap.Uint("userID", userID))
}

// ConnectionsFor 返回当前绑定到用户的连接快照
// 连接可能与分发并发关闭 调用方持有的是某一时刻的副本
func (r *Registry) ConnectionsFor(userID uint) []interfaces.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.users[userID]
	if !ok {
		return nil
	}
	clients := make([]interfaces.Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	return clients
}

// IsUserOnline 用户是否至少有一条已绑定的连接
func (r *Registry) IsUserOnline(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// Len 被跟踪的连接总数 含未认证连接
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
