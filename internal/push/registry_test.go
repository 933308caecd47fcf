package push

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeClient 测试用的连接桩 记录投递并可模拟发送失败
type fakeClient struct {
	id string

	mu       sync.Mutex
	received [][]byte
	failSend error
	closed   bool
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id}
}

func (f *fakeClient) ID() string { return f.id }

func (f *fakeClient) QueueBytes(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.received = append(f.received, data)
	return nil
}

func (f *fakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeClient) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.received))
	copy(out, f.received)
	return out
}

func TestRegistry_TrackBindUntrack(t *testing.T) {
	registry := NewRegistry()
	c1 := newFakeClient("c1")
	c2 := newFakeClient("c2")

	// 未认证连接不出现在任何用户的集合里 但被跟踪
	registry.Track(c1)
	registry.Track(c2)
	assert.Equal(t, 2, registry.Len())
	assert.Empty(t, registry.ConnectionsFor(1))
	assert.False(t, registry.IsUserOnline(1))

	// 绑定后出现在对应用户的集合里
	assert.NoError(t, registry.Bind(c1, 1))
	assert.NoError(t, registry.Bind(c2, 1))
	assert.Len(t, registry.ConnectionsFor(1), 2)
	assert.True(t, registry.IsUserOnline(1))

	// 移除其中一条 另一条仍然在线
	registry.Untrack(c1)
	assert.Len(t, registry.ConnectionsFor(1), 1)
	assert.True(t, registry.IsUserOnline(1))

	// 集合空了 用户条目被删除
	registry.Untrack(c2)
	assert.Empty(t, registry.ConnectionsFor(1))
	assert.False(t, registry.IsUserOnline(1))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_BindTwiceRejected(t *testing.T) {
	registry := NewRegistry()
	c := newFakeClient("c1")
	registry.Track(c)

	assert.NoError(t, registry.Bind(c, 1))
	// 同一连接上的第二次绑定是协议违规 即使是同一身份
	assert.ErrorIs(t, registry.Bind(c, 1), ErrAlreadyBound)
	assert.ErrorIs(t, registry.Bind(c, 2), ErrAlreadyBound)

	// 失败的绑定不应破坏已有状态
	assert.Len(t, registry.ConnectionsFor(1), 1)
	assert.Empty(t, registry.ConnectionsFor(2))
}

func TestRegistry_BindZeroUserRejected(t *testing.T) {
	registry := NewRegistry()
	c := newFakeClient("c1")
	registry.Track(c)

	// 0是未绑定连接的内部表示 绑定到它会让连接同时出现在两个集合里
	assert.ErrorIs(t, registry.Bind(c, 0), ErrInvalidUser)
	assert.Empty(t, registry.ConnectionsFor(0))
	assert.False(t, registry.IsUserOnline(0))

	// 连接仍然未绑定 之后的正常绑定不受影响
	assert.NoError(t, registry.Bind(c, 1))
	assert.Len(t, registry.ConnectionsFor(1), 1)
}

func TestRegistry_BindAfterUntrackIsNoOp(t *testing.T) {
	registry := NewRegistry()
	c := newFakeClient("c1")
	registry.Track(c)
	registry.Untrack(c)

	// 校验在连接关闭之后才完成 绑定不能留下悬空条目
	assert.ErrorIs(t, registry.Bind(c, 1), ErrNotTracked)
	assert.Empty(t, registry.ConnectionsFor(1))
	assert.False(t, registry.IsUserOnline(1))
}

func TestRegistry_UntrackUnauthenticated(t *testing.T) {
	registry := NewRegistry()
	c := newFakeClient("c1")
	registry.Track(c)

	registry.Untrack(c)
	assert.Equal(t, 0, registry.Len())

	// 重复Untrack是无害的
	registry.Untrack(c)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConnectionInAtMostOneSet(t *testing.T) {
	registry := NewRegistry()
	c := newFakeClient("c1")
	other := newFakeClient("c2")
	registry.Track(c)
	registry.Track(other)

	assert.NoError(t, registry.Bind(c, 1))
	assert.NoError(t, registry.Bind(other, 2))

	// 不同用户的集合互不泄漏
	assert.Len(t, registry.ConnectionsFor(1), 1)
	assert.Len(t, registry.ConnectionsFor(2), 1)
	assert.Equal(t, "c1", registry.ConnectionsFor(1)[0].ID())
	assert.Equal(t, "c2", registry.ConnectionsFor(2)[0].ID())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newFakeClient("c")
			registry.Track(c)
			_ = registry.Bind(c, uint(n%5+1))
			registry.ConnectionsFor(uint(n%5 + 1))
			registry.Untrack(c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Len())
	for u := uint(1); u <= 5; u++ {
		assert.False(t, registry.IsUserOnline(u))
	}
}
