package pushclient

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"looknest/internal/event"
	"looknest/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State 推送通道的连接状态机:
// Connecting -> Open -> (Closed -> Connecting)* 超过重试上限后终止于GivenUp
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
	StateGivenUp
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateGivenUp:
		return "given_up"
	default:
		return "unknown"
	}
}

// ErrNotConnected 通道不在Open状态时调用Send返回
// 调用方必须能区分"没发出去"和"已发送"
var ErrNotConnected = errors.New("push channel is not open")

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 3 * time.Second
)

// Options Agent的可选配置 零值使用默认
type Options struct {
	// Token 存储的凭证 每次连接建立后立即重发auth帧
	Token string
	// MaxAttempts 连续失败多少次后放弃
	MaxAttempts int
	// RetryDelay 重连前的固定等待
	RetryDelay time.Duration
	// OnStateChange 状态变化回调 终态GivenUp必须对外可见
	OnStateChange func(State)
	Dialer        *websocket.Dialer
}

type subscriber struct {
	id int
	fn func(event.Event)
}

// Agent 在不可靠的底层传输之上对外呈现一条逻辑推送通道
// 断线后自动重连 重连成功后重新认证 并把入站事件分发给订阅者
type Agent struct {
	url         string
	maxAttempts int
	retryDelay  time.Duration
	onState     func(State)
	dialer      *websocket.Dialer

	mu          sync.Mutex
	token       string
	conn        *websocket.Conn
	state       State
	attempts    int
	subscribers []subscriber
	nextSubID   int
	stopCh      chan struct{}
	stopped     bool
	started     bool
}

func NewAgent(url string, opts Options) *Agent {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &Agent{
		url:         url,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		onState:     opts.OnStateChange,
		dialer:      dialer,
		token:       opts.Token,
		state:       StateClosed,
		stopCh:      make(chan struct{}),
	}
}

// Start 启动连接循环 重复调用无效
func (a *Agent) Start() {
	a.mu.Lock()
	if a.started || a.stopped {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.mu.Unlock()

	go a.run()
}

// Stop 关闭通道并停止重连
func (a *Agent) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	conn := a.conn
	close(a.stopCh)
	a.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Attempts 当前的连续失败次数 成功连上后归零
func (a *Agent) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

// SetToken 更新存储的凭证 通道已打开时立即补发auth帧(登录后调用)
func (a *Agent) SetToken(token string) error {
	a.mu.Lock()
	a.token = token
	conn := a.conn
	open := a.state == StateOpen
	a.mu.Unlock()

	if open && token != "" {
		return a.writeJSON(conn, authFrame{Type: "auth", Token: token})
	}
	return nil
}

// Subscribe 注册一个事件订阅者 返回的id用于退订
func (a *Agent) Subscribe(fn func(event.Event)) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextSubID++
	a.subscribers = append(a.subscribers, subscriber{id: a.nextSubID, fn: fn})
	return a.nextSubID
}

func (a *Agent) Unsubscribe(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, sub := range a.subscribers {
		if sub.id == id {
			a.subscribers = append(a.subscribers[:i], a.subscribers[i+1:]...)
			return
		}
	}
}

// Send 在通道上发送一帧 不在Open状态时返回ErrNotConnected
func (a *Agent) Send(v any) error {
	a.mu.Lock()
	conn := a.conn
	open := a.state == StateOpen
	a.mu.Unlock()

	if !open || conn == nil {
		return ErrNotConnected
	}
	return a.writeJSON(conn, v)
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

func (a *Agent) writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (a *Agent) setState(s State) {
	a.mu.Lock()
	if a.state == s {
		a.mu.Unlock()
		return
	}
	a.state = s
	callback := a.onState
	a.mu.Unlock()

	if callback != nil {
		callback(s)
	}
}

// run 连接循环 连接失败或断开后等待固定间隔重试
// 连续失败达到上限则进入GivenUp并停止调度
func (a *Agent) run() {
	for {
		select {
		case <-a.stopCh:
			return
		default:
		}

		a.setState(StateConnecting)
		conn, resp, err := a.dialer.Dial(a.url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			logger.L.Debug("Push channel dial failed", zap.String("url", a.url), zap.Error(err))
			if a.registerFailure() {
				return
			}
			continue
		}

		// 连接成功: 归零失败计数 有凭证则立即重新认证
		a.mu.Lock()
		a.conn = conn
		a.attempts = 0
		token := a.token
		stopped := a.stopped
		a.mu.Unlock()

		if stopped {
			conn.Close()
			return
		}

		a.setState(StateOpen)

		if token != "" {
			if err := a.writeJSON(conn, authFrame{Type: "auth", Token: token}); err != nil {
				logger.L.Warn("Failed to send auth frame", zap.Error(err))
			}
		}

		a.readLoop(conn)

		a.mu.Lock()
		a.conn = nil
		stopped = a.stopped
		a.mu.Unlock()

		a.setState(StateClosed)
		if stopped {
			return
		}
		if a.registerFailure() {
			return
		}
	}
}

// registerFailure 失败计数并等待重试间隔 返回true表示应当放弃
func (a *Agent) registerFailure() bool {
	a.mu.Lock()
	a.attempts++
	attempts := a.attempts
	a.mu.Unlock()

	if attempts >= a.maxAttempts {
		logger.L.Warn("Push channel giving up after max reconnect attempts",
			zap.Int("attempts", attempts))
		a.setState(StateGivenUp)
		return true
	}

	select {
	case <-a.stopCh:
		return true
	case <-time.After(a.retryDelay):
		return false
	}
}

// readLoop 读取入站帧并按到达顺序同步分发给所有订阅者
func (a *Agent) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}

		var ev event.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			logger.L.Debug("Ignoring unrecognized push frame", zap.Error(err))
			continue
		}

		a.mu.Lock()
		subs := make([]subscriber, len(a.subscribers))
		copy(subs, a.subscribers)
		a.mu.Unlock()

		for _, sub := range subs {
			a.deliver(sub, ev)
		}
	}
}

// deliver 单个订阅者panic不能影响后续订阅者
func (a *Agent) deliver(sub subscriber, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("Push subscriber panicked",
				zap.Int("subscriberID", sub.id),
				zap.Any("panic", r))
		}
	}()
	sub.fn(ev)
}
