package push

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"looknest/internal/interfaces"
	"looknest/pkg/config"
	"looknest/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
	defaultSendBuffer     = 256
	defaultAuthTimeout    = 30 * time.Second
)

// ErrSendBufferFull 目标连接的发送缓冲已满 本次投递失败
var ErrSendBufferFull = errors.New("client send buffer is full")

// inboundFrame 客户端发来的JSON文本帧 目前只定义了auth
type inboundFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Client 一条在线推送连接 由Registry独占管理生命周期
// 握手后客户端通过auth帧在带内完成认证
type Client struct {
	id       string
	conn     *websocket.Conn
	Send     chan []byte
	registry interfaces.ConnectionRegistry
	verifier interfaces.CredentialVerifier

	writeWait   time.Duration
	pongWait    time.Duration
	pingPeriod  time.Duration
	maxMsgSize  int64
	authTimeout time.Duration

	userID    uint // 仅在ReadPump goroutine中读写 用于日志
	bound     atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	mu        sync.Mutex // 保护并发写conn
}

func NewClient(conn *websocket.Conn, registry interfaces.ConnectionRegistry, verifier interfaces.CredentialVerifier) *Client {
	wsConfig := config.GlobalConfig.WebSocket

	writeWait := time.Duration(wsConfig.WriteWaitSeconds) * time.Second
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	pongWait := time.Duration(wsConfig.PongWaitSeconds) * time.Second
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	maxMsgSize := int64(wsConfig.MaxMessageSize)
	if maxMsgSize <= 0 {
		maxMsgSize = defaultMaxMessageSize
	}
	sendBuffer := wsConfig.SendBufferSize
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	authTimeout := time.Duration(wsConfig.AuthTimeoutSeconds) * time.Second
	if authTimeout <= 0 {
		authTimeout = defaultAuthTimeout
	}

	return &Client{
		id:          uuid.NewString(),
		conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		registry:    registry,
		verifier:    verifier,
		writeWait:   writeWait,
		pongWait:    pongWait,
		pingPeriod:  pongWait * 9 / 10,
		maxMsgSize:  maxMsgSize,
		authTimeout: authTimeout,
	}
}

func (c *Client) ID() string {
	return c.id
}

// QueueBytes 把一帧放入发送队列 不阻塞
// 缓冲已满视为一次投递失败 由调用方(Dispatcher)记录并忽略
func (c *Client) QueueBytes(data []byte) error {
	if c.closed.Load() {
		return errors.New("client is closed")
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close 强制关闭底层连接 可重复调用
// 关闭会使两个pump退出 ReadPump的defer负责Untrack
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.conn.Close()
	})
}

// ReadPump 读取入站帧并处理认证 连接关闭时负责从注册表移除
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Untrack(c)
		c.Close()
		logger.L.Debug("Push connection closed",
			zap.String("connID", c.id),
			zap.Uint("userID", c.userID))
	}()

	// 限时完成认证 超时未绑定则关闭连接
	authTimer := time.AfterFunc(c.authTimeout, func() {
		if !c.bound.Load() {
			logger.L.Info("Closing connection: auth timeout", zap.String("connID", c.id))
			c.Close()
		}
	})
	defer authTimer.Stop()

	c.conn.SetReadLimit(c.maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		messageType, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.L.Warn("Unexpected close error", zap.String("connID", c.id), zap.Error(err))
			}
			return
		}

		if messageType != websocket.TextMessage {
			logger.L.Debug("Ignoring non-text frame", zap.String("connID", c.id), zap.Int("messageType", messageType))
			continue
		}

		var frame inboundFrame
		if err := json.Unmarshal(messageBytes, &frame); err != nil {
			// 协议违规 关闭连接
			logger.L.Warn("Closing connection: malformed frame", zap.String("connID", c.id), zap.Error(err))
			return
		}

		switch frame.Type {
		case "auth":
			if !c.handleAuth(frame.Token) {
				return
			}
		default:
			// 未知或缺失的type直接忽略
			logger.L.Debug("Ignoring unknown frame type", zap.String("connID", c.id), zap.String("type", frame.Type))
		}
	}
}

// handleAuth 校验凭证并绑定连接 返回false表示连接应当关闭
// 校验只阻塞本连接的读循环 不持有注册表的锁
func (c *Client) handleAuth(token string) bool {
	userID, err := c.verifier.VerifyCredential(token)
	if err != nil {
		logger.L.Info("Closing connection: credential verification failed",
			zap.String("connID", c.id), zap.Error(err))
		return false
	}

	if err := c.registry.Bind(c, userID); err != nil {
		if errors.Is(err, ErrNotTracked) {
			// 校验期间连接已关闭 绑定作为no-op处理
			return false
		}
		// 同一连接上的重复认证 协议违规
		logger.L.Warn("Closing connection: rebind rejected",
			zap.String("connID", c.id),
			zap.Uint("userID", userID),
			zap.Error(err))
		return false
	}

	c.userID = userID
	c.bound.Store(true)
	return true
}

// WritePump 把Send队列中的帧写到连接上 周期性发送ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case messageBytes := <-c.Send:
			c.mu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			err := c.conn.WriteMessage(websocket.TextMessage, messageBytes)
			c.mu.Unlock()
			if err != nil {
				logger.L.Debug("Write failed, closing connection", zap.String("connID", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.mu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
