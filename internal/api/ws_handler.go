package api

import (
	"net/http"

	"looknest/internal/interfaces"
	"looknest/internal/push"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境应该配置具体的域名
		return true // 允许所有来源
	},
}

// WSHandler 处理推送通道的建立
// 路由是公开的 连接升级后客户端需在限时内发送auth帧完成绑定
type WSHandler struct {
	registry interfaces.ConnectionRegistry
	verifier interfaces.CredentialVerifier
}

func NewWSHandler(registry interfaces.ConnectionRegistry, verifier interfaces.CredentialVerifier) *WSHandler {
	return &WSHandler{
		registry: registry,
		verifier: verifier,
	}
}

func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := push.NewClient(conn, h.registry, h.verifier)
	h.registry.Track(client)
	logger.L.Info("WebSocket connection established", zap.String("connID", client.ID()))

	go client.WritePump()
	go client.ReadPump()
}
