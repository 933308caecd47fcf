package push

import (
	"encoding/json"

	"looknest/internal/event"
	"looknest/internal/interfaces"
	"looknest/pkg/logger"

	"go.uber.org/zap"
)

// Dispatcher 把事件投递到目标用户的全部在线连接
// 尽力而为 至多一次 无重试无持久化 对零连接用户的投递是成功的no-op
type Dispatcher struct {
	registry interfaces.ConnectionRegistry
}

func NewDispatcher(registry interfaces.ConnectionRegistry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch 序列化一次 对连接集合的快照逐条入队
// 单条连接的投递失败只记录日志 不中断其余投递 也不向调用方传播
func (d *Dispatcher) Dispatch(targetUserID uint, ev event.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		// 事件类型是闭集 正常情况下不会发生
		logger.L.Error("Failed to marshal event", zap.String("eventType", string(ev.Type)), zap.Error(err))
		return
	}

	clients := d.registry.ConnectionsFor(targetUserID)
	if len(clients) == 0 {
		return
	}

	for _, client := range clients {
		if err := client.QueueBytes(data); err != nil {
			// 连接可能刚刚关闭或缓冲已满 忽略
			logger.L.Warn("Failed to queue event to client",
				zap.Uint("targetUserID", targetUserID),
				zap.String("connID", client.ID()),
				zap.String("eventType", string(ev.Type)),
				zap.Error(err))
		}
	}

	logger.L.Debug("Event dispatched",
		zap.Uint("targetUserID", targetUserID),
		zap.String("eventType", string(ev.Type)),
		zap.Int("connections", len(clients)))
}
