package push

import (
	"errors"

	"looknest/internal/interfaces"
	"looknest/pkg/config"
	"looknest/pkg/logger"

	"go.uber.org/zap"
)

// CreateDispatcher 根据配置创建相应的Dispatcher实现
func CreateDispatcher(registry interfaces.ConnectionRegistry) (interfaces.Dispatcher, error) {
	provider := config.GlobalConfig.Messaging.Provider
	logger.L.Info("Creating dispatcher with messaging provider", zap.String("provider", provider))

	switch provider {
	case "local", "":
		return NewDispatcher(registry), nil

	case "kafka":
		return NewKafkaDispatcher(registry)

	default:
		return nil, errors.New("unsupported messaging provider")
	}
}

// StartDispatcher 启动需要后台任务的Dispatcher
func StartDispatcher(dispatcher interfaces.Dispatcher) {
	if kd, ok := dispatcher.(*KafkaDispatcher); ok {
		kd.StartConsumer()
	}
}

// CloseDispatcher 释放Dispatcher持有的资源
func CloseDispatcher(dispatcher interfaces.Dispatcher) error {
	if kd, ok := dispatcher.(*KafkaDispatcher); ok {
		return kd.Close()
	}
	return nil
}
