package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"looknest/internal/event"
	"looknest/internal/interfaces"
	"looknest/pkg/config"
	"looknest/pkg/logger"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaDispatcher 多实例部署时的事件分发
// 目标用户在本实例有连接则直接投递 否则把事件发布到Kafka
// 由持有该用户连接的实例消费并投递
type KafkaDispatcher struct {
	local      *Dispatcher
	registry   interfaces.ConnectionRegistry
	producer   sarama.SyncProducer
	consumer   sarama.ConsumerGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	cfg        *config.KafkaConfig
}

// kafkaEnvelope Kafka上传输的事件信封
type kafkaEnvelope struct {
	UserID uint        `json:"user_id"`
	Event  event.Event `json:"event"`
}

func NewKafkaDispatcher(registry interfaces.ConnectionRegistry) (*KafkaDispatcher, error) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &config.GlobalConfig.Messaging.Kafka

	kConfig := sarama.NewConfig()
	kConfig.Producer.RequiredAcks = sarama.WaitForAll
	kConfig.Producer.Return.Successes = true
	kConfig.Producer.Retry.Max = 3
	kConfig.Consumer.Return.Errors = true
	kConfig.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kConfig)
	if err != nil {
		logger.L.Error("Failed to start Kafka producer", zap.Error(err))
		cancel()
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}

	consumer, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, kConfig)
	if err != nil {
		logger.L.Error("Failed to start Kafka consumer group", zap.Error(err))
		producer.Close()
		cancel()
		return nil, fmt.Errorf("failed to start Kafka consumer group: %w", err)
	}

	return &KafkaDispatcher{
		local:      NewDispatcher(registry),
		registry:   registry,
		producer:   producer,
		consumer:   consumer,
		ctx:        ctx,
		cancelFunc: cancel,
		cfg:        cfg,
	}, nil
}

// Dispatch 实现interfaces.Dispatcher 对调用方同样是fire-and-forget
func (d *KafkaDispatcher) Dispatch(targetUserID uint, ev event.Event) {
	// 本实例有该用户的连接时直接投递
	if d.registry.IsUserOnline(targetUserID) {
		d.local.Dispatch(targetUserID, ev)
		return
	}

	// 否则发布到Kafka 让持有连接的实例投递
	envelope := kafkaEnvelope{UserID: targetUserID, Event: ev}
	data, err := json.Marshal(envelope)
	if err != nil {
		logger.L.Error("Failed to marshal event envelope", zap.Error(err))
		return
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: d.topicName(),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := d.producer.SendMessage(kafkaMsg); err != nil {
		// 推送是尽力而为 发布失败不向调用方传播
		logger.L.Warn("Failed to publish event to Kafka",
			zap.Uint("targetUserID", targetUserID),
			zap.String("eventType", string(ev.Type)),
			zap.Error(err))
	}
}

func (d *KafkaDispatcher) topicName() string {
	return fmt.Sprintf("%s_events", d.cfg.TopicPrefix)
}

// StartConsumer 启动消费循环
func (d *KafkaDispatcher) StartConsumer() {
	go d.consumeEvents()
}

// Close 停止消费并释放Kafka资源
func (d *KafkaDispatcher) Close() error {
	d.cancelFunc()

	if err := d.producer.Close(); err != nil {
		logger.L.Error("Failed to close Kafka producer", zap.Error(err))
	}
	if err := d.consumer.Close(); err != nil {
		logger.L.Error("Failed to close Kafka consumer group", zap.Error(err))
	}
	return nil
}

func (d *KafkaDispatcher) consumeEvents() {
	handler := &kafkaConsumerHandler{dispatcher: d}
	topics := []string{d.topicName()}

	for {
		select {
		case <-d.ctx.Done():
			logger.L.Info("Stopping Kafka event consumer")
			return
		default:
			if err := d.consumer.Consume(d.ctx, topics, handler); err != nil {
				logger.L.Error("Kafka consumer error", zap.Error(err))
				time.Sleep(5 * time.Second) // 失败后等待再重试
			}
		}
	}
}

type kafkaConsumerHandler struct {
	dispatcher *KafkaDispatcher
}

// Setup 实现sarama.ConsumerGroupHandler接口
func (h *kafkaConsumerHandler) Setup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup 实现sarama.ConsumerGroupHandler接口
func (h *kafkaConsumerHandler) Cleanup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim 实现sarama.ConsumerGroupHandler接口
func (h *kafkaConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var envelope kafkaEnvelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			logger.L.Error("Failed to unmarshal event envelope", zap.Error(err))
			session.MarkMessage(message, "")
			continue
		}

		// 目标用户在本实例没有连接时仍是no-op
		h.dispatcher.local.Dispatch(envelope.UserID, envelope.Event)
		session.MarkMessage(message, "")
	}
	return nil
}
