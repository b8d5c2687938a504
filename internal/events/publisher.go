package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/aihub/docqa-go/internal/logger"
)

// IngestionEvent 文档入库结果事件
type IngestionEvent struct {
	DocHash   string    `json:"doc_hash"`
	Source    string    `json:"source"`
	Outcome   string    `json:"outcome"`
	Chunks    int       `json:"chunks"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher 将入库结果发布到Kafka，禁用时为空操作
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher 创建Kafka事件发布器
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &Publisher{producer: producer, topic: topic}, nil
}

// Publish 发布入库事件，发布失败仅记录日志不影响流水线
func (p *Publisher) Publish(event IngestionEvent) {
	if p == nil || p.producer == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal ingestion event", zap.Error(err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.DocHash),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		logger.Error("failed to publish ingestion event",
			zap.String("doc_hash", event.DocHash), zap.Error(err))
	}
}

// Close 关闭底层生产者
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
