package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/valuationengine/internal/valuation/domain"
	"gorm.io/gorm"
)

const (
	outboxStatusPending = "PENDING"
	outboxStatusSent    = "SENT"

	// TopicCalculationEvents 计算事件主题
	TopicCalculationEvents = "valuation.calculation.events"
)

// OutboxModel 发件箱表模型，事件与业务数据同库落盘后由转发器投递
type OutboxModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	EventID   string     `gorm:"column:event_id;type:varchar(36);uniqueIndex;not null"`
	EventType string     `gorm:"column:event_type;type:varchar(64);not null"`
	Topic     string     `gorm:"column:topic;type:varchar(128);not null"`
	MsgKey    string     `gorm:"column:msg_key;type:varchar(128);not null"`
	Payload   string     `gorm:"column:payload;type:mediumtext;not null"`
	Status    string     `gorm:"column:status;type:varchar(16);index;not null"`
	SentAt    *time.Time `gorm:"column:sent_at"`
}

// TableName 指定表名
func (OutboxModel) TableName() string {
	return "valuation_outbox"
}

// OutboxPublisher 基于 Outbox 模式的事件发布者实现
type OutboxPublisher struct {
	db *gorm.DB
}

// NewOutboxPublisher 创建事件发布者
func NewOutboxPublisher(db *gorm.DB) *OutboxPublisher {
	return &OutboxPublisher{db: db}
}

// PublishCalculationCompleted 发布计算完成事件
func (p *OutboxPublisher) PublishCalculationCompleted(event domain.CalculationCompletedEvent) error {
	return p.enqueue(domain.CalculationCompletedEventType, event.TradeID, event)
}

// PublishCalculationFailed 发布计算整体失败事件
func (p *OutboxPublisher) PublishCalculationFailed(event domain.CalculationFailedEvent) error {
	return p.enqueue(domain.CalculationFailedEventType, event.TradeID, event)
}

func (p *OutboxPublisher) enqueue(eventType, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	model := &OutboxModel{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Topic:     TopicCalculationEvents,
		MsgKey:    key,
		Payload:   string(payload),
		Status:    outboxStatusPending,
	}
	if err := p.db.Create(model).Error; err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", eventType, err)
	}
	return nil
}
