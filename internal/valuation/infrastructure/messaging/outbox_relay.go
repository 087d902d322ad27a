package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/valuationengine/pkg/logger"
	"github.com/wyfcoding/valuationengine/pkg/metrics"
	"github.com/wyfcoding/valuationengine/pkg/mq"
	"gorm.io/gorm"
)

// OutboxRelay 发件箱转发器，周期性将待投递事件发到 Kafka
type OutboxRelay struct {
	db        *gorm.DB
	producer  *mq.KafkaProducer
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
}

// NewOutboxRelay 创建转发器
func NewOutboxRelay(db *gorm.DB, producer *mq.KafkaProducer, m *metrics.Metrics, batchSize int, interval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &OutboxRelay{
		db:        db,
		producer:  producer,
		metrics:   m,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Run 启动转发循环，阻塞直至 ctx 取消
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				logger.Error(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	var pending []OutboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("id ASC").
		Limit(r.batchSize).
		Find(&pending).Error
	if err != nil {
		return err
	}

	for i := range pending {
		msg := &pending[i]
		if err := r.producer.SendRaw(ctx, msg.Topic, msg.MsgKey, []byte(msg.Payload)); err != nil {
			// 投递失败保持 PENDING，下一轮重试
			logger.Warn(ctx, "failed to relay outbox event",
				"event_id", msg.EventID, "event_type", msg.EventType, "error", err)
			continue
		}
		now := time.Now()
		err := r.db.WithContext(ctx).Model(&OutboxModel{}).
			Where("id = ?", msg.ID).
			Updates(map[string]any{"status": outboxStatusSent, "sent_at": now}).Error
		if err != nil {
			logger.Error(ctx, "failed to mark outbox event as sent",
				"event_id", msg.EventID, "error", err)
			continue
		}
		if r.metrics != nil {
			r.metrics.OutboxRelayedTotal.Inc()
		}
	}
	return nil
}
