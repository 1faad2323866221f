// Package events publishes rate limit threshold events to a watermill message bus.
//
// A Publisher is a distributed.Observer: attach it to a limiter and every
// threshold check that finds a subject over its limit, and every blocked call
// that later clears it, becomes a JSON message on TopicExceeded or TopicCleared.
package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

const (
	TopicExceeded = "ratelimit.exceeded"
	TopicCleared  = "ratelimit.cleared"
)

// ThresholdEvent describes a subject crossing its threshold in either direction.
type ThresholdEvent struct {
	Key        string        `json:"key"`
	Subject    string        `json:"subject"`
	Count      int64         `json:"count,omitempty"`
	Threshold  int64         `json:"threshold,omitempty"`
	Waited     time.Duration `json:"waited,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Publisher turns limiter callbacks into threshold events.
type Publisher struct {
	key       string
	publisher message.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPublisher creates a Publisher labelling events with the limiter key.
// Publish failures are logged to logger, never returned to the limiter.
func NewPublisher(key string, publisher message.Publisher, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		key:       key,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Publisher) LockWait(string, string) {}

func (p *Publisher) LockAcquired(string, string, time.Duration) {}

// CountChecked publishes to TopicExceeded when count has reached threshold.
func (p *Publisher) CountChecked(subject string, count, threshold int64) {
	if count < threshold {
		return
	}
	p.publish(TopicExceeded, &ThresholdEvent{
		Key:       p.key,
		Subject:   subject,
		Count:     count,
		Threshold: threshold,
	})
}

// ThresholdCleared publishes to TopicCleared when the call had to wait.
func (p *Publisher) ThresholdCleared(subject string, waited time.Duration) {
	if waited <= 0 {
		return
	}
	p.publish(TopicCleared, &ThresholdEvent{
		Key:     p.key,
		Subject: subject,
		Waited:  waited,
	})
}

// Shutdown closes the underlying publisher.
func (p *Publisher) Shutdown() error {
	return p.publisher.Close()
}

func (p *Publisher) publish(topic string, event *ThresholdEvent) {
	event.OccurredAt = p.now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode rate limit event", zap.String("topic", topic), zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("limiter_key", p.key)

	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Warn("failed to publish rate limit event",
			zap.String("topic", topic),
			zap.String("subject", event.Subject),
			zap.Error(err),
		)
	}
}
