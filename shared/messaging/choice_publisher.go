package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"butterfly-story/internal/metrics"
	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultChoiceEventsQueue - очередь событий по умолчанию.
const DefaultChoiceEventsQueue = "choice_events"

// SinkRabbitMQ - метка приёмника в метриках.
const SinkRabbitMQ = "rabbitmq"

// rabbitMQChoicePublisher публикует события развилок в durable очередь.
type rabbitMQChoicePublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

var _ interfaces.ChoiceEventPublisher = (*rabbitMQChoicePublisher)(nil)

// NewRabbitMQChoicePublisher открывает канал и объявляет очередь, если её ещё нет.
func NewRabbitMQChoicePublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (interfaces.ChoiceEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if queueName == "" {
		queueName = DefaultChoiceEventsQueue
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("choice publisher: не удалось открыть канал: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("choice publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	logger.Info("Choice events queue declared", zap.String("queue", queueName))
	return &rabbitMQChoicePublisher{channel: ch, queueName: queueName, logger: logger.Named("ChoicePublisher")}, nil
}

func (p *rabbitMQChoicePublisher) PublishChoiceEvent(ctx context.Context, event models.ChoiceEvent) error {
	msg, err := newPublishing(event, time.Now())
	if err != nil {
		return err
	}
	err = p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		msg,
	)
	if err != nil {
		metrics.EventsPublishFailed.WithLabelValues(SinkRabbitMQ).Inc()
		p.logger.Error("Failed to publish choice event", zap.String("eventID", event.EventID), zap.Error(err))
		return fmt.Errorf("failed to publish choice event: %w", err)
	}
	p.logger.Debug("Choice event published", zap.String("eventID", event.EventID), zap.String("choiceID", event.ChoiceID))
	return nil
}

// Close закрывает канал публикатора.
func (p *rabbitMQChoicePublisher) Close() error {
	return p.channel.Close()
}

func newPublishing(event models.ChoiceEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal choice event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.Type,
		Timestamp:    now,
		Body:         body,
	}, nil
}
