package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishTimeout は1メッセージの発行に許容する時間。
const publishTimeout = 5 * time.Second

// RabbitMQPublisher はRabbitMQのキューにイベントをJSONで発行するPublisher。
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewRabbitMQPublisher はRabbitMQに接続し、永続キューを宣言したPublisherを生成する。
// キュー宣言は冪等であり、既に存在する場合は何もしない。
func NewRabbitMQPublisher(url, queue string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	slog.Info("RabbitMQに接続しました", slog.String("queue", q.Name))

	return &RabbitMQPublisher{conn: conn, channel: ch, queue: q.Name}, nil
}

// Publish はイベントをJSONにしてデフォルトExchange経由でキューへ発行する。
// AMQPのtypeプロパティにイベント種別を設定する。
func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close はチャネルと接続を閉じる。
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			slog.Warn("RabbitMQチャネルのクローズに失敗しました", slog.String("error", err.Error()))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}
	return nil
}

var _ Publisher = (*RabbitMQPublisher)(nil)
