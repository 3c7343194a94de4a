// Package event publishes attempt-completed notifications for downstream
// consumers (report rendering, user messaging). Publishing is best effort:
// a broker outage must never fail or delay a completion that already
// committed.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/bekzodm/levelcheck/config"
)

const routingKeyAttemptCompleted = "attempt.completed"

type AttemptCompletedEvent struct {
	AttemptID    uint    `json:"attempt_id"`
	UserID       uint    `json:"user_id"`
	TestID       uint    `json:"test_id"`
	Percent      float64 `json:"percent"`
	Level        string  `json:"level"`
	CorrectCount int     `json:"correct_count"`
	WrongCount   int     `json:"wrong_count"`
	PointsAward  int     `json:"points_awarded"`
	FinishedAt   int64   `json:"finished_at"`
}

type Publisher interface {
	AttemptCompleted(ctx context.Context, evt AttemptCompletedEvent)
}

// NewPublisher returns a RabbitMQ-backed publisher, or a no-op one when no
// broker URL is configured.
func NewPublisher(cfg *config.Config) Publisher {
	if cfg.Rabbit.URL == "" {
		log.Info().Msg("RabbitMQ not configured, completion events disabled")
		return noopPublisher{}
	}
	return &amqpPublisher{url: cfg.Rabbit.URL, exchange: cfg.Rabbit.Exchange}
}

type noopPublisher struct{}

func (noopPublisher) AttemptCompleted(context.Context, AttemptCompletedEvent) {}

type amqpPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *amqpPublisher) AttemptCompleted(ctx context.Context, evt AttemptCompletedEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", evt.AttemptID).Msg("Completion event not serializable")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		log.Warn().Err(err).Uint("attemptID", evt.AttemptID).Msg("Broker unavailable, dropping completion event")
		return
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKeyAttemptCompleted, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		// Reconnect once on a stale channel, then give up.
		p.reset()
		if err := p.ensureChannel(); err == nil {
			err = p.ch.PublishWithContext(ctx, p.exchange, routingKeyAttemptCompleted, false, false, amqp.Publishing{
				ContentType: "application/json",
				Timestamp:   time.Now(),
				Body:        body,
			})
		}
		if err != nil {
			log.Warn().Err(err).Uint("attemptID", evt.AttemptID).Msg("Failed to publish completion event")
		}
	}
}

func (p *amqpPublisher) ensureChannel() error {
	if p.ch != nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	p.conn = conn
	p.ch = ch
	return nil
}

func (p *amqpPublisher) reset() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
