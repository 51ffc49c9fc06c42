package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

// MessageReader is the part of kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer replays ledger events from Kafka into a handler, e.g. the
// jackpot feed or the draw report store of a reporting replica.
type Consumer struct {
	reader  MessageReader
	handler providers.EventPublisher
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.RWMutex
	lastDraw int
	seen     int64
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers       []string
	Topics        []string
	ConsumerGroup string
	Logger        zerolog.Logger
	// Reader overrides the kafka.Reader built from the fields above.
	Reader MessageReader
}

// NewConsumer creates a consumer delivering to handler.
func NewConsumer(config ConsumerConfig, handler providers.EventPublisher) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	reader := config.Reader
	if reader == nil {
		reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        config.Brokers,
			GroupTopics:    config.Topics,
			GroupID:        config.ConsumerGroup,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		})
	}

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  config.Logger.With().Str("component", "kafka-consumer").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins consuming messages
func (c *Consumer) Start() {
	c.wg.Add(1)
	go c.consume()
	c.logger.Info().Msg("Kafka consumer started")
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka consumer...")
	c.cancel()
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing Kafka reader")
		return err
	}
	c.logger.Info().Msg("Kafka consumer stopped")
	return nil
}

func (c *Consumer) consume() {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(c.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || c.ctx.Err() != nil {
				return
			}
			c.logger.Error().Err(err).Msg("Error fetching message from Kafka")
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.handleMessage(c.ctx, msg); err != nil {
			c.logger.Error().
				Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Error handling message")
		}

		if err := c.reader.CommitMessages(c.ctx, msg); err != nil && c.ctx.Err() == nil {
			c.logger.Error().Err(err).Msg("Error committing message")
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var env Event
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}

	c.mu.Lock()
	c.seen++
	c.mu.Unlock()

	switch env.Type {
	case EventTicketIssued:
		var ev providers.TicketIssuedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return c.handler.PublishTicketIssued(ctx, &ev)
	case EventTicketRedeemed:
		var ev providers.TicketRedeemedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return c.handler.PublishTicketRedeemed(ctx, &ev)
	case EventDrawConducted:
		var ev providers.DrawConductedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		c.mu.Lock()
		if ev.Number > c.lastDraw {
			c.lastDraw = ev.Number
		}
		c.mu.Unlock()
		return c.handler.PublishDrawConducted(ctx, &ev)
	default:
		c.logger.Debug().Str("type", env.Type).Str("id", env.ID).Msg("Skipping unknown event type")
		return nil
	}
}

// LastDraw is the highest draw number seen so far.
func (c *Consumer) LastDraw() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastDraw
}

// Seen counts decoded envelopes.
func (c *Consumer) Seen() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seen
}
