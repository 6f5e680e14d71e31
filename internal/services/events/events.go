// Package events publishes admin notification fan-out to Redis streams.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types carried on the admin streams.
const (
	SignupRequested      = "signup.requested"
	SignupApproved       = "signup.approved"
	SignupRejected       = "signup.rejected"
	UserLoggedIn         = "user.logged_in"
	TransactionRequested = "transaction.requested"
)

// Event is the envelope written to a stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher is the fan-out surface the handlers depend on. Publishing is
// best-effort everywhere it is used.
type Publisher interface {
	Publish(ctx context.Context, category, eventType string, data any) error
}

type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher connects to Redis from environment configuration.
func NewStreamPublisher() (*StreamPublisher, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &StreamPublisher{client: client}, nil
}

// Publish appends an event to the admin stream for category.
func (p *StreamPublisher) Publish(ctx context.Context, category, eventType string, data any) error {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: "admin:notifications:" + category,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *StreamPublisher) Close() error {
	return p.client.Close()
}
