// Package sentry wraps error tracking; it is a no-op when SENTRY_DSN is unset.
package sentry

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// Levels re-exported for call sites.
const (
	LevelError   = sentry.LevelError
	LevelWarning = sentry.LevelWarning
)

// Level mirrors the underlying SDK's severity type.
type Level = sentry.Level

// Scope mirrors the underlying SDK's scope type.
type Scope = sentry.Scope

type SentryService struct {
	initialized bool
}

func NewSentryService() *SentryService {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		log.Println("SENTRY_DSN not set, Sentry disabled")
		return &SentryService{initialized: false}
	}

	environment := os.Getenv("SENTRY_ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		TracesSampleRate: 1.0,
		EnableTracing:    true,
	})
	if err != nil {
		log.Printf("Sentry initialization failed: %v", err)
		return &SentryService{initialized: false}
	}

	return &SentryService{initialized: true}
}

// CaptureException captures an error and sends it to Sentry.
func (s *SentryService) CaptureException(err error) {
	if !s.initialized {
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage captures a message and sends it to Sentry.
func (s *SentryService) CaptureMessage(message string) {
	if !s.initialized {
		return
	}
	sentry.CaptureMessage(message)
}

// WithScope executes fn with a new Sentry scope, used to tag the handler and
// step that produced an error.
func (s *SentryService) WithScope(fn func(scope *sentry.Scope)) {
	if !s.initialized {
		return
	}
	sentry.WithScope(fn)
}

// Flush waits for buffered events to be sent.
func (s *SentryService) Flush(timeout time.Duration) bool {
	if !s.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

// Close flushes and shuts down the Sentry client.
func (s *SentryService) Close() {
	s.Flush(2 * time.Second)
}
