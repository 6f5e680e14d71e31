// Package otp manages phone verification challenges for the registration
// workflow. Challenges live in process memory only: an in-flight challenge
// does not survive a restart, matching the portal's contract that unfinished
// verification state is simply lost.
package otp

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/altivest/portal-service/internal/workflow"
)

var (
	ErrNotFound        = errors.New("challenge not found")
	ErrExpired         = errors.New("verification code expired")
	ErrCodeMismatch    = errors.New("verification code invalid")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrCooldownActive  = errors.New("resend cooldown active")
)

const (
	CodeLength      = 6
	challengeTTL    = 5 * time.Minute
	resendCooldown  = 15 * time.Second
	maxAttempts     = 5
	challengeIDSize = 16
)

// Challenge is one pending phone verification. Payload carries the caller's
// pending signup data so the request can be constructed after the code is
// accepted.
type Challenge struct {
	ID           string
	Phone        string
	State        workflow.RegistrationState
	Payload      any
	code         string
	expiresAt    time.Time
	resendAt     time.Time
	attemptsLeft int
}

// Store holds pending challenges behind a mutex.
type Store struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		challenges: make(map[string]*Challenge),
		now:        time.Now,
	}
}

// Create registers a new challenge for phone and returns its ID and the code
// to deliver. The caller sends the code; the store never does I/O.
func (s *Store) Create(phone string, payload any) (id, code string, err error) {
	id, err = generateID()
	if err != nil {
		return "", "", err
	}
	code, err = generateCode()
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.challenges[id] = &Challenge{
		ID:           id,
		Phone:        phone,
		State:        workflow.OTPSent,
		Payload:      payload,
		code:         code,
		expiresAt:    now.Add(challengeTTL),
		resendAt:     now.Add(resendCooldown),
		attemptsLeft: maxAttempts,
	}
	return id, code, nil
}

// Resend issues a fresh code on an existing challenge. It fails while the
// cooldown is still counting down.
func (s *Store) Resend(id string) (phone, code string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return "", "", ErrNotFound
	}

	now := s.now()
	if now.After(ch.expiresAt) {
		delete(s.challenges, id)
		return "", "", ErrExpired
	}
	if now.Before(ch.resendAt) {
		return "", "", ErrCooldownActive
	}

	code, err = generateCode()
	if err != nil {
		return "", "", err
	}

	ch.code = code
	ch.expiresAt = now.Add(challengeTTL)
	ch.resendAt = now.Add(resendCooldown)
	ch.attemptsLeft = maxAttempts
	ch.State = workflow.OTPSent
	return ch.Phone, code, nil
}

// CanResend reports whether the cooldown has elapsed.
func (s *Store) CanResend(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return false
	}
	return !s.now().Before(ch.resendAt)
}

// ResendRemaining returns the whole seconds left on the cooldown, zero once
// resend is permitted.
func (s *Store) ResendRemaining(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return 0
	}
	remaining := ch.resendAt.Sub(s.now())
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Verify checks code against the challenge. A mismatch decrements the
// attempt budget and keeps the challenge alive for a retry; expiry and an
// exhausted budget invalidate it.
func (s *Store) Verify(id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return ErrNotFound
	}

	if s.now().After(ch.expiresAt) {
		delete(s.challenges, id)
		return ErrExpired
	}

	ch.State = workflow.NextRegistration(ch.State, workflow.EventCodeEntered)

	if code != ch.code {
		ch.attemptsLeft--
		if ch.attemptsLeft <= 0 {
			delete(s.challenges, id)
			return ErrTooManyAttempts
		}
		ch.State = workflow.NextRegistration(ch.State, workflow.EventCodeRejected)
		return ErrCodeMismatch
	}

	ch.State = workflow.NextRegistration(ch.State, workflow.EventCodeAccepted)
	return nil
}

// Complete drops a verified challenge once the signup request has been
// persisted.
func (s *Store) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, id)
}

// Payload returns the pending data a challenge was created with.
func (s *Store) Payload(id string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ch.Payload, nil
}

// Phone returns the phone number a challenge was created for.
func (s *Store) Phone(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return "", ErrNotFound
	}
	return ch.Phone, nil
}

// State returns the workflow state of a challenge.
func (s *Store) State(id string) (workflow.RegistrationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return workflow.Idle, ErrNotFound
	}
	return ch.State, nil
}

func generateID() (string, error) {
	b := make([]byte, challengeIDSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func generateCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b[:]) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
