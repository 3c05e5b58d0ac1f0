package session

import (
	"context"
	"sync"

	"github.com/SombathSOAN/krob-tele/internal/detector"
	"github.com/SombathSOAN/krob-tele/internal/marketplace"
)

// Step tracks where a vendor is in the multi-step login conversation.
type Step int

const (
	StepNone Step = iota
	StepPhone
	StepPassword
)

// Session is the per-chat state of one vendor: login progress, bearer token,
// and the change-detection watermarks for the three polled collections.
//
// The watermark fields (Orders, Vouchers, Products) are owned by the poller
// goroutine of the matching resource kind and must not be touched by anyone
// else while pollers run. Everything else goes through the mutex, since the
// handler goroutine and poller goroutines touch it concurrently.
type Session struct {
	ChatID int64

	mu     sync.Mutex
	step   Step
	phone  string
	token  string
	vendor *marketplace.Vendor

	cancelPollers context.CancelFunc

	Orders   detector.OrderState
	Vouchers detector.StatusState
	Products detector.StatusState
}

func newSession(chatID int64) *Session {
	return &Session{
		ChatID:   chatID,
		step:     StepPhone,
		Vouchers: detector.StatusState{},
		Products: detector.StatusState{},
	}
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) SetStep(step Step) {
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
}

func (s *Session) Phone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone
}

// SetPhone stores the phone entered in the first login step and advances the
// conversation to the password step.
func (s *Session) SetPhone(phone string) {
	s.mu.Lock()
	s.phone = phone
	s.step = StepPassword
	s.mu.Unlock()
}

// Authenticate installs the bearer token and vendor profile after a
// successful login and ends the login conversation.
func (s *Session) Authenticate(token string, vendor *marketplace.Vendor) {
	s.mu.Lock()
	s.token = token
	s.vendor = vendor
	s.step = StepNone
	s.mu.Unlock()
}

// Token returns the current bearer token, empty when the session is not
// authenticated (or was logged out concurrently).
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) Vendor() *marketplace.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vendor
}

// BindPollers hands the session ownership of its pollers' cancel func. Any
// previously bound pollers are cancelled first, so a re-login never leaves a
// duplicate notification stream behind.
func (s *Session) BindPollers(cancel context.CancelFunc) {
	s.mu.Lock()
	prev := s.cancelPollers
	s.cancelPollers = cancel
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// StopPollers cancels the session's pollers, if any are running. Ticks already
// in flight complete; only future ticks are prevented.
func (s *Session) StopPollers() {
	s.mu.Lock()
	cancel := s.cancelPollers
	s.cancelPollers = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
