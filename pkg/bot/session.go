// Copyright 2024-2026 Aiku AI

package bot

import (
	"sync"
	"time"
)

// State is the connection lifecycle of the session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session is the mutable per-connection state shared by the reader,
// liveness and drain tasks. Every field is accessed through the mutex.
type Session struct {
	mu          sync.RWMutex
	nick        string
	desiredNick string
	state       State
	lastPong    time.Time
}

// NewSession creates a disconnected session for the given nick.
func NewSession(nick string) *Session {
	return &Session{nick: nick, desiredNick: nick}
}

// Nick returns the nick currently in use on the server.
func (s *Session) Nick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nick
}

// DesiredNick returns the configured nick.
func (s *Session) DesiredNick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desiredNick
}

// SetNick records the nick in use.
func (s *Session) SetNick(nick string) {
	s.mu.Lock()
	s.nick = nick
	s.mu.Unlock()
}

// IsOwnNick reports whether target addresses the bot under its current or
// desired nick.
func (s *Session) IsOwnNick(target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return target == s.nick || target == s.desiredNick
}

// NickDrifted reports whether the nick in use differs from the desired one.
func (s *Session) NickDrifted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nick != s.desiredNick
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState changes the lifecycle state and returns the previous one.
func (s *Session) SetState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state
	return prev
}

// CompareAndSetState changes the state only if it currently equals from.
func (s *Session) CompareAndSetState(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// Touch records a liveness acknowledgment at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastPong = now
	s.mu.Unlock()
}

// SinceLastPong returns the time elapsed between the last acknowledgment and now.
func (s *Session) SinceLastPong(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastPong)
}
