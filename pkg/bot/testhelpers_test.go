// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bot

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

// recordingSender captures outbound lines for test assertions.
type recordingSender struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSender) Send(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
}

func (s *recordingSender) SendMessage(target string, typ ircmsg.MessageType, text string) {
	s.Send(typ.Format(target, text))
}

func (s *recordingSender) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(s.lines))
	copy(cp, s.lines)
	return cp
}

// stubModule is a configurable module that records every event it handles.
type stubModule struct {
	commands   []string
	restricted []string
	handle     func(evt *CommandEvent) error

	mu     sync.Mutex
	events []CommandEvent
}

func (m *stubModule) Commands() []string           { return m.commands }
func (m *stubModule) RestrictedCommands() []string { return m.restricted }

func (m *stubModule) HandleCommand(evt *CommandEvent) error {
	m.mu.Lock()
	m.events = append(m.events, *evt)
	m.mu.Unlock()
	if m.handle != nil {
		return m.handle(evt)
	}
	return nil
}

func (m *stubModule) Events() []CommandEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]CommandEvent, len(m.events))
	copy(cp, m.events)
	return cp
}

// AlphaModule and BetaModule both declare "api" to exercise namespacing.
type AlphaModule struct{ stubModule }
type BetaModule struct{ stubModule }

// plainHandler does not follow the "Module" naming convention.
type plainHandler struct{ stubModule }

// hookModule records connect hook invocations.
type hookModule struct {
	stubModule
	name    string
	order   *[]string
	orderMu *sync.Mutex
	panics  bool
}

func (h *hookModule) ModuleName() string { return h.name }

func (h *hookModule) OnConnect(s Sender) {
	h.orderMu.Lock()
	*h.order = append(*h.order, h.name)
	h.orderMu.Unlock()
	if h.panics {
		panic("hook exploded")
	}
	s.Send("PRIVMSG NickServ :hello from " + h.name)
}

var errBoom = errors.New("boom")

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() *Config {
	return &Config{
		Network:      "test",
		Server:       "127.0.0.1",
		Port:         6667,
		Nickname:     "Suzy",
		AdminChannel: "#suzy-admin",
	}
}

func newTestClient(t *testing.T, cfg *Config, factories map[string]ModuleFactory) *Client {
	t.Helper()
	c, err := NewClient(cfg, zerolog.Nop(), factories)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// queued returns the frames waiting in q without their terminators.
func queued(q *SendQueue) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.order))
	for i, frame := range q.order {
		out[i] = strings.TrimSuffix(frame, "\n")
	}
	return out
}

// fakeIRCServer accepts one connection at a time and exposes the lines the
// client writes.
type fakeIRCServer struct {
	t        *testing.T
	listener net.Listener

	mu   sync.Mutex
	conn net.Conn

	lines chan string
	done  chan struct{}
}

func newFakeIRCServer(t *testing.T) *fakeIRCServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeIRCServer{
		t:        t,
		listener: l,
		lines:    make(chan string, 256),
		done:     make(chan struct{}),
	}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *fakeIRCServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeIRCServer) serve() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		_ = conn.Close()
	}
}

// Write sends a raw line to the connected client.
func (s *fakeIRCServer) Write(line string) {
	s.t.Helper()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.t.Fatal("no client connected")
	}
	if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
		s.t.Fatalf("write: %v", err)
	}
}

// Expect waits for a line equal to want, skipping others.
func (s *fakeIRCServer) Expect(want string) {
	s.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line := <-s.lines:
			if line == want {
				return
			}
		case <-timeout:
			s.t.Fatalf("timed out waiting for %q", want)
		}
	}
}

// DropClient closes the current connection from the server side.
func (s *fakeIRCServer) DropClient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *fakeIRCServer) Close() {
	_ = s.listener.Close()
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}
