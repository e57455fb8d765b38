// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bot

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

const (
	livenessProbe = "PING :livecheck"
	// quitWriteTimeout bounds the best-effort QUIT written during teardown.
	quitWriteTimeout = time.Second
	maxLineLength    = 64 * 1024
)

// dialFunc opens the transport. It matches net.Dialer.DialContext.
type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client is one persistent IRC session. It owns the transport, the session
// state, the privilege set, the outbound queue and the module registry.
//
// Three tasks run concurrently while Run is active: the reader (one per
// connection), the liveness/reconnect loop and the send queue drain.
type Client struct {
	cfg *Config
	log zerolog.Logger

	session    *Session
	privileges *PrivilegeSet
	queue      *SendQueue
	registry   *Registry
	router     *Router
	loader     *LoaderModule
	backoff    *Backoff
	handlers   map[string]lineHandler

	dial dialFunc
	now  func() time.Time

	connMu     sync.Mutex
	conn       net.Conn
	readerDone chan struct{}

	// wake interrupts the liveness sleep when the reader loses the connection.
	wake chan struct{}
}

var _ Sender = (*Client)(nil)

// NewClient validates cfg and builds a client. The loader module is always
// registered; cfg.Modules are then loaded through factories. Modules that
// fail to load are logged and skipped.
func NewClient(cfg *Config, log zerolog.Logger, factories map[string]ModuleFactory) (*Client, error) {
	if err := cfg.PostProcess(); err != nil {
		return nil, fmt.Errorf("failed to post-process config: %w", err)
	}
	log = log.With().Str("network", cfg.Network).Logger()

	c := &Client{
		cfg:        cfg,
		log:        log.With().Str("component", "irc_client").Logger(),
		session:    NewSession(cfg.Nickname),
		privileges: NewPrivilegeSet(),
		queue:      NewSendQueue(log),
		registry:   NewRegistry(log),
		backoff: &Backoff{
			MinWait: cfg.Reconnect.MinWait,
			MaxWait: cfg.Reconnect.MaxWait,
			Steps:   cfg.Reconnect.Steps,
		},
		dial: (&net.Dialer{KeepAlive: 30 * time.Second}).DialContext,
		now:  time.Now,
		wake: make(chan struct{}, 1),
	}
	c.router = &Router{
		Prefix:     cfg.CommandPrefix,
		Registry:   c.registry,
		Privileges: c.privileges,
		Session:    c.session,
		Sender:     c,
		Log:        log.With().Str("component", "router").Logger(),
	}
	c.handlers = c.newLineHandlers()

	c.loader = NewLoaderModule(c.registry, factories, cfg.Network, log)
	c.registry.Register(c.loader)
	for _, name := range cfg.Modules {
		if _, err := c.loader.Load(name); err != nil {
			c.log.Error().Err(err).Str("module", name).Msg("Failed to load module")
		}
	}
	return c, nil
}

// Registry returns the module registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Loader returns the built-in loader module.
func (c *Client) Loader() *LoaderModule {
	return c.loader
}

// Privileges returns the live privilege set.
func (c *Client) Privileges() *PrivilegeSet {
	return c.privileges
}

// Session returns the session state.
func (c *Client) Session() *Session {
	return c.session
}

// State is shorthand for Session().State().
func (c *Client) State() State {
	return c.session.State()
}

// Send queues a raw line.
func (c *Client) Send(text string) {
	c.queue.Enqueue(text)
}

// SendMessage queues a directed message.
func (c *Client) SendMessage(target string, typ ircmsg.MessageType, text string) {
	c.Send(typ.Format(target, text))
}

// Run keeps the session alive until ctx is cancelled. Connection failures
// never make Run return; they are retried with backoff.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.queue.Run(ctx, c.cfg.SendInterval)
	}()
	if c.cfg.AdminAPIAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.serveAdminAPI(ctx, c.cfg.AdminAPIAddr)
		}()
	}

	c.log.Info().Str("addr", c.cfg.Address()).Msg("Starting IRC client")
	c.superviseConnection(ctx)

	c.disconnect()
	c.session.SetState(StateDisconnected)
	cancel()
	wg.Wait()
	c.log.Info().Msg("IRC client stopped")
	return nil
}

// superviseConnection is the liveness and reconnect loop. A connection that
// is still registering gets until the liveness timeout to reach the end of
// the MOTD.
func (c *Client) superviseConnection(ctx context.Context) {
	for ctx.Err() == nil {
		if c.session.State() == StateConnected {
			if c.checkLiveness() {
				continue
			}
			c.Send(livenessProbe)
			if c.session.NickDrifted() {
				c.Send("NICK :" + c.session.DesiredNick())
			}
			if !c.sleep(ctx, c.cfg.PingInterval(), c.wake) {
				return
			}
			continue
		}
		if c.session.State() == StateConnecting && c.hasConn() {
			if c.session.SinceLastPong(c.now()) <= c.cfg.Timeout {
				if !c.sleep(ctx, c.cfg.PingInterval(), c.wake) {
					return
				}
				continue
			}
			c.log.Warn().Dur("timeout", c.cfg.Timeout).Msg("Registration timed out, reconnecting")
		}

		// The first connection is made right away.
		if c.backoff.Tried() {
			wait := c.backoff.Next(c.now())
			c.log.Info().
				Dur("wait", wait).
				Int("failures", c.backoff.Failures()).
				Msg("Throttling reconnect")
			if !c.sleep(ctx, wait, nil) {
				return
			}
		}
		c.backoff.Attempted(c.now())
		if c.session.State() != StateConnected {
			c.disconnect()
			c.connect(ctx)
		}
		c.session.Touch(c.now())
	}
}

func (c *Client) hasConn() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// checkLiveness forces a disconnect when no PONG has been seen for longer
// than the timeout. The session is left in StateConnecting.
func (c *Client) checkLiveness() bool {
	if c.session.State() != StateConnected {
		return false
	}
	since := c.session.SinceLastPong(c.now())
	if since <= c.cfg.Timeout {
		return false
	}
	c.log.Warn().
		Dur("since_last_pong", since).
		Dur("timeout", c.cfg.Timeout).
		Msg("Liveness timeout, forcing reconnect")
	c.disconnect()
	c.session.SetState(StateConnecting)
	return true
}

// sleep waits for d. It returns false if ctx was cancelled. A signal on
// interrupt ends the wait early.
func (c *Client) sleep(ctx context.Context, d time.Duration, interrupt <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-interrupt:
		return true
	case <-timer.C:
		return true
	}
}

// connect resets the per-connection state, dials, starts the reader and
// registers with the server after the grace period.
func (c *Client) connect(ctx context.Context) {
	c.privileges.Clear()
	c.queue.Clear()
	c.session.SetNick(c.session.DesiredNick())
	c.session.SetState(StateConnecting)
	// Drop a stale wake signal from the previous connection.
	select {
	case <-c.wake:
	default:
	}

	addr := c.cfg.Address()
	c.log.Info().Str("addr", addr).Msg("Connecting to IRC server")
	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		c.log.Error().Err(err).Str("addr", addr).Msg("Failed to connect")
		c.session.SetState(StateDisconnected)
		return
	}

	done := make(chan struct{})
	c.connMu.Lock()
	c.conn = conn
	c.readerDone = done
	c.connMu.Unlock()
	c.queue.SetWriter(conn)
	go c.readLoop(conn, done)

	if !c.sleep(ctx, c.cfg.ConnectGrace, nil) {
		return
	}
	c.Send(fmt.Sprintf("USER %s 0 0 :%s", c.cfg.Username, c.cfg.Realname))
	c.Send("NICK " + c.session.Nick())
}

// disconnect sends a best-effort QUIT, closes the transport and waits for
// the reader of that transport to exit.
func (c *Client) disconnect() {
	c.connMu.Lock()
	conn, done := c.conn, c.readerDone
	c.conn, c.readerDone = nil, nil
	c.connMu.Unlock()
	if conn == nil {
		return
	}

	c.queue.SetWriter(nil)
	_ = conn.SetWriteDeadline(time.Now().Add(quitWriteTimeout))
	c.queue.WriteDirect(conn, "QUIT")
	if err := conn.Close(); err != nil {
		c.log.Debug().Err(err).Msg("Error closing connection")
	}
	<-done
}

func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		c.handleLine(scanner.Text())
	}

	evt := c.log.Warn()
	if err := scanner.Err(); err != nil {
		evt = evt.Err(err)
	}
	evt.Msg("Connection lost, reconnecting")
	c.session.SetState(StateDisconnected)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// handleLine dispatches one inbound line. Malformed lines and panics are
// logged and dropped so the next line is still processed.
func (c *Client) handleLine(raw string) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error().
				Interface("panic", p).
				Str("line", raw).
				Str("stack", string(debug.Stack())).
				Msg("Panic while handling line")
		}
	}()

	line := ircmsg.Parse(raw)
	c.log.Trace().Str("line", line.Raw).Msg("<--")
	for _, verb := range line.VerbCandidates() {
		handler, ok := c.handlers[verb]
		if !ok {
			continue
		}
		if err := handler(line); err != nil {
			c.log.Debug().Err(err).Str("line", line.Raw).Msg("Dropped line")
		}
		return
	}
}

// runConnectHook calls one hook, isolating panics.
func (c *Client) runConnectHook(hook ConnectHook) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error().
				Interface("panic", p).
				Str("module", ModuleIdentity(hook)).
				Msg("Connect hook failed")
		}
	}()
	hook.OnConnect(c)
}
