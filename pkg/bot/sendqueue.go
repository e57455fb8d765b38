// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bot

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

const (
	// sendBurstBudget is the number of bytes written before the queue stops
	// and waits for the server to answer a flood probe.
	sendBurstBudget = 1024
	// floodProbeToken is the PING parameter identifying a flood probe.
	floodProbeToken = "floodcheck"
)

var floodProbeFrame = ircmsg.Frame("PING :" + floodProbeToken)

// SendQueue is the outbound flow controller. Frames are kept in arrival
// order, identical frames collapse into one, and writing pauses after each
// burst until the server acknowledges a flood probe.
type SendQueue struct {
	mu        sync.Mutex
	order     []string
	pending   map[string]struct{}
	w         io.Writer
	bytesSent int
	waiting   bool

	writeMu sync.Mutex
	log     zerolog.Logger
}

// NewSendQueue creates an empty queue with no writer attached.
func NewSendQueue(log zerolog.Logger) *SendQueue {
	return &SendQueue{
		pending: make(map[string]struct{}),
		log:     log.With().Str("component", "send_queue").Logger(),
	}
}

// Enqueue adds text as a frame. A frame whose text is already queued is
// dropped. Enqueue never blocks on the network.
func (q *SendQueue) Enqueue(text string) {
	frame := ircmsg.Frame(text)
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[frame]; ok {
		return
	}
	q.pending[frame] = struct{}{}
	q.order = append(q.order, frame)
}

// Len returns the number of queued frames.
func (q *SendQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Waiting reports whether the queue is paused on a flood probe.
func (q *SendQueue) Waiting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiting
}

// SetWriter attaches the transport frames are written to. A nil writer
// pauses the queue.
func (q *SendQueue) SetWriter(w io.Writer) {
	q.mu.Lock()
	q.w = w
	q.mu.Unlock()
}

// Clear drops every queued frame and resets the burst accounting.
func (q *SendQueue) Clear() {
	q.mu.Lock()
	q.order = nil
	q.pending = make(map[string]struct{})
	q.bytesSent = 0
	q.waiting = false
	q.mu.Unlock()
}

// ProbeAcknowledged resumes sending after the server answered the flood probe.
func (q *SendQueue) ProbeAcknowledged() {
	q.mu.Lock()
	wasWaiting := q.waiting
	q.bytesSent = 0
	q.waiting = false
	q.mu.Unlock()
	if wasWaiting {
		q.log.Debug().Msg("Flood probe acknowledged, resuming")
	}
}

// Flush writes at most one frame: the head of the queue if it fits in the
// current burst, otherwise a flood probe. It returns false if nothing was
// written.
func (q *SendQueue) Flush() bool {
	q.mu.Lock()
	w := q.w
	if w == nil || q.waiting || len(q.order) == 0 {
		q.mu.Unlock()
		return false
	}
	frame := q.order[0]
	var out string
	if len(frame)+q.bytesSent+len(floodProbeFrame) < sendBurstBudget {
		q.order = q.order[1:]
		delete(q.pending, frame)
		out = frame
	} else {
		q.waiting = true
		out = floodProbeFrame
	}
	q.bytesSent += len(out)
	q.mu.Unlock()

	q.write(w, out)
	return true
}

func (q *SendQueue) write(w io.Writer, frame string) {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()
	q.log.Trace().Str("line", frame[:len(frame)-1]).Msg("-->")
	if _, err := io.WriteString(w, frame); err != nil {
		q.log.Warn().Err(err).Msg("Failed to write frame")
	}
}

// WriteDirect writes a frame immediately, bypassing the queue and the burst
// accounting. It is used for the QUIT sent while tearing down a connection.
func (q *SendQueue) WriteDirect(w io.Writer, text string) {
	q.write(w, ircmsg.Frame(text))
}

// Run drains the queue every interval until ctx is cancelled.
func (q *SendQueue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Flush()
		}
	}
}
