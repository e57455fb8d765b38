// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package modules

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
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

// newEvent builds a command event from Alice in #go.
func newEvent(sender bot.Sender, registry *bot.Registry, command, args string) *bot.CommandEvent {
	return &bot.CommandEvent{
		Sender:   sender,
		Registry: registry,
		Target:   bot.Target{User: "Alice", Channel: "#go"},
		Prefix:   "!",
		Command:  command,
		Args:     args,
	}
}

// sequence returns an intN replacement that yields the given values in order.
func sequence(values ...int) func(n int) int {
	var mu sync.Mutex
	i := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)] % n
		i++
		return v
	}
}

func newTestRegistry(modules ...bot.Module) *bot.Registry {
	reg := bot.NewRegistry(zerolog.Nop())
	for _, m := range modules {
		reg.Register(m)
	}
	return reg
}
