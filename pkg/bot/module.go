// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bot

import (
	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

// Sender can queue raw frames and directed messages on the live connection.
type Sender interface {
	// Send queues a raw protocol line. It never blocks on the network.
	Send(text string)
	// SendMessage queues text for target using the given presentation.
	SendMessage(target string, typ ircmsg.MessageType, text string)
}

// Module is a pluggable command handler.
type Module interface {
	// Commands lists the command names anyone may invoke.
	Commands() []string
	// RestrictedCommands lists the command names only administrators may invoke.
	RestrictedCommands() []string
	// HandleCommand runs synchronously on the reader task. A returned error
	// or a panic is reported back to the requester.
	HandleCommand(evt *CommandEvent) error
}

// ConnectHook is implemented by modules that must run once every time a
// connection becomes ready, before the admin channel is joined.
type ConnectHook interface {
	Module
	OnConnect(s Sender)
}

// HelpProvider is implemented by modules that can describe their commands.
// topic is a command name or the module's namespace; nil means no help.
type HelpProvider interface {
	Help(topic, prefix string) []string
}

// NamedModule overrides the identity derived from the module's Go type.
// The name should end in "Module" so a namespace can be derived from it.
type NamedModule interface {
	ModuleName() string
}

// Target describes who sent a command and where the reply goes.
type Target struct {
	User    string
	Channel string
	Private bool
}

// Default returns the channel for channel messages and the user for
// private messages.
func (t Target) Default() string {
	if t.Private {
		return t.User
	}
	return t.Channel
}

// CommandEvent is a single resolved command invocation.
type CommandEvent struct {
	Sender   Sender
	Registry *Registry
	Target   Target
	Prefix   string
	// Command is the bare command name, lowercased, without prefix or namespace.
	Command string
	// Args is the free text following the command name.
	Args string
}

// Reply sends a plain message to the event's default target.
func (e *CommandEvent) Reply(text string) {
	e.Sender.SendMessage(e.Target.Default(), ircmsg.Privmsg, text)
}

// ReplyUser sends a plain message to the requesting user directly.
func (e *CommandEvent) ReplyUser(text string) {
	e.Sender.SendMessage(e.Target.User, ircmsg.Privmsg, text)
}
