// Copyright 2024-2026 Aiku AI

package modules

import (
	"slices"
	"testing"
)

func TestChannelManagementCommands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		command, args string
		want          []string
	}{
		{"kick", "Bob", []string{"KICK #go Bob"}},
		{"kick", "Bob stop spamming", []string{"KICK #go Bob :stop spamming"}},
		{"kick", "  ", []string{"PRIVMSG #go :No victim specified."}},
		{"ban", "Bob flooding", []string{"KICK #go Bob :flooding", "MODE #go +b Bob"}},
		{"ban", "", []string{"PRIVMSG #go :No victim specified."}},
		{"mute", "Eve", []string{"MODE #go -vo+b Eve Eve Eve"}},
		{"mode", "+m", []string{"MODE #go +m"}},
		{"topic", "Go 1.26 released", []string{"TOPIC #go :Go 1.26 released"}},
		{"op", "Alice Bob", []string{"MODE #go +oooooo Alice Bob"}},
		{"deop", "Bob", []string{"MODE #go -oooooo Bob"}},
		{"voice", "Carol", []string{"MODE #go +vvvvvv Carol"}},
		{"devoice", "Carol", []string{"MODE #go -vvvvvv Carol"}},
		{"limit", "50", []string{"MODE #go +l 50"}},
		{"invite", "Dave", []string{"INVITE #go Dave"}},
	}
	for _, tt := range tests {
		t.Run(tt.command+" "+tt.args, func(t *testing.T) {
			t.Parallel()
			sender := &recordingSender{}
			if err := NewChannelManagementModule().HandleCommand(newEvent(sender, nil, tt.command, tt.args)); err != nil {
				t.Fatalf("HandleCommand: %v", err)
			}
			if got := sender.Lines(); !slices.Equal(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestChannelManagementIgnoresPrivate(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	evt := newEvent(sender, nil, "kick", "Bob")
	evt.Target.Private = true
	evt.Target.Channel = "Suzy"
	if err := NewChannelManagementModule().HandleCommand(evt); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if got := sender.Lines(); len(got) != 0 {
		t.Errorf("private commands must be ignored, got %q", got)
	}
}

func TestChannelManagementIsRestricted(t *testing.T) {
	t.Parallel()
	m := NewChannelManagementModule()
	if len(m.Commands()) != 0 {
		t.Errorf("expected no public commands, got %v", m.Commands())
	}
	want := []string{"kick", "ban", "mute", "mode", "topic", "op", "deop", "voice", "devoice", "limit", "invite"}
	if got := m.RestrictedCommands(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for _, name := range want {
		if m.Help(name, "!") == nil {
			t.Errorf("missing help for %s", name)
		}
	}
}
