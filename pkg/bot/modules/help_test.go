// Copyright 2024-2026 Aiku AI

package modules

import (
	"slices"
	"testing"
)

func TestHelpGeneral(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	reg := newTestRegistry(NewHelpModule())
	if err := NewHelpModule().HandleCommand(newEvent(sender, reg, "help", "")); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	got := sender.Lines()
	if len(got) != len(generalHelp) {
		t.Fatalf("expected %d lines, got %q", len(generalHelp), got)
	}
	if want := "PRIVMSG Alice :Important commands: !help, !commands (admin-only: !allcommands)"; got[0] != want {
		t.Errorf("expected %q, got %q", want, got[0])
	}
}

func TestHelpTopics(t *testing.T) {
	t.Parallel()
	dice := NewDiceModule()
	reg := newTestRegistry(NewHelpModule(), dice, NewChannelManagementModule())

	tests := []struct {
		topic string
		want  []string
	}{
		{"roll", dice.Help("roll", "!")},
		{"ROLL", dice.Help("roll", "!")},
		{"dice", dice.Help("dice", "!")},
		{"dice:roll", dice.Help("roll", "!")},
		{"kick", []string{"Kicks a user out of the channel. Example: !kick Bob reason"}},
		{"channelmanagement", NewChannelManagementModule().Help("channelmanagement", "!")},
		{"nope", []string{"No help available for nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			t.Parallel()
			sender := &recordingSender{}
			if err := NewHelpModule().HandleCommand(newEvent(sender, reg, "help", tt.topic)); err != nil {
				t.Fatalf("HandleCommand: %v", err)
			}
			want := make([]string, len(tt.want))
			for i, line := range tt.want {
				want[i] = "PRIVMSG Alice :" + line
			}
			if got := sender.Lines(); !slices.Equal(got, want) {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestHelpUser(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	h := NewHelpModule()
	if err := h.HandleCommand(newEvent(sender, nil, "helpuser", "Bob")); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	got := sender.Lines()
	if len(got) != len(generalHelp) || got[1] != `PRIVMSG Bob :Use "!commands" to show all commands available. "!help help" to get more help.` {
		t.Errorf("general help should go to Bob, got %q", got)
	}

	sender = &recordingSender{}
	if err := h.HandleCommand(newEvent(sender, nil, "helpuser", "")); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if got := sender.Lines(); !slices.Equal(got, []string{"PRIVMSG Alice :No user specified."}) {
		t.Errorf("unexpected output %q", got)
	}
}
