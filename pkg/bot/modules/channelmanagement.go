// Copyright 2024-2026 Aiku AI

package modules

import (
	"strings"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
)

// channelAction renders the protocol lines for one channel management
// command. An empty result with a non-empty reply is answered in channel.
type channelAction struct {
	name string
	run  func(channel, args string) (lines []string, reply string)
}

// channelActions is ordered; RestrictedCommands reports it in this order.
var channelActions = []channelAction{
	{"kick", func(ch, args string) ([]string, string) {
		victim, reason, ok := splitVictim(args)
		if !ok {
			return nil, "No victim specified."
		}
		return []string{kickLine(ch, victim, reason)}, ""
	}},
	{"ban", func(ch, args string) ([]string, string) {
		victim, reason, ok := splitVictim(args)
		if !ok {
			return nil, "No victim specified."
		}
		return []string{kickLine(ch, victim, reason), "MODE " + ch + " +b " + victim}, ""
	}},
	{"mute", func(ch, args string) ([]string, string) {
		return []string{"MODE " + ch + " -vo+b " + args + " " + args + " " + args}, ""
	}},
	{"mode", modeAction("")},
	{"topic", func(ch, args string) ([]string, string) {
		return []string{"TOPIC " + ch + " :" + args}, ""
	}},
	{"op", modeAction("+oooooo ")},
	{"deop", modeAction("-oooooo ")},
	{"voice", modeAction("+vvvvvv ")},
	{"devoice", modeAction("-vvvvvv ")},
	{"limit", modeAction("+l ")},
	{"invite", func(ch, args string) ([]string, string) {
		return []string{"INVITE " + ch + " " + args}, ""
	}},
}

func modeAction(flags string) func(ch, args string) ([]string, string) {
	return func(ch, args string) ([]string, string) {
		return []string{"MODE " + ch + " " + flags + args}, ""
	}
}

func splitVictim(args string) (victim, reason string, ok bool) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", "", false
	}
	victim, reason, _ = strings.Cut(args, " ")
	return victim, reason, true
}

func kickLine(ch, victim, reason string) string {
	if reason == "" {
		return "KICK " + ch + " " + victim
	}
	return "KICK " + ch + " " + victim + " :" + reason
}

// ChannelManagementModule lets administrators moderate the channel a
// command was issued in. Commands sent in private are ignored.
type ChannelManagementModule struct{}

var (
	_ bot.Module       = (*ChannelManagementModule)(nil)
	_ bot.HelpProvider = (*ChannelManagementModule)(nil)
)

func NewChannelManagementModule() *ChannelManagementModule {
	return &ChannelManagementModule{}
}

func (c *ChannelManagementModule) Commands() []string {
	return nil
}

func (c *ChannelManagementModule) RestrictedCommands() []string {
	names := make([]string, len(channelActions))
	for i, action := range channelActions {
		names[i] = action.name
	}
	return names
}

func (c *ChannelManagementModule) HandleCommand(evt *bot.CommandEvent) error {
	if evt.Target.Private {
		return nil
	}
	for _, action := range channelActions {
		if action.name != evt.Command {
			continue
		}
		lines, reply := action.run(evt.Target.Channel, evt.Args)
		for _, line := range lines {
			evt.Sender.Send(line)
		}
		if reply != "" {
			evt.Reply(reply)
		}
		return nil
	}
	return nil
}

func (c *ChannelManagementModule) Help(topic, prefix string) []string {
	switch topic {
	case "channelmanagement":
		return []string{"Channel moderation: " + strings.Join(c.RestrictedCommands(), ", ") + ". Only works in channels."}
	case "kick":
		return []string{"Kicks a user out of the channel. Example: " + prefix + "kick Bob reason"}
	case "ban":
		return []string{"Kicks and bans a user. Example: " + prefix + "ban Bob reason"}
	case "mute":
		return []string{"Devoices, deops and bans a user so they cannot speak."}
	case "mode":
		return []string{"Sets a channel mode. Example: " + prefix + "mode +m"}
	case "topic":
		return []string{"Sets a new topic for the channel."}
	case "op", "deop", "voice", "devoice":
		return []string{"Changes the status of up to 6 users. Example: " + prefix + topic + " Alice Bob"}
	case "limit":
		return []string{"Sets the user limit of the channel. Example: " + prefix + "limit 50"}
	case "invite":
		return []string{"Invites somebody to the channel."}
	}
	return nil
}
