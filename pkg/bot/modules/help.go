// Copyright 2024-2026 Aiku AI

package modules

import (
	"strings"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

const prefixPlaceholder = "$prefix"

var generalHelp = []string{
	"Important commands: $prefixhelp, $prefixcommands (admin-only: $prefixallcommands)",
	`Use "$prefixcommands" to show all commands available. "$prefixhelp help" to get more help.`,
	"Note: I will also answer you in a query, please use this to avoid spam in the channel.",
}

// HelpModule answers help requests by asking the module that owns a command
// (or namespace) for its help text.
type HelpModule struct{}

var (
	_ bot.Module       = (*HelpModule)(nil)
	_ bot.HelpProvider = (*HelpModule)(nil)
)

func NewHelpModule() *HelpModule {
	return &HelpModule{}
}

func (h *HelpModule) Commands() []string {
	return []string{"help"}
}

func (h *HelpModule) RestrictedCommands() []string {
	return []string{"helpuser"}
}

func (h *HelpModule) HandleCommand(evt *bot.CommandEvent) error {
	switch evt.Command {
	case "help":
		h.help(evt)
	case "helpuser":
		nick := strings.TrimSpace(evt.Args)
		if nick == "" {
			evt.ReplyUser("No user specified.")
			return nil
		}
		for _, line := range expandPrefix(generalHelp, evt.Prefix) {
			evt.Sender.SendMessage(nick, ircmsg.Privmsg, line)
		}
	}
	return nil
}

func (h *HelpModule) help(evt *bot.CommandEvent) {
	topic := strings.ToLower(strings.TrimSpace(evt.Args))
	lines := generalHelp
	if topic != "" {
		lines = lookupHelp(evt.Registry, topic, evt.Prefix)
	}
	if lines == nil {
		evt.ReplyUser("No help available for " + topic)
		return
	}
	for _, line := range expandPrefix(lines, evt.Prefix) {
		evt.ReplyUser(line)
	}
}

// lookupHelp asks the owner of a command, or the module with the given
// namespace, for help on topic.
func lookupHelp(registry *bot.Registry, topic, prefix string) []string {
	if res, ok := registry.Resolve(topic); ok {
		if hp, ok := res.Module.(bot.HelpProvider); ok {
			return hp.Help(res.Command, prefix)
		}
		return nil
	}
	for _, m := range registry.Modules() {
		ns, ok := bot.Namespace(m)
		if !ok || ns != topic {
			continue
		}
		if hp, ok := m.(bot.HelpProvider); ok {
			return hp.Help(topic, prefix)
		}
	}
	return nil
}

func expandPrefix(lines []string, prefix string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.ReplaceAll(line, prefixPlaceholder, prefix)
	}
	return out
}

func (h *HelpModule) Help(topic, prefix string) []string {
	switch topic {
	case "help":
		return []string{
			"Search help for the specified command or module.",
			"Example: " + prefix + "help roll",
			"If no text is given, general help will be sent.",
		}
	case "helpuser":
		return []string{
			"Sends the general help to the specified user.",
			"Example: " + prefix + "helpuser Bob",
		}
	}
	return nil
}
