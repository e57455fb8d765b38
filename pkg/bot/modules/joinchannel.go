// Copyright 2024-2026 Aiku AI

package modules

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exsync"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
)

// JoinChannelModule joins a configured set of channels on every connect.
// Administrators can join and part channels at runtime; those changes are
// kept until the module is reloaded.
type JoinChannelModule struct {
	channels *exsync.Set[string]
	log      zerolog.Logger
}

var (
	_ bot.ConnectHook  = (*JoinChannelModule)(nil)
	_ bot.HelpProvider = (*JoinChannelModule)(nil)
)

func NewJoinChannelModule(channels []string, log zerolog.Logger) *JoinChannelModule {
	set := exsync.NewSet[string]()
	for _, ch := range channels {
		if ch = strings.TrimSpace(ch); ch != "" {
			set.Add(ch)
		}
	}
	return &JoinChannelModule{
		channels: set,
		log:      log.With().Str("module", "joinchannel").Logger(),
	}
}

// Channels returns the channels joined on connect, sorted.
func (j *JoinChannelModule) Channels() []string {
	out := j.channels.AsList()
	slices.Sort(out)
	return out
}

func (j *JoinChannelModule) OnConnect(s bot.Sender) {
	channels := j.Channels()
	if len(channels) == 0 {
		return
	}
	j.log.Info().Strs("channels", channels).Msg("Joining channels")
	s.Send("JOIN " + strings.Join(channels, ","))
}

func (j *JoinChannelModule) Commands() []string {
	return nil
}

func (j *JoinChannelModule) RestrictedCommands() []string {
	return []string{"join", "part"}
}

func (j *JoinChannelModule) HandleCommand(evt *bot.CommandEvent) error {
	channel := strings.TrimSpace(evt.Args)
	if channel == "" {
		evt.ReplyUser("No channel specified.")
		return nil
	}
	switch evt.Command {
	case "join":
		j.channels.Add(channel)
		evt.Sender.Send("JOIN " + channel)
	case "part":
		j.channels.Remove(channel)
		evt.Sender.Send("PART " + channel)
	}
	return nil
}

func (j *JoinChannelModule) Help(topic, prefix string) []string {
	switch topic {
	case "joinchannel":
		return []string{"Joins the configured channels on connect. See " + prefix + "join and " + prefix + "part."}
	case "join":
		return []string{"Joins a channel and rejoins it after reconnects. Example: " + prefix + "join #go"}
	case "part":
		return []string{"Leaves a channel. Example: " + prefix + "part #go"}
	}
	return nil
}
