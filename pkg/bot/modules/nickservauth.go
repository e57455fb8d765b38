// Copyright 2024-2026 Aiku AI

package modules

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

const nickServ = "NickServ"

// NickservAuthModule identifies the bot with NickServ on every connect and
// on request.
type NickservAuthModule struct {
	authLine string
	log      zerolog.Logger
}

var (
	_ bot.ConnectHook  = (*NickservAuthModule)(nil)
	_ bot.HelpProvider = (*NickservAuthModule)(nil)
)

// NewNickservAuthModule creates the module. authLine is sent verbatim to
// NickServ, e.g. "IDENTIFY secret".
func NewNickservAuthModule(authLine string, log zerolog.Logger) *NickservAuthModule {
	return &NickservAuthModule{
		authLine: strings.TrimSpace(authLine),
		log:      log.With().Str("module", "nickservauth").Logger(),
	}
}

func (n *NickservAuthModule) OnConnect(s bot.Sender) {
	n.auth(s)
}

func (n *NickservAuthModule) auth(s bot.Sender) bool {
	if n.authLine == "" {
		n.log.Warn().Msg("No NickServ auth line configured")
		return false
	}
	n.log.Debug().Msg("Authenticating with NickServ")
	s.SendMessage(nickServ, ircmsg.Privmsg, n.authLine)
	return true
}

func (n *NickservAuthModule) Commands() []string {
	return nil
}

func (n *NickservAuthModule) RestrictedCommands() []string {
	return []string{"auth"}
}

func (n *NickservAuthModule) HandleCommand(evt *bot.CommandEvent) error {
	if !n.auth(evt.Sender) {
		evt.ReplyUser("No NickServ auth line configured.")
	}
	return nil
}

func (n *NickservAuthModule) Help(topic, _ string) []string {
	switch topic {
	case "nickservauth":
		return []string{"Authenticates the bot with NickServ using the configured line (on connect and on request)."}
	case "auth":
		return []string{"Authenticates the bot with NickServ again."}
	}
	return nil
}
