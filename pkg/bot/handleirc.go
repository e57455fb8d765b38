// Copyright 2024-2026 Aiku AI

package bot

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

// lineHandler reacts to one inbound line. A returned error means the line
// was malformed and has been dropped.
type lineHandler func(line ircmsg.Line) error

const (
	rplEndOfMOTD  = "376"
	errNoMOTD     = "422"
	rplNamReply   = "353"
	errNickInUse  = "433"
	unregistered  = "*"
	channelDelims = ":,"
)

func (c *Client) newLineHandlers() map[string]lineHandler {
	return map[string]lineHandler{
		"PING":       c.handlePing,
		"PONG":       c.handlePong,
		rplEndOfMOTD: c.handleReady,
		errNoMOTD:    c.handleReady,
		errNickInUse: c.handleNickInUse,
		rplNamReply:  c.handleNames,
		"JOIN":       c.handleJoin,
		"PART":       c.handlePart,
		"QUIT":       c.handleQuit,
		"NICK":       c.handleNick,
		"PRIVMSG":    c.router.HandlePrivmsg,
	}
}

func (c *Client) handlePing(line ircmsg.Line) error {
	token, err := line.Field(1)
	if err != nil {
		return err
	}
	c.Send("PONG " + token)
	return nil
}

func (c *Client) handlePong(line ircmsg.Line) error {
	c.session.Touch(c.now())
	last := strings.TrimSpace(line.Fields[line.Len()-1])
	if ircmsg.TrimTrailing(last) == floodProbeToken {
		c.queue.ProbeAcknowledged()
	}
	return nil
}

// handleReady runs when the server finished sending the MOTD. Connect hooks
// run in registration order before the admin channel is joined.
func (c *Client) handleReady(ircmsg.Line) error {
	if c.session.State() == StateConnected {
		return nil
	}
	for _, hook := range c.registry.ConnectHooks() {
		c.runConnectHook(hook)
	}
	join := "JOIN " + c.cfg.AdminChannel
	if c.cfg.AdminChannelSecret != "" {
		join += " " + c.cfg.AdminChannelSecret
	}
	c.Send(join)
	c.session.Touch(c.now())
	c.session.SetState(StateConnected)
	c.log.Info().Str("nick", c.session.Nick()).Msg("Connected")
	return nil
}

// handleNickInUse picks a new nick while registering. Collisions after
// registration are left to the liveness loop, which keeps requesting the
// desired nick.
func (c *Client) handleNickInUse(line ircmsg.Line) error {
	current, err := line.Field(2)
	if err != nil {
		return err
	}
	if current != unregistered {
		return nil
	}
	nick := c.session.DesiredNick() + strconv.Itoa(rand.IntN(10))
	c.log.Info().Str("nick", nick).Msg("Nick in use, trying alternative")
	c.Send("NICK " + nick)
	c.session.SetNick(nick)
	return nil
}

// handleNames seeds the privilege set from a NAMES reply for the admin
// channel: ":server 353 me = #chan :@a +b c".
func (c *Client) handleNames(line ircmsg.Line) error {
	params, err := line.Field(3)
	if err != nil {
		return err
	}
	parts := strings.SplitN(params, " ", 3)
	if len(parts) < 3 {
		return ircmsg.ErrMalformed
	}
	if !strings.EqualFold(parts[1], c.cfg.AdminChannel) {
		return nil
	}
	names := strings.Fields(ircmsg.TrimTrailing(parts[2]))
	c.privileges.Seed(names)
	c.log.Debug().Strs("admins", c.privileges.List()).Msg("Seeded admins from NAMES")
	return nil
}

// channelsOf splits a JOIN or PART target list like ":#a,#b".
func channelsOf(line ircmsg.Line) ([]string, error) {
	target, err := line.Field(2)
	if err != nil {
		return nil, err
	}
	return strings.FieldsFunc(target, func(r rune) bool {
		return strings.ContainsRune(channelDelims, r)
	}), nil
}

func (c *Client) inAdminChannel(channels []string) bool {
	for _, ch := range channels {
		if strings.EqualFold(ch, c.cfg.AdminChannel) {
			return true
		}
	}
	return false
}

func (c *Client) handleJoin(line ircmsg.Line) error {
	nick, err := line.Nick()
	if err != nil {
		return err
	}
	channels, err := channelsOf(line)
	if err != nil {
		return err
	}
	if c.inAdminChannel(channels) {
		c.privileges.Add(nick)
		c.log.Debug().Str("nick", nick).Msg("Admin joined")
	}
	return nil
}

func (c *Client) handlePart(line ircmsg.Line) error {
	nick, err := line.Nick()
	if err != nil {
		return err
	}
	channels, err := channelsOf(line)
	if err != nil {
		return err
	}
	if c.inAdminChannel(channels) {
		c.privileges.Remove(nick)
		c.log.Debug().Str("nick", nick).Msg("Admin left")
	}
	return nil
}

func (c *Client) handleQuit(line ircmsg.Line) error {
	nick, err := line.Nick()
	if err != nil {
		return err
	}
	c.privileges.Remove(nick)
	return nil
}

func (c *Client) handleNick(line ircmsg.Line) error {
	from, err := line.Nick()
	if err != nil {
		return err
	}
	to, err := line.Field(2)
	if err != nil {
		return err
	}
	to = ircmsg.TrimTrailing(strings.TrimSpace(to))
	if to == "" {
		return ircmsg.ErrMalformed
	}
	c.privileges.Rename(from, to)
	if from == c.session.Nick() {
		c.session.SetNick(to)
		c.log.Info().Str("old_nick", from).Str("nick", to).Msg("Own nick changed")
	}
	return nil
}
