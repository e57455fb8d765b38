// Copyright 2024-2026 Aiku AI

package ircmsg

// MessageType selects how a directed message is presented. All types share
// one wire verb layout and only differ in the verb and a prefix/suffix
// wrapped around the text.
type MessageType int

const (
	Privmsg MessageType = iota
	Action
	Notice
)

const ctcpDelim = "\x01"

func (t MessageType) String() string {
	switch t {
	case Action:
		return "action"
	case Notice:
		return "notice"
	default:
		return "privmsg"
	}
}

// Format renders the raw line delivering text to target.
func (t MessageType) Format(target, text string) string {
	switch t {
	case Action:
		return "PRIVMSG " + target + " :" + ctcpDelim + "ACTION " + text + ctcpDelim
	case Notice:
		return "NOTICE " + target + " :" + text
	default:
		return "PRIVMSG " + target + " :" + text
	}
}
