// Copyright 2024-2026 Aiku AI

package bot

import (
	"fmt"
	"runtime/debug"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

// AccessDeniedMessage is sent to a non-administrator invoking a restricted
// command.
const AccessDeniedMessage = "Sorry, you do not have access to this command."

// Router turns chat lines into command invocations.
type Router struct {
	Prefix     string
	Registry   *Registry
	Privileges *PrivilegeSet
	Session    *Session
	Sender     Sender
	Log        zerolog.Logger
}

// HandlePrivmsg handles ":nick!user@host PRIVMSG <dest> :<text>".
func (r *Router) HandlePrivmsg(line ircmsg.Line) error {
	user, err := line.Nick()
	if err != nil {
		return err
	}
	dest, err := line.Field(2)
	if err != nil {
		return err
	}
	text, err := line.Field(3)
	if err != nil {
		return err
	}

	name, args, ok := r.parse(user, text)
	if !ok {
		return nil
	}
	target := Target{User: user, Channel: dest}
	if r.Session.IsOwnNick(dest) {
		target = Target{User: user, Private: true}
	}
	r.Dispatch(target, name, args)
	return nil
}

// parse extracts a command from message text. A message whose first word
// starts with the prefix is a command for anyone. Administrators may also
// embed one command anywhere after " <prefix>".
func (r *Router) parse(user, text string) (name, args string, ok bool) {
	content := ircmsg.TrimTrailing(strings.TrimSpace(text))
	first, rest := splitWord(content)
	if strings.HasPrefix(first, r.Prefix) {
		name = first[len(r.Prefix):]
		return strings.ToLower(name), rest, name != ""
	}
	if !r.Privileges.Has(user) {
		return "", "", false
	}
	pos := strings.Index(content, " "+r.Prefix)
	if pos < 0 {
		return "", "", false
	}
	name, args = splitWord(content[pos+1+len(r.Prefix):])
	return strings.ToLower(name), args, name != ""
}

// splitWord splits s at the first run of whitespace.
func splitWord(s string) (word, rest string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
}

// Dispatch resolves name and runs the owning module. Unknown names are
// ignored. Restricted commands from non-administrators get a single denial
// message and never reach the module.
func (r *Router) Dispatch(target Target, name, args string) {
	res, ok := r.Registry.Resolve(name)
	if !ok {
		r.Log.Trace().Str("command", name).Msg("Ignoring unknown command")
		return
	}
	if res.Restricted && !r.Privileges.Has(target.User) {
		r.Log.Info().
			Str("user", target.User).
			Str("command", name).
			Msg("Denied restricted command")
		r.Sender.SendMessage(target.User, ircmsg.Privmsg, AccessDeniedMessage)
		return
	}

	evt := &CommandEvent{
		Sender:   r.Sender,
		Registry: r.Registry,
		Target:   target,
		Prefix:   r.Prefix,
		Command:  res.Command,
		Args:     args,
	}
	r.Log.Debug().
		Str("user", target.User).
		Str("module", ModuleIdentity(res.Module)).
		Str("command", res.Command).
		Msg("Dispatching command")
	if failure := r.run(res.Module, evt); failure != "" {
		evt.Reply(failure)
	}
}

// run calls the module and converts a returned error or a panic into the
// failure message shown to the requester.
func (r *Router) run(m Module, evt *CommandEvent) (failure string) {
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error().
				Interface("panic", p).
				Str("module", ModuleIdentity(m)).
				Str("command", evt.Command).
				Str("stack", string(debug.Stack())).
				Msg("Command panicked")
			failure = FailureMessage(p)
		}
	}()
	if err := m.HandleCommand(evt); err != nil {
		r.Log.Warn().
			Err(err).
			Str("module", ModuleIdentity(m)).
			Str("command", evt.Command).
			Msg("Command failed")
		return FailureMessage(err)
	}
	return ""
}

// FailureMessage renders a handler fault as "Execution failed: <kind>: <detail>".
func FailureMessage(fault any) string {
	if err, ok := fault.(error); ok {
		return fmt.Sprintf("Execution failed: %T: %s", err, err.Error())
	}
	return fmt.Sprintf("Execution failed: %T: %v", fault, fault)
}
