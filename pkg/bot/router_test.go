// Copyright 2024-2026 Aiku AI

package bot

import (
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/ircmsg"
)

type routerFixture struct {
	router *Router
	sender *recordingSender
	reg    *Registry
	privs  *PrivilegeSet
}

func newRouterFixture(modules ...Module) *routerFixture {
	reg := NewRegistry(zerolog.Nop())
	for _, m := range modules {
		reg.Register(m)
	}
	f := &routerFixture{
		sender: &recordingSender{},
		reg:    reg,
		privs:  NewPrivilegeSet(),
	}
	f.router = &Router{
		Prefix:     "!",
		Registry:   reg,
		Privileges: f.privs,
		Session:    NewSession("Suzy"),
		Sender:     f.sender,
		Log:        zerolog.Nop(),
	}
	return f
}

func (f *routerFixture) privmsg(t *testing.T, raw string) {
	t.Helper()
	if err := f.router.HandlePrivmsg(ircmsg.Parse(raw)); err != nil {
		t.Fatalf("HandlePrivmsg(%q): %v", raw, err)
	}
}

func TestRouterChannelCommand(t *testing.T) {
	t.Parallel()
	dice := &AlphaModule{stubModule{commands: []string{"roll"}, handle: func(evt *CommandEvent) error {
		evt.Reply("roll: [3, 5] (sum: 8)")
		return nil
	}}}
	f := newRouterFixture(dice)
	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!roll 2d6")

	events := dice.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if evt.Command != "roll" || evt.Args != "2d6" || evt.Prefix != "!" {
		t.Errorf("unexpected event %+v", evt)
	}
	want := Target{User: "Alice", Channel: "#go"}
	if evt.Target != want {
		t.Errorf("expected target %+v, got %+v", want, evt.Target)
	}
	if got := f.sender.Lines(); !slices.Equal(got, []string{"PRIVMSG #go :roll: [3, 5] (sum: 8)"}) {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRouterPrivateCommand(t *testing.T) {
	t.Parallel()
	m := &AlphaModule{stubModule{commands: []string{"ping"}, handle: func(evt *CommandEvent) error {
		evt.Reply("pong")
		return nil
	}}}
	f := newRouterFixture(m)
	f.privmsg(t, ":Bob!u@h PRIVMSG Suzy :!PING")

	events := m.Events()
	if len(events) != 1 || !events[0].Target.Private || events[0].Command != "ping" {
		t.Fatalf("expected one private ping event, got %+v", events)
	}
	if got := f.sender.Lines(); !slices.Equal(got, []string{"PRIVMSG Bob :pong"}) {
		t.Errorf("private reply should go to the user, got %q", got)
	}
}

func TestRouterIgnoresChatter(t *testing.T) {
	t.Parallel()
	m := &AlphaModule{stubModule{commands: []string{"roll"}}}
	f := newRouterFixture(m)
	for _, raw := range []string{
		":Alice!u@h PRIVMSG #go :hello there",
		":Alice!u@h PRIVMSG #go :!",
		":Alice!u@h PRIVMSG #go :!unknown thing",
		":Alice!u@h PRIVMSG #go :try !roll 2d6",
	} {
		f.privmsg(t, raw)
	}
	if n := len(m.Events()); n != 0 {
		t.Errorf("expected no dispatch, got %d", n)
	}
	if got := f.sender.Lines(); len(got) != 0 {
		t.Errorf("expected no output, got %q", got)
	}
}

func TestRouterInlineCommandForAdmins(t *testing.T) {
	t.Parallel()
	m := &AlphaModule{stubModule{commands: []string{"roll"}}}
	f := newRouterFixture(m)
	f.privs.Add("Alice")

	f.privmsg(t, ":Alice!u@h PRIVMSG #go :Bob: try !roll 1d20 now")
	events := m.Events()
	if len(events) != 1 {
		t.Fatalf("expected inline dispatch for admin, got %d", len(events))
	}
	if events[0].Command != "roll" || events[0].Args != "1d20 now" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestRouterRestrictedDenied(t *testing.T) {
	t.Parallel()
	m := &AlphaModule{stubModule{restricted: []string{"load"}}}
	f := newRouterFixture(m)
	f.privmsg(t, ":Mallory!u@h PRIVMSG #go :!load evil")

	if n := len(m.Events()); n != 0 {
		t.Errorf("restricted handler must not run, ran %d times", n)
	}
	want := []string{"PRIVMSG Mallory :" + AccessDeniedMessage}
	if got := f.sender.Lines(); !slices.Equal(got, want) {
		t.Errorf("expected single denial %q, got %q", want, got)
	}
}

func TestRouterRestrictedAllowedForAdmin(t *testing.T) {
	t.Parallel()
	m := &AlphaModule{stubModule{restricted: []string{"load"}}}
	f := newRouterFixture(m)
	f.privs.Seed([]string{"@Alice"})
	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!load dice")

	if n := len(m.Events()); n != 1 {
		t.Errorf("admin should reach restricted command, got %d events", n)
	}
}

func TestRouterNamespacedCommand(t *testing.T) {
	t.Parallel()
	a := &AlphaModule{stubModule{commands: []string{"api"}}}
	b := &BetaModule{stubModule{commands: []string{"api"}}}
	f := newRouterFixture(a, b)

	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!api String")
	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!beta:api String")

	if n := len(a.Events()); n != 1 {
		t.Errorf("alpha should handle bare api once, got %d", n)
	}
	events := b.Events()
	if len(events) != 1 || events[0].Command != "api" || events[0].Args != "String" {
		t.Errorf("beta should receive bare api, got %+v", events)
	}
}

func TestRouterFaultIsolation(t *testing.T) {
	t.Parallel()
	failing := &AlphaModule{stubModule{commands: []string{"fail"}, handle: func(*CommandEvent) error {
		return errBoom
	}}}
	panicking := &BetaModule{stubModule{commands: []string{"explode"}, handle: func(*CommandEvent) error {
		panic("kaboom")
	}}}
	f := newRouterFixture(failing, panicking)

	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!fail")
	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!explode")
	f.privmsg(t, ":Alice!u@h PRIVMSG #go :!fail")

	want := []string{
		"PRIVMSG #go :Execution failed: *errors.errorString: boom",
		"PRIVMSG #go :Execution failed: string: kaboom",
		"PRIVMSG #go :Execution failed: *errors.errorString: boom",
	}
	if got := f.sender.Lines(); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRouterMalformedLines(t *testing.T) {
	t.Parallel()
	f := newRouterFixture()
	for _, raw := range []string{
		"PRIVMSG #go :!roll",
		":Alice!u@h PRIVMSG #go",
	} {
		if err := f.router.HandlePrivmsg(ircmsg.Parse(raw)); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestSplitWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, word, rest string
	}{
		{"roll 2d6", "roll", "2d6"},
		{"roll   2d6  d4", "roll", "2d6  d4"},
		{"help", "help", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		word, rest := splitWord(tt.in)
		if word != tt.word || rest != tt.rest {
			t.Errorf("splitWord(%q) = (%q, %q), expected (%q, %q)", tt.in, word, rest, tt.word, tt.rest)
		}
	}
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()
	if got := FailureMessage(errBoom); got != "Execution failed: *errors.errorString: boom" {
		t.Errorf("unexpected message %q", got)
	}
	if got := FailureMessage(42); got != "Execution failed: int: 42" {
		t.Errorf("unexpected message %q", got)
	}
}
