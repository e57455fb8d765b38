// Copyright 2024-2026 Aiku AI

package modules

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
)

// maxDice bounds the number of dice in one token so a reply stays within
// a single frame.
const maxDice = 50

var (
	numericDice = regexp.MustCompile(`^(\d*)d(\d+)$`)
	rangedDice  = regexp.MustCompile(`^(\d*)d\[(-?\d+),(-?\d+)\]$`)
	listDice    = regexp.MustCompile(`^(\d*)d\{(.*)\}$`)
)

// DiceModule rolls dice: "NdM" for M-sided dice, "Nd[a,b]" for values in
// [a,b] and "Nd{x,y,z}" to pick from a list. Tokens that are not dice are
// echoed unchanged.
type DiceModule struct {
	intN func(n int) int
}

var (
	_ bot.Module       = (*DiceModule)(nil)
	_ bot.HelpProvider = (*DiceModule)(nil)
)

func NewDiceModule() *DiceModule {
	return &DiceModule{intN: rand.IntN}
}

func (d *DiceModule) Commands() []string {
	return []string{"roll"}
}

func (d *DiceModule) RestrictedCommands() []string {
	return nil
}

func (d *DiceModule) HandleCommand(evt *bot.CommandEvent) error {
	if evt.Command == "roll" {
		evt.Reply(d.Roll(evt.Args))
	}
	return nil
}

// Roll evaluates every whitespace separated token of expr.
func (d *DiceModule) Roll(expr string) string {
	var sb strings.Builder
	sb.WriteString("roll:")
	for _, token := range strings.Fields(expr) {
		sb.WriteByte(' ')
		sb.WriteString(d.rollToken(token))
	}
	return sb.String()
}

func (d *DiceModule) rollToken(token string) string {
	if m := numericDice.FindStringSubmatch(token); m != nil {
		count, ok := diceCount(m[1])
		sides, err := strconv.Atoi(m[2])
		if !ok || err != nil || sides < 1 {
			return token
		}
		return d.rollRange(count, 1, sides)
	}
	if m := rangedDice.FindStringSubmatch(token); m != nil {
		count, ok := diceCount(m[1])
		lo, errLo := strconv.Atoi(m[2])
		hi, errHi := strconv.Atoi(m[3])
		if !ok || errLo != nil || errHi != nil {
			return token
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi-lo+1 <= 0 {
			return token
		}
		return d.rollRange(count, lo, hi)
	}
	if m := listDice.FindStringSubmatch(token); m != nil {
		count, ok := diceCount(m[1])
		if !ok {
			return token
		}
		choices := strings.Split(m[2], ",")
		values := make([]string, count)
		for i := range values {
			values[i] = choices[d.intN(len(choices))]
		}
		if count == 1 {
			return values[0]
		}
		return "[" + strings.Join(values, ", ") + "]"
	}
	return token
}

func (d *DiceModule) rollRange(count, lo, hi int) string {
	values := make([]string, count)
	sum := 0
	for i := range values {
		v := lo + d.intN(hi-lo+1)
		sum += v
		values[i] = strconv.Itoa(v)
	}
	if count == 1 {
		return values[0]
	}
	return "[" + strings.Join(values, ", ") + "] (sum: " + strconv.Itoa(sum) + ")"
}

// diceCount parses the dice count; an empty count means one die.
func diceCount(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxDice {
		return 0, false
	}
	return n, true
}

func (d *DiceModule) Help(topic, prefix string) []string {
	switch topic {
	case "dice", "roll":
		return []string{
			"Rolls dice. NdM rolls N M-sided dice, Nd[a,b] rolls N values between a and b, Nd{x,y,z} picks N times from the list.",
			"Example: " + prefix + "roll 2d6 d[10,20] d{heads,tails}",
		}
	}
	return nil
}
