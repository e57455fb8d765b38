// Copyright 2024-2026 Aiku AI

package bot

import (
	"slices"
	"strings"

	"go.mau.fi/util/exsync"
)

// membershipSigils are the channel status prefixes a NAMES reply puts in
// front of nicks.
const membershipSigils = "@+"

// PrivilegeSet holds the nicks currently present in the admin channel.
// Membership is derived only from NAMES replies, JOIN, PART, QUIT and NICK.
type PrivilegeSet struct {
	set *exsync.Set[string]
}

// NewPrivilegeSet returns an empty set.
func NewPrivilegeSet() *PrivilegeSet {
	return &PrivilegeSet{set: exsync.NewSet[string]()}
}

// Seed adds every nick of a NAMES reply, stripping status sigils.
func (p *PrivilegeSet) Seed(names []string) {
	for _, name := range names {
		name = strings.TrimLeft(name, membershipSigils)
		if name != "" {
			p.set.Add(name)
		}
	}
}

// Add marks nick as an administrator.
func (p *PrivilegeSet) Add(nick string) {
	p.set.Add(nick)
}

// Remove drops nick.
func (p *PrivilegeSet) Remove(nick string) {
	p.set.Remove(nick)
}

// Rename moves membership from one nick to another. Nicks that were not
// members stay non-members.
func (p *PrivilegeSet) Rename(from, to string) {
	if p.set.Pop(from) {
		p.set.Add(to)
	}
}

// Has reports whether nick is an administrator.
func (p *PrivilegeSet) Has(nick string) bool {
	return p.set.Has(nick)
}

// Clear empties the set.
func (p *PrivilegeSet) Clear() {
	p.set.ReplaceAll(nil)
}

// List returns the members sorted.
func (p *PrivilegeSet) List() []string {
	out := p.set.AsList()
	slices.Sort(out)
	return out
}
